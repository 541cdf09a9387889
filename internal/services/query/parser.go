package query

import (
	"regexp"
	"strings"
)

// fieldToken matches name:"quoted value" or name:value, scanned left to
// right without overlap.
var fieldToken = regexp.MustCompile(`(\w+):"([^"]+)"|(\w+):(\S+)`)

// Query is the structured form of a raw search string: field:value
// tokens keyed by lower-cased field name, plus whatever free text
// remains once the tokens are stripped out.
type Query struct {
	Fields   map[string]string
	FreeText string
}

// Parse splits a raw search string into field filters and free text.
// A repeated field name overwrites the earlier value. Matched tokens are
// removed from the free-text remainder whether or not the evaluator
// understands the field name; anything that does not look like a token
// stays free text. Parse never fails.
func Parse(raw string) Query {
	q := Query{Fields: make(map[string]string)}

	var rest strings.Builder
	last := 0
	for _, m := range fieldToken.FindAllStringSubmatchIndex(raw, -1) {
		name, value := group(raw, m, 1), group(raw, m, 2)
		if name == "" {
			name, value = group(raw, m, 3), group(raw, m, 4)
		}
		q.Fields[strings.ToLower(name)] = value

		rest.WriteString(raw[last:m[0]])
		last = m[1]
	}
	rest.WriteString(raw[last:])

	q.FreeText = strings.TrimSpace(rest.String())
	return q
}

func group(raw string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return raw[m[2*n]:m[2*n+1]]
}
