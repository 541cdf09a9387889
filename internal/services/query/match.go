package query

import (
	"strings"

	"blsearch/internal/domain/models"
)

// globContains reports whether value contains a substring matching
// pattern, where * stands for any run of characters and everything else
// is literal. Both arguments must already be lower-cased. The match is
// not anchored: pattern "a*c" accepts "xabcy".
func globContains(value, pattern string) bool {
	idx := 0
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		j := strings.Index(value[idx:], part)
		if j < 0 {
			return false
		}
		idx += j + len(part)
	}
	return true
}

// matchField applies a wildcard pattern to a single scalar field value.
// A leading "not " or "!" negates the pattern. A blank value vacuously
// satisfies any negated pattern: an empty abstract does not contain
// anything.
func matchField(value, pattern string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))

	negate := false
	switch {
	case strings.HasPrefix(pattern, "not "):
		negate = true
		pattern = strings.TrimSpace(pattern[len("not "):])
	case strings.HasPrefix(pattern, "!"):
		negate = true
		pattern = strings.TrimSpace(pattern[1:])
	}

	matched := globContains(strings.ToLower(value), pattern)
	if negate {
		return !matched || strings.TrimSpace(value) == ""
	}
	return matched
}

// anyContains reports whether any entry of list contains term. term must
// be lower-cased.
func anyContains(list []string, term string) bool {
	for _, s := range list {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// anyFieldContains is the whole-record search behind bare free-text
// terms: title, abstract and bibcode, plus every author and keyword.
// Plain case-insensitive substring containment, no wildcard expansion.
func anyFieldContains(rec *models.Record, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(rec.Title), term) ||
		strings.Contains(strings.ToLower(rec.Abstract), term) ||
		strings.Contains(strings.ToLower(rec.Bibcode), term) {
		return true
	}
	return anyContains(rec.Authors, term) || anyContains(rec.Keywords, term)
}
