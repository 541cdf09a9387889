package query

import (
	"log/slog"
	"strings"

	"blsearch/internal/domain/models"
)

// FreeTextPolicy selects how the free-text layer composes with field
// filters. Earlier generations of the search shipped both behaviors, so
// the choice is explicit configuration rather than a constant.
type FreeTextPolicy string

const (
	// PolicyCompose applies the free-text expression to every record
	// that already passed the field filters.
	PolicyCompose FreeTextPolicy = "compose"
	// PolicyGated skips free text entirely whenever the query carries
	// at least one field filter.
	PolicyGated FreeTextPolicy = "gated"
)

var recognizedFields = map[string]struct{}{
	"author": {}, "authors": {},
	"keyword": {}, "keywords": {},
	"title": {}, "abstract": {}, "collection": {}, "bibcode": {},
	"url":  {},
	"year": {}, "pubdate": {},
	"has_pdf": {}, "no_pdf": {},
}

// Engine evaluates raw query strings against an in-memory record table.
// Evaluation is a pure, order-preserving filter; the Engine holds no
// per-query state.
type Engine struct {
	log    *slog.Logger
	policy FreeTextPolicy
}

func New(log *slog.Logger, policy FreeTextPolicy) *Engine {
	return &Engine{log: log, policy: policy}
}

// Evaluate filters table with a raw query string. Surviving records keep
// their original order; an empty query returns the table unchanged.
func (e *Engine) Evaluate(table *models.Table, raw string) *models.Table {
	q := Parse(raw)

	for name := range q.Fields {
		if _, ok := recognizedFields[name]; !ok {
			e.log.Debug("ignoring unrecognized field filter", "field", name)
		}
	}

	expr := Compile(q.FreeText)
	if e.policy == PolicyGated && len(q.Fields) > 0 {
		expr = nil
	}

	out := make([]models.Record, 0, len(table.Records))
	for i := range table.Records {
		rec := &table.Records[i]
		if !matchesFieldFilters(rec, q.Fields) {
			continue
		}
		if expr != nil && !expr.Matches(rec) {
			continue
		}
		out = append(out, table.Records[i])
	}
	return models.NewTable(out)
}

// matchesFieldFilters requires every filter entry to hold (logical AND
// across fields). Unrecognized field names never constrain.
func matchesFieldFilters(rec *models.Record, filters map[string]string) bool {
	for name, value := range filters {
		if !matchesFieldFilter(rec, name, value) {
			return false
		}
	}
	return true
}

func matchesFieldFilter(rec *models.Record, name, value string) bool {
	switch strings.ToLower(name) {
	case "author", "authors":
		return anyContains(rec.Authors, strings.ToLower(value))
	case "keyword", "keywords":
		return anyContains(rec.Keywords, strings.ToLower(value))
	case "title":
		return matchField(rec.Title, value)
	case "abstract":
		return matchField(rec.Abstract, value)
	case "collection":
		return matchField(rec.Collection, value)
	case "bibcode":
		return matchField(rec.Bibcode, value)
	case "url":
		return matchField(rec.URL, value)
	case "year", "pubdate":
		// Raw substring on the publication date, case-sensitive, no
		// wildcard expansion.
		return strings.Contains(rec.PubDate, value)
	case "has_pdf":
		return rec.HasPDF == wantAttachment(value, true)
	case "no_pdf":
		return rec.HasPDF == wantAttachment(value, false)
	}
	return true
}

// wantAttachment turns a has_pdf/no_pdf filter value into the required
// HasPDF state. A bare or "*" value asserts presence (absence for
// no_pdf); anything else is read as a boolean-ish value.
func wantAttachment(value string, present bool) bool {
	value = strings.TrimSpace(value)
	if value == "" || value == "*" {
		return present
	}
	truthy := value == "true" || value == "yes" || value == "1"
	if present {
		return truthy
	}
	return !truthy
}
