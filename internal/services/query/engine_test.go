package query

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blsearch/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureTable() *models.Table {
	return models.NewTable([]models.Record{
		{
			Bibcode: "A",
			Title:   "Mars Rover",
			Authors: []string{"Smith, J."},
			PubDate: "2000-07-00",
			HasPDF:  true,
		},
		{
			Bibcode: "B",
			Title:   "Venus Probe",
			Authors: []string{"Doe, A."},
			PubDate: "1998-01-00",
		},
		{
			Bibcode: "C",
			Title:   "Asteroid Survey",
			URL:     "http://leagueofplanets.org/x",
			PubDate: "2000-03-00",
		},
	})
}

func bibcodes(table *models.Table) []string {
	out := make([]string, 0, table.Len())
	for _, rec := range table.Records {
		out = append(out, rec.Bibcode)
	}
	return out
}

func TestEvaluateIdentity(t *testing.T) {
	engine := New(discardLogger(), PolicyCompose)
	table := fixtureTable()

	got := engine.Evaluate(table, "")
	assert.Equal(t, table.Records, got.Records)
}

func TestEvaluateScenarios(t *testing.T) {
	engine := New(discardLogger(), PolicyCompose)
	table := fixtureTable()

	tests := []struct {
		query string
		want  []string
	}{
		{"author:Smith", []string{"A"}},
		{"title:Mars", []string{"A"}},
		{"mars or venus", []string{"A", "B"}},
		{"not mars", []string{"B", "C"}},
		{"not (mars or venus)", []string{"C"}},
		{"url:leag*", []string{"C"}},
		{"url:!leag*", []string{"A", "B"}},
		{"has_pdf:*", []string{"A"}},
		{"no_pdf:*", []string{"B", "C"}},
		{"has_pdf:true", []string{"A"}},
		{"has_pdf:no", []string{"B", "C"}},
		{"no_pdf:yes", []string{"B", "C"}},
		{"year:2000", []string{"A", "C"}},
		{"pubdate:1998", []string{"B"}},
		{"bibcode:a", []string{"A"}},
		{"author:smith title:Mars", []string{"A"}},
		{"author:smith title:Venus", nil},
		// Stripping the title token leaves "or venus", whose leading
		// keyword is dropped; the remaining term excludes A.
		{"title:mars or venus", nil},
		{"unknownfield:zzz", []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := engine.Evaluate(table, tt.query)
			if tt.want == nil {
				assert.Zero(t, got.Len())
				return
			}
			assert.Equal(t, tt.want, bibcodes(got))
		})
	}
}

// Blank-field negation: an absent abstract vacuously satisfies a
// negated abstract filter.
func TestEvaluateBlankNegation(t *testing.T) {
	engine := New(discardLogger(), PolicyCompose)
	table := models.NewTable([]models.Record{{Bibcode: "D", Abstract: ""}})

	got := engine.Evaluate(table, "abstract:!mars")
	assert.Equal(t, []string{"D"}, bibcodes(got))

	got = engine.Evaluate(table, "abstract:mars")
	assert.Zero(t, got.Len())
}

// Applying two field filters at once equals applying them one after the
// other.
func TestEvaluateFieldFilterConjunction(t *testing.T) {
	engine := New(discardLogger(), PolicyCompose)
	table := fixtureTable()

	both := engine.Evaluate(table, "year:2000 title:mars")
	chained := engine.Evaluate(engine.Evaluate(table, "year:2000"), "title:mars")
	assert.Equal(t, chained.Records, both.Records)
}

// OR is the set union of the single-term results, AND the intersection.
func TestEvaluateBooleanSetSemantics(t *testing.T) {
	engine := New(discardLogger(), PolicyCompose)
	table := fixtureTable()

	mars := bibcodes(engine.Evaluate(table, "mars"))
	venus := bibcodes(engine.Evaluate(table, "venus"))
	union := bibcodes(engine.Evaluate(table, "mars or venus"))
	intersection := engine.Evaluate(table, "mars and venus")

	seen := map[string]bool{}
	for _, b := range append(append([]string{}, mars...), venus...) {
		seen[b] = true
	}
	require.Len(t, union, len(seen))
	for _, b := range union {
		assert.True(t, seen[b])
	}
	assert.Zero(t, intersection.Len())
}

func TestEvaluateGatedPolicy(t *testing.T) {
	table := fixtureTable()

	// With a field filter present the gated engine ignores free text
	// entirely; the composing engine applies both layers.
	gated := New(discardLogger(), PolicyGated)
	composed := New(discardLogger(), PolicyCompose)

	assert.Equal(t, []string{"A", "C"}, bibcodes(gated.Evaluate(table, "year:2000 venus")))
	assert.Zero(t, composed.Evaluate(table, "year:2000 venus").Len())

	// Without field filters both behave the same.
	assert.Equal(t, []string{"B"}, bibcodes(gated.Evaluate(table, "venus")))
	assert.Equal(t, []string{"B"}, bibcodes(composed.Evaluate(table, "venus")))
}

func TestEvaluatePreservesOrderAndInput(t *testing.T) {
	engine := New(discardLogger(), PolicyCompose)
	table := fixtureTable()
	original := append([]models.Record{}, table.Records...)

	got := engine.Evaluate(table, "year:2000")
	assert.Equal(t, []string{"A", "C"}, bibcodes(got))
	assert.Equal(t, original, table.Records)
}
