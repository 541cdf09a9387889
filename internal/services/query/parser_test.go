package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFieldTokens(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fields   map[string]string
		freeText string
	}{
		{
			name:     "empty",
			raw:      "",
			fields:   map[string]string{},
			freeText: "",
		},
		{
			name:     "free text only",
			raw:      "  mars rover  ",
			fields:   map[string]string{},
			freeText: "mars rover",
		},
		{
			name:     "single filter",
			raw:      "author:Smith",
			fields:   map[string]string{"author": "Smith"},
			freeText: "",
		},
		{
			name:     "filters and free text",
			raw:      "year:2000 author:Smith crater impact",
			fields:   map[string]string{"year": "2000", "author": "Smith"},
			freeText: "crater impact",
		},
		{
			name:     "quoted value keeps spaces",
			raw:      `title:"Mars Rover" venus`,
			fields:   map[string]string{"title": "Mars Rover"},
			freeText: "venus",
		},
		{
			name:     "field name lower cased",
			raw:      "Author:Smith",
			fields:   map[string]string{"author": "Smith"},
			freeText: "",
		},
		{
			name:     "last occurrence wins",
			raw:      "author:Smith author:Doe",
			fields:   map[string]string{"author": "Doe"},
			freeText: "",
		},
		{
			name:     "unrecognized token still stripped",
			raw:      "frobnicate:yes mars",
			fields:   map[string]string{"frobnicate": "yes"},
			freeText: "mars",
		},
		{
			name:     "token in the middle of free text",
			raw:      "mars title:probe venus",
			fields:   map[string]string{"title": "probe"},
			freeText: "mars  venus",
		},
		{
			name:     "colon without name stays free text",
			raw:      ":stray mars",
			fields:   map[string]string{},
			freeText: ":stray mars",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.raw)
			assert.Equal(t, tt.fields, q.Fields)
			assert.Equal(t, tt.freeText, q.FreeText)
		})
	}
}
