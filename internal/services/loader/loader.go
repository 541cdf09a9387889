package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"blsearch/internal/domain/models"
)

var ErrNoBibcodeColumn = errors.New("metadata file has no bibcode column")

// AttachmentChecker answers whether a binary attachment exists for a
// bibcode. Consulted once per record at load time, never per query.
type AttachmentChecker interface {
	Exists(bibcode string) bool
}

type Loader struct {
	log          *slog.Logger
	metadataPath string
	collection   string
	attachments  AttachmentChecker
}

func NewLoader(log *slog.Logger, metadataPath, collection string, attachments AttachmentChecker) *Loader {
	return &Loader{
		log:          log,
		metadataPath: metadataPath,
		collection:   collection,
		attachments:  attachments,
	}
}

// LoadTable reads the broken-links metadata CSV into an in-memory table.
// Columns are mapped by header name; the only fatal schema error is a
// missing bibcode column. Multi-valued columns (author, keywords) are
// semicolon-joined in the file and split here.
func (l *Loader) LoadTable() (*models.Table, error) {
	const op = "loader.LoadTable"

	f, err := os.Open(l.metadataPath)
	if err != nil {
		l.log.Error("Failed to open metadata file", "path", l.metadataPath, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", op, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["bibcode"]; !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoBibcodeColumn)
	}

	var records []models.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row: %w", op, err)
		}

		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := models.Record{
			Bibcode:    cell("bibcode"),
			Title:      cell("title"),
			Abstract:   cell("abstract"),
			Collection: l.collection,
			PubDate:    cell("pubdate"),
			URL:        cell("url"),
			Authors:    splitList(cell("author")),
			Keywords:   splitList(cell("keywords")),
		}
		if l.attachments != nil {
			rec.HasPDF = l.attachments.Exists(rec.Bibcode)
		}
		records = append(records, rec)
	}

	l.log.Info("Loaded metadata", "path", l.metadataPath, "records", len(records))

	return models.NewTable(records), nil
}

// splitList splits a semicolon-joined cell into its entries, trimming
// whitespace and dropping empty segments.
func splitList(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
