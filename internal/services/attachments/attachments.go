package attachments

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is a directory of <bibcode>.pdf files, the binary attachments
// behind the has_pdf/no_pdf filters and the PDF viewer.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(bibcode string) string {
	return filepath.Join(s.dir, bibcode+".pdf")
}

// Exists reports whether an attachment is present for the bibcode.
func (s *Store) Exists(bibcode string) bool {
	info, err := os.Stat(s.path(bibcode))
	return err == nil && !info.IsDir()
}

// Read returns the attachment bytes for the bibcode.
func (s *Store) Read(bibcode string) ([]byte, error) {
	const op = "attachments.Read"

	data, err := os.ReadFile(s.path(bibcode))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// URLName converts a bibcode to its URL-safe attachment name: dots
// become underscores and the .pdf extension is appended. Bibcodes carry
// dots ("2000LPI....31.1234"), which do not survive in URL path
// segments.
func URLName(bibcode string) string {
	return strings.ReplaceAll(bibcode, ".", "_") + ".pdf"
}

// BibcodeFromURLName reverses URLName.
func BibcodeFromURLName(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, ".pdf"), "_", ".")
}
