package models

// Record is one bibliographic entry from the broken-links metadata file.
type Record struct {
	Bibcode    string   `json:"bibcode"`
	Title      string   `json:"title"`
	Abstract   string   `json:"abstract"`
	Collection string   `json:"collection"`
	PubDate    string   `json:"pubdate"`
	URL        string   `json:"url"`
	Authors    []string `json:"authors"`
	Keywords   []string `json:"keywords"`
	HasPDF     bool     `json:"has_pdf"`
}

// Table is an ordered set of records. Order is load order; filtering
// never reorders it.
type Table struct {
	Records []Record
}

func NewTable(records []Record) *Table {
	return &Table{Records: records}
}

func (t *Table) Len() int {
	return len(t.Records)
}
