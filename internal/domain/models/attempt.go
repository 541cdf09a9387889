package models

import "time"

// RetrievalAttempt is the persisted outcome of trying to recover one
// record's attachment from the archives. Kept across runs so finished
// records are skipped.
type RetrievalAttempt struct {
	Bibcode    string    `json:"bibcode"`
	URL        string    `json:"url"`
	WaybackURL string    `json:"wayback_url"`
	Downloaded bool      `json:"pdf_downloaded"`
	Attempts   []string  `json:"attempts"`
	Reason     string    `json:"not_found_reason"`
	UpdatedAt  time.Time `json:"updated_at"`
}
