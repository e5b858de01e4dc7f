package entity

import "time"

// Report is the persisted metadata of a generated report. The PDF itself is never
// stored: Title and ProcessIDs are enough to regenerate an equivalent document.
type Report struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	ProcessIDs []string  `json:"process_ids"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
