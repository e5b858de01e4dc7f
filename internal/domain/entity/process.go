package entity

import "time"

// Process is a trackable unit of work with a status and an optional assigned reviewer.
// A reviewer is required while the process is IN_REVIEW; the schema enforces it on write.
type Process struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	Status           ProcessStatus `json:"status"`
	AssignedReviewer *UserSummary  `json:"assigned_reviewer,omitempty"`
	DueDate          *time.Time    `json:"due_date,omitempty"`
	CreatedBy        *UserSummary  `json:"created_by,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
