package entity

import "time"

// Incident is an issue record attached to exactly one Process.
type Incident struct {
	ID          string         `json:"id"`
	ProcessID   string         `json:"process_id"`
	ProcessName string         `json:"process_name"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	Evidence    []string       `json:"evidence"`
	CreatedBy   *UserSummary   `json:"created_by,omitempty"`
	AssignedTo  *UserSummary   `json:"assigned_to,omitempty"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
