package entity

// ProcessStatus is the lifecycle state of a Process
type ProcessStatus string

// Process status constants
const (
	ProcessStatusPending   ProcessStatus = "PENDING"
	ProcessStatusInReview  ProcessStatus = "IN_REVIEW"
	ProcessStatusCompleted ProcessStatus = "COMPLETED"
)

// IncidentStatus is the lifecycle state of an Incident.
// Incidents move PENDING -> APPROVED (supervisor) -> RESOLVED.
type IncidentStatus string

// Incident status constants
const (
	IncidentStatusPending  IncidentStatus = "PENDING"
	IncidentStatusApproved IncidentStatus = "APPROVED"
	IncidentStatusResolved IncidentStatus = "RESOLVED"
)

// User role constants
const (
	RoleAdministrator = "ADMINISTRATOR"
	RoleSupervisor    = "SUPERVISOR"
	RoleReviewer      = "REVIEWER"
)
