package report

import "time"

// Document is the fully composed, renderer-independent report. Every display
// field is already formatted and every optional value already carries its
// placeholder, so renderers never touch raw entities.
type Document struct {
	Title          string
	Locale         string
	GeneratedAt    time.Time
	GeneratedLabel string
	Labels         *Labels
	Summary        Summary
	Overview       []OverviewRow
	Sections       []ProcessSection
	Footer         string
}

// Summary holds the headline counts of a report.
type Summary struct {
	Processes int
	Incidents int
	Pending   int
	Approved  int
	Resolved  int
}

// OverviewRow is one line of the process overview table.
type OverviewRow struct {
	ProcessID     string
	Name          string
	Status        string
	StatusClass   string
	Reviewer      string
	DueDate       string
	IncidentCount int
}

// ProcessSection is the detailed block rendered for a single process.
type ProcessSection struct {
	ProcessID     string
	Name          string
	Description   string
	Status        string
	StatusClass   string
	IncidentCount int
	Incidents     []IncidentEntry
	// EmptyMarker is set only when the process has no incidents.
	EmptyMarker string
}

// IncidentEntry is one enumerated incident inside a ProcessSection.
type IncidentEntry struct {
	Ordinal     int
	IncidentID  string
	Description string
	Status      string
	StatusClass string
	CreatedBy   string
	AssignedTo  string
	CreatedAt   string
	ApprovedAt  string
	ResolvedAt  string
	Evidence    []EvidenceLink
	// EvidenceMarker is set only when there is no evidence to list.
	EvidenceMarker string
}

// EvidenceLink is a labelled evidence URI.
type EvidenceLink struct {
	Label string
	URL   string
}

// ProcessNames returns the process names in document order.
func (d *Document) ProcessNames() []string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}
	return names
}
