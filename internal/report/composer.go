package report

import (
	"strings"
	"time"

	"github.com/garyjia/process-reports/internal/domain/entity"
)

// Composer arranges aggregated data into a Document.
type Composer struct {
	labels   *Labels
	location *time.Location
	now      func() time.Time
}

// ComposerOption configures a Composer
type ComposerOption func(*Composer)

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) ComposerOption {
	return func(c *Composer) {
		c.now = now
	}
}

// WithLocation sets the time zone dates are displayed in.
func WithLocation(loc *time.Location) ComposerOption {
	return func(c *Composer) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewComposer creates a new Composer using the given label catalog
func NewComposer(labels *Labels, opts ...ComposerOption) *Composer {
	if labels == nil {
		labels = &englishLabels
	}
	c := &Composer{
		labels:   labels,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Labels returns the catalog the composer writes with.
func (c *Composer) Labels() *Labels {
	return c.labels
}

// Compose builds the document for title from agg. Process order follows agg.
func (c *Composer) Compose(agg *Aggregate, title string) *Document {
	l := c.labels
	generatedAt := c.now().In(c.location)
	grouped := agg.IncidentsByProcess()

	doc := &Document{
		Title:          title,
		Locale:         l.Tag.String(),
		GeneratedAt:    generatedAt,
		GeneratedLabel: l.LongDateTime(generatedAt),
		Labels:         l,
		Overview:       make([]OverviewRow, 0, len(agg.Processes)),
		Sections:       make([]ProcessSection, 0, len(agg.Processes)),
		Footer:         l.Footer + " - " + l.LongDateTime(generatedAt),
	}

	doc.Summary = Summary{
		Processes: len(agg.Processes),
		Incidents: len(agg.Incidents),
	}
	for _, incident := range agg.Incidents {
		switch incident.Status {
		case entity.IncidentStatusPending:
			doc.Summary.Pending++
		case entity.IncidentStatusApproved:
			doc.Summary.Approved++
		case entity.IncidentStatusResolved:
			doc.Summary.Resolved++
		}
	}

	for _, process := range agg.Processes {
		incidents := grouped[process.ID]
		doc.Overview = append(doc.Overview, c.overviewRow(process, len(incidents)))
		doc.Sections = append(doc.Sections, c.section(process, incidents))
	}

	return doc
}

func (c *Composer) overviewRow(p *entity.Process, incidentCount int) OverviewRow {
	l := c.labels
	row := OverviewRow{
		ProcessID:     p.ID,
		Name:          p.Name,
		Status:        l.ProcessStatus(string(p.Status)),
		StatusClass:   StatusClass(string(p.Status)),
		Reviewer:      l.Unassigned,
		DueDate:       l.NoDeadline,
		IncidentCount: incidentCount,
	}
	if name := strings.TrimSpace(p.AssignedReviewer.DisplayName()); name != "" {
		row.Reviewer = name
	}
	if p.DueDate != nil {
		row.DueDate = c.date(*p.DueDate)
	}
	return row
}

func (c *Composer) section(p *entity.Process, incidents []*entity.Incident) ProcessSection {
	l := c.labels
	s := ProcessSection{
		ProcessID:     p.ID,
		Name:          p.Name,
		Description:   orPlaceholder(p.Description, l.NoDescription),
		Status:        l.ProcessStatus(string(p.Status)),
		StatusClass:   StatusClass(string(p.Status)),
		IncidentCount: len(incidents),
	}
	if len(incidents) == 0 {
		s.EmptyMarker = l.NoIncidents
		return s
	}

	s.Incidents = make([]IncidentEntry, 0, len(incidents))
	for i, incident := range incidents {
		s.Incidents = append(s.Incidents, c.incidentEntry(i+1, incident))
	}
	return s
}

func (c *Composer) incidentEntry(ordinal int, in *entity.Incident) IncidentEntry {
	l := c.labels
	e := IncidentEntry{
		Ordinal:     ordinal,
		IncidentID:  in.ID,
		Description: orPlaceholder(in.Description, l.NoDescription),
		Status:      l.IncidentStatus(string(in.Status)),
		StatusClass: StatusClass(string(in.Status)),
		CreatedBy:   orPlaceholder(in.CreatedBy.DisplayName(), l.UnknownUser),
		AssignedTo:  orPlaceholder(in.AssignedTo.DisplayName(), l.Unassigned),
		CreatedAt:   c.date(in.CreatedAt),
		ApprovedAt:  l.NotApproved,
		ResolvedAt:  l.NotResolved,
	}
	if in.ApprovedAt != nil {
		e.ApprovedAt = c.date(*in.ApprovedAt)
	}
	if in.ResolvedAt != nil {
		e.ResolvedAt = c.date(*in.ResolvedAt)
	}

	for _, uri := range in.Evidence {
		if strings.TrimSpace(uri) == "" {
			continue
		}
		e.Evidence = append(e.Evidence, EvidenceLink{
			Label: l.EvidenceLabel(len(e.Evidence) + 1),
			URL:   uri,
		})
	}
	if len(e.Evidence) == 0 {
		e.EvidenceMarker = l.NoEvidence
	}
	return e
}

func (c *Composer) date(t time.Time) string {
	return c.labels.ShortDate(t.In(c.location))
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
