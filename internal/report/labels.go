package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Labels is the text catalog used to compose a Document.
type Labels struct {
	Tag language.Tag

	GeneratedOn     string
	SummaryHeading  string
	OverviewHeading string
	DetailsHeading  string

	Processes string
	Incidents string
	Pending   string
	Approved  string
	Resolved  string

	Name        string
	Status      string
	Reviewer    string
	DueDate     string
	Description string
	Incident    string
	CreatedBy   string
	AssignedTo  string
	CreatedAt   string
	ApprovedAt  string
	ResolvedAt  string
	Evidence    string
	EvidenceN   string

	Unassigned    string
	NoDeadline    string
	NoDescription string
	NoIncidents   string
	NoEvidence    string
	NotApproved   string
	NotResolved   string
	UnknownUser   string

	Footer string

	processStatus  map[string]string
	incidentStatus map[string]string
	longDate       func(time.Time) string
	shortDate      func(time.Time) string
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var englishLabels = Labels{
	Tag:             language.English,
	GeneratedOn:     "Generated on:",
	SummaryHeading:  "Summary",
	OverviewHeading: "Process overview",
	DetailsHeading:  "Process details",
	Processes:       "Processes",
	Incidents:       "Incidents",
	Pending:         "Pending",
	Approved:        "Approved",
	Resolved:        "Resolved",
	Name:            "Name",
	Status:          "Status",
	Reviewer:        "Assigned reviewer",
	DueDate:         "Due date",
	Description:     "Description",
	Incident:        "Incident",
	CreatedBy:       "Reported by",
	AssignedTo:      "Assigned to",
	CreatedAt:       "Created",
	ApprovedAt:      "Approved",
	ResolvedAt:      "Resolved",
	Evidence:        "Evidence",
	EvidenceN:       "Evidence %d",
	Unassigned:      "Unassigned",
	NoDeadline:      "No deadline",
	NoDescription:   "No description",
	NoIncidents:     "No incidents recorded for this process.",
	NoEvidence:      "No evidence attached",
	NotApproved:     "Not approved",
	NotResolved:     "Not resolved",
	UnknownUser:     "Unknown user",
	Footer:          "Report generated automatically by the process management system",
	processStatus: map[string]string{
		"PENDING":   "Pending",
		"IN_REVIEW": "In review",
		"COMPLETED": "Completed",
	},
	incidentStatus: map[string]string{
		"PENDING":  "Pending",
		"APPROVED": "Approved",
		"RESOLVED": "Resolved",
	},
	longDate: func(t time.Time) string {
		return t.Format("January 2, 2006 at 15:04")
	},
	shortDate: func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
}

var spanishLabels = Labels{
	Tag:             language.Spanish,
	GeneratedOn:     "Generado el:",
	SummaryHeading:  "Resumen",
	OverviewHeading: "Resumen de procesos",
	DetailsHeading:  "Detalle de procesos",
	Processes:       "Procesos",
	Incidents:       "Incidencias",
	Pending:         "Pendientes",
	Approved:        "Aprobadas",
	Resolved:        "Resueltas",
	Name:            "Nombre",
	Status:          "Estado",
	Reviewer:        "Revisor asignado",
	DueDate:         "Fecha límite",
	Description:     "Descripción",
	Incident:        "Incidencia",
	CreatedBy:       "Creado por",
	AssignedTo:      "Asignado a",
	CreatedAt:       "Fecha de creación",
	ApprovedAt:      "Aprobada el",
	ResolvedAt:      "Resuelta el",
	Evidence:        "Evidencias",
	EvidenceN:       "Evidencia %d",
	Unassigned:      "Sin asignar",
	NoDeadline:      "Sin fecha límite",
	NoDescription:   "Sin descripción",
	NoIncidents:     "No hay incidencias registradas para este proceso.",
	NoEvidence:      "Sin evidencias",
	NotApproved:     "Sin aprobar",
	NotResolved:     "Sin resolver",
	UnknownUser:     "Usuario desconocido",
	Footer:          "Reporte generado automáticamente por el sistema de gestión de procesos",
	processStatus: map[string]string{
		"PENDING":   "Pendiente",
		"IN_REVIEW": "En revisión",
		"COMPLETED": "Completado",
	},
	incidentStatus: map[string]string{
		"PENDING":  "Pendiente",
		"APPROVED": "Aprobada",
		"RESOLVED": "Resuelta",
	},
	longDate: func(t time.Time) string {
		return fmt.Sprintf("%d de %s de %d, %02d:%02d",
			t.Day(), spanishMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	},
	shortDate: func(t time.Time) string {
		return t.Format("02/01/2006")
	},
}

var (
	catalogs = []*Labels{&englishLabels, &spanishLabels}
	matcher  = language.NewMatcher([]language.Tag{language.English, language.Spanish})
)

// LabelsFor returns the catalog best matching locale (a BCP 47 tag such as
// "es-MX"). Unknown or malformed locales fall back to English.
func LabelsFor(locale string) *Labels {
	tag, err := language.Parse(locale)
	if err != nil {
		return &englishLabels
	}
	_, idx, _ := matcher.Match(tag)
	return catalogs[idx]
}

// LongDateTime formats t as a long-form date with time of day.
func (l *Labels) LongDateTime(t time.Time) string {
	return l.longDate(t)
}

// ShortDate formats t as a date only.
func (l *Labels) ShortDate(t time.Time) string {
	return l.shortDate(t)
}

// ProcessStatus returns the display text for a process status.
func (l *Labels) ProcessStatus(status string) string {
	if s, ok := l.processStatus[status]; ok {
		return s
	}
	return l.humanize(status)
}

// IncidentStatus returns the display text for an incident status.
func (l *Labels) IncidentStatus(status string) string {
	if s, ok := l.incidentStatus[status]; ok {
		return s
	}
	return l.humanize(status)
}

// EvidenceLabel returns the label of the n-th evidence link (1-based).
func (l *Labels) EvidenceLabel(n int) string {
	return fmt.Sprintf(l.EvidenceN, n)
}

func (l *Labels) humanize(status string) string {
	if strings.TrimSpace(status) == "" {
		return "-"
	}
	words := strings.ToLower(strings.ReplaceAll(status, "_", " "))
	return cases.Title(l.Tag).String(words)
}

// StatusClass maps a status to the CSS class used to colour it.
func StatusClass(status string) string {
	return "status-" + strings.ToLower(strings.ReplaceAll(status, "_", "-"))
}
