package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLabelsFor(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"en-GB", language.English},
		{"es", language.Spanish},
		{"es-MX", language.Spanish},
		{"fr", language.English},
		{"", language.English},
		{"not a locale!", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, LabelsFor(tt.locale).Tag)
		})
	}
}

func TestLabels_Formatting(t *testing.T) {
	at := time.Date(2026, time.October, 5, 17, 4, 0, 0, time.UTC)

	en := LabelsFor("en")
	assert.Equal(t, "October 5, 2026 at 17:04", en.LongDateTime(at))
	assert.Equal(t, "Oct 5, 2026", en.ShortDate(at))

	es := LabelsFor("es")
	assert.Equal(t, "5 de octubre de 2026, 17:04", es.LongDateTime(at))
	assert.Equal(t, "05/10/2026", es.ShortDate(at))
	assert.Equal(t, "Evidencia 3", es.EvidenceLabel(3))
}

func TestLabels_Status(t *testing.T) {
	en := LabelsFor("en")
	assert.Equal(t, "Completed", en.ProcessStatus("COMPLETED"))
	assert.Equal(t, "Approved", en.IncidentStatus("APPROVED"))
	assert.Equal(t, "On Hold", en.ProcessStatus("ON_HOLD"))
	assert.Equal(t, "-", en.IncidentStatus(""))

	es := LabelsFor("es")
	assert.Equal(t, "Pendiente", es.IncidentStatus("PENDING"))
	assert.Equal(t, "Resuelta", es.IncidentStatus("RESOLVED"))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "status-in-review", StatusClass("IN_REVIEW"))
	assert.Equal(t, "status-pending", StatusClass("PENDING"))
}
