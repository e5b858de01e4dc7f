package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilename(t *testing.T) {
	at := time.Date(2026, time.January, 9, 23, 15, 0, 0, time.UTC)

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Monthly", "reporte-Monthly-2026-01-09.pdf"},
		{"spaces", "Monthly Supervision Report", "reporte-Monthly-Supervision-Report-2026-01-09.pdf"},
		{"punctuation", "Q1/2026: audit!", "reporte-Q1-2026--audit--2026-01-09.pdf"},
		{"accents", "Revisión", "reporte-Revisi-n-2026-01-09.pdf"},
		{"quotes", `a"b`, "reporte-a-b-2026-01-09.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilename(tt.title, at))
		})
	}
}

func TestBuildFilename_UsesUTCDate(t *testing.T) {
	at := time.Date(2026, time.January, 9, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "reporte-x-2026-01-10.pdf", BuildFilename("x", at))
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "reporte-x-2026-01-10.xlsx", WithExtension("reporte-x-2026-01-10.pdf", ".xlsx"))
	assert.Equal(t, "plain.xlsx", WithExtension("plain", ".xlsx"))
}
