package report

import (
	"regexp"
	"time"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// BuildFilename derives the attachment name of a report from its title and
// generation date: reporte-<title>-<YYYY-MM-DD>.pdf, with every character
// outside [A-Za-z0-9] in the title replaced by '-'.
func BuildFilename(title string, at time.Time) string {
	return "reporte-" + nonAlphanumeric.ReplaceAllString(title, "-") + "-" + at.UTC().Format(time.DateOnly) + ".pdf"
}

// WithExtension swaps the .pdf suffix of a generated filename for ext.
func WithExtension(filename, ext string) string {
	const pdf = ".pdf"
	if len(filename) >= len(pdf) && filename[len(filename)-len(pdf):] == pdf {
		filename = filename[:len(filename)-len(pdf)]
	}
	return filename + ext
}
