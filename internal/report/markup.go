package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// RenderMarkup renders doc into a standalone HTML page.
func RenderMarkup(doc *Document) (string, error) {
	if doc == nil || doc.Labels == nil {
		return "", fmt.Errorf("%w: document is incomplete", ErrInvalidRequest)
	}

	var buf bytes.Buffer
	if err := reportTemplate.ExecuteTemplate(&buf, "report.html.tmpl", doc); err != nil {
		return "", fmt.Errorf("failed to execute report template: %w", err)
	}
	return buf.String(), nil
}
