package report

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// FallbackRendererName identifies the direct PDF renderer.
const FallbackRendererName = "fpdf"

const (
	lineHeight   = 5.5
	headingSize  = 13.0
	bodySize     = 10.0
	smallSize    = 8.0
	fontFamily   = "Helvetica"
	indentWidth  = 6.0
	minBlockRoom = 30.0
)

type rgb struct{ r, g, b int }

var (
	colorHeading = rgb{30, 64, 175}
	colorText    = rgb{51, 51, 51}
	colorMuted   = rgb{100, 116, 139}
	colorLink    = rgb{37, 99, 235}
	colorRule    = rgb{203, 213, 225}
	colorStat    = rgb{239, 246, 255}

	statusColors = map[string]rgb{
		"status-pending":   {254, 243, 199},
		"status-in-review": {219, 234, 254},
		"status-completed": {220, 252, 231},
		"status-approved":  {224, 231, 255},
		"status-resolved":  {220, 252, 231},
	}
)

// FallbackConfig holds page geometry for the direct renderer, in millimetres.
type FallbackConfig struct {
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	// Compress deflates page content streams.
	Compress bool
}

// DefaultFallbackConfig mirrors the browser renderer's A4 margins.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		MarginTop:    20,
		MarginRight:  15,
		MarginBottom: 20,
		MarginLeft:   15,
		Compress:     true,
	}
}

// FallbackRenderer draws the document straight onto PDF pages without a
// layout engine. Styling is simpler than the browser output but the content
// is the same.
type FallbackRenderer struct {
	cfg    FallbackConfig
	logger *zap.Logger
}

// NewFallbackRenderer creates a new FallbackRenderer
func NewFallbackRenderer(cfg FallbackConfig, logger *zap.Logger) *FallbackRenderer {
	if cfg.MarginTop <= 0 && cfg.MarginRight <= 0 && cfg.MarginBottom <= 0 && cfg.MarginLeft <= 0 {
		compress := cfg.Compress
		cfg = DefaultFallbackConfig()
		cfg.Compress = compress
	}
	return &FallbackRenderer{cfg: cfg, logger: logger}
}

// Name implements Renderer
func (r *FallbackRenderer) Name() string {
	return FallbackRendererName
}

// Render implements Renderer
func (r *FallbackRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, newRenderError(r.Name(), StageDraw, err)
	}
	if doc == nil || doc.Labels == nil {
		return nil, newRenderError(r.Name(), StageDraw, fmt.Errorf("%w: document is incomplete", ErrInvalidRequest))
	}

	w := newPageWriter(r.cfg, doc)
	w.title()
	w.summary()
	w.overview()
	w.details()

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, newRenderError(r.Name(), StageDraw, err)
	}

	r.logger.Debug("Fallback renderer drew report",
		zap.Int("pages", w.pdf.PageNo()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// pageWriter lays out one document on an fpdf instance.
type pageWriter struct {
	pdf    *fpdf.Fpdf
	doc    *Document
	tr     func(string) string
	width  float64
	height float64
	bottom float64
	left   float64
}

func newPageWriter(cfg FallbackConfig, doc *Document) *pageWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(cfg.Compress)
	pdf.SetMargins(cfg.MarginLeft, cfg.MarginTop, cfg.MarginRight)
	pdf.SetAutoPageBreak(true, cfg.MarginBottom)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("process-reports", true)
	pdf.AliasNbPages("")

	pageW, pageH := pdf.GetPageSize()
	w := &pageWriter{
		pdf:    pdf,
		doc:    doc,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  pageW - cfg.MarginLeft - cfg.MarginRight,
		height: pageH,
		bottom: cfg.MarginBottom,
		left:   cfg.MarginLeft,
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		w.font("I", smallSize, colorMuted)
		pdf.CellFormat(w.width*0.8, 4, w.tr(doc.Footer), "", 0, "L", false, 0, "")
		pdf.CellFormat(w.width*0.2, 4, strconv.Itoa(pdf.PageNo())+"/{nb}", "", 0, "R", false, 0, "")
	})
	pdf.AddPage()
	return w
}

// ensureSpace starts a new page when less than h millimetres remain.
func (w *pageWriter) ensureSpace(h float64) {
	if w.pdf.GetY()+h > w.height-w.bottom {
		w.pdf.AddPage()
	}
}

func (w *pageWriter) font(style string, size float64, c rgb) {
	w.pdf.SetFont(fontFamily, style, size)
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

// textHeight estimates how tall text wraps to in a box of width width.
func (w *pageWriter) textHeight(text string, width float64) float64 {
	lines := w.pdf.SplitLines([]byte(w.tr(text)), width)
	if len(lines) == 0 {
		return lineHeight
	}
	return float64(len(lines)) * lineHeight
}

func (w *pageWriter) heading(text string) {
	w.ensureSpace(minBlockRoom)
	w.pdf.Ln(3)
	w.font("B", headingSize, colorHeading)
	w.pdf.CellFormat(0, 8, w.tr(text), "B", 1, "L", false, 0, "")
	w.pdf.Ln(2)
}

func (w *pageWriter) title() {
	w.font("B", 18, colorHeading)
	w.pdf.MultiCell(0, 9, w.tr(w.doc.Title), "", "C", false)
	w.font("", bodySize, colorMuted)
	w.pdf.CellFormat(0, lineHeight, w.tr(w.doc.Labels.GeneratedOn+" "+w.doc.GeneratedLabel), "", 1, "C", false, 0, "")
	w.pdf.Ln(4)
}

func (w *pageWriter) summary() {
	l := w.doc.Labels
	s := w.doc.Summary
	stats := []struct {
		label string
		value int
	}{
		{l.Processes, s.Processes},
		{l.Incidents, s.Incidents},
		{l.Pending, s.Pending},
		{l.Approved, s.Approved},
		{l.Resolved, s.Resolved},
	}

	w.heading(l.SummaryHeading)
	cell := w.width / float64(len(stats))
	w.pdf.SetFillColor(colorStat.r, colorStat.g, colorStat.b)

	w.font("B", 16, colorLink)
	for _, st := range stats {
		w.pdf.CellFormat(cell, 9, strconv.Itoa(st.value), "", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)
	w.font("", smallSize, colorMuted)
	for _, st := range stats {
		w.pdf.CellFormat(cell, lineHeight, w.tr(st.label), "", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)
}

func (w *pageWriter) overview() {
	l := w.doc.Labels
	cols := []float64{w.width * 0.32, w.width * 0.17, w.width * 0.22, w.width * 0.16, w.width * 0.13}
	header := []string{l.Name, l.Status, l.Reviewer, l.DueDate, l.Incidents}

	w.heading(l.OverviewHeading)
	drawHeader := func() {
		w.font("B", 9, rgb{255, 255, 255})
		w.pdf.SetFillColor(colorHeading.r, colorHeading.g, colorHeading.b)
		for i, h := range header {
			w.pdf.CellFormat(cols[i], 7, w.fit(h, cols[i]), "", 0, "L", true, 0, "")
		}
		w.pdf.Ln(-1)
	}
	drawHeader()

	w.pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	for _, row := range w.doc.Overview {
		if w.pdf.GetY()+7 > w.height-w.bottom {
			w.pdf.AddPage()
			drawHeader()
		}
		w.font("", 9, colorText)
		w.pdf.CellFormat(cols[0], 7, w.fit(row.Name, cols[0]), "B", 0, "L", false, 0, "")
		w.statusCell(cols[1], 7, row.Status, row.StatusClass, "B", 0)
		w.font("", 9, colorText)
		w.pdf.CellFormat(cols[2], 7, w.fit(row.Reviewer, cols[2]), "B", 0, "L", false, 0, "")
		w.pdf.CellFormat(cols[3], 7, w.fit(row.DueDate, cols[3]), "B", 0, "L", false, 0, "")
		w.pdf.CellFormat(cols[4], 7, strconv.Itoa(row.IncidentCount), "B", 1, "C", false, 0, "")
	}
}

func (w *pageWriter) details() {
	l := w.doc.Labels
	w.heading(l.DetailsHeading)

	for _, section := range w.doc.Sections {
		w.ensureSpace(minBlockRoom)
		w.font("B", 12, colorText)
		w.pdf.MultiCell(0, 7, w.tr(section.Name), "", "L", false)
		w.field(l.Description, section.Description)
		w.font("B", bodySize, colorText)
		w.pdf.CellFormat(w.labelWidth(l.Status), lineHeight, w.tr(l.Status+":"), "", 0, "L", false, 0, "")
		w.statusCell(0, lineHeight, section.Status, section.StatusClass, "", 1)
		w.field(l.Incidents, strconv.Itoa(section.IncidentCount))

		if section.EmptyMarker != "" {
			w.font("I", bodySize, colorMuted)
			w.pdf.MultiCell(0, lineHeight, w.tr(section.EmptyMarker), "", "L", false)
		}
		for _, entry := range section.Incidents {
			w.incident(entry)
		}

		w.pdf.Ln(2)
		w.pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
		y := w.pdf.GetY()
		w.pdf.Line(w.left, y, w.left+w.width, y)
		w.pdf.Ln(3)
	}
}

func (w *pageWriter) incident(e IncidentEntry) {
	l := w.doc.Labels
	head := fmt.Sprintf("%s #%d: %s", l.Incident, e.Ordinal, e.Description)
	inner := w.width - indentWidth

	w.font("B", bodySize, colorText)
	need := w.textHeight(head, inner) + 6*lineHeight + float64(len(e.Evidence)+1)*lineHeight
	w.ensureSpace(need)

	w.pdf.Ln(1)
	w.indent()
	w.pdf.MultiCell(inner, lineHeight, w.tr(head), "", "L", false)

	w.indent()
	w.font("B", bodySize, colorText)
	w.pdf.CellFormat(w.labelWidth(l.Status), lineHeight, w.tr(l.Status+":"), "", 0, "L", false, 0, "")
	w.statusCell(0, lineHeight, e.Status, e.StatusClass, "", 1)

	for _, kv := range [][2]string{
		{l.CreatedBy, e.CreatedBy},
		{l.AssignedTo, e.AssignedTo},
		{l.CreatedAt, e.CreatedAt},
		{l.ApprovedAt, e.ApprovedAt},
		{l.ResolvedAt, e.ResolvedAt},
	} {
		w.indent()
		w.field(kv[0], kv[1])
	}

	w.indent()
	if len(e.Evidence) == 0 {
		w.field(l.Evidence, e.EvidenceMarker)
		return
	}
	w.font("B", bodySize, colorText)
	w.pdf.CellFormat(0, lineHeight, w.tr(fmt.Sprintf("%s (%d):", l.Evidence, len(e.Evidence))), "", 1, "L", false, 0, "")
	for _, link := range e.Evidence {
		w.indent()
		w.pdf.SetX(w.pdf.GetX() + indentWidth)
		w.font("U", bodySize, colorLink)
		w.pdf.CellFormat(inner-indentWidth, lineHeight, w.fit(link.Label+"  "+link.URL, inner-indentWidth), "", 1, "L", false, 0, link.URL)
	}
}

// field writes "label: value" on its own line, wrapping long values.
func (w *pageWriter) field(label, value string) {
	lw := w.labelWidth(label)
	w.font("B", bodySize, colorText)
	w.pdf.CellFormat(lw, lineHeight, w.tr(label+":"), "", 0, "L", false, 0, "")
	w.font("", bodySize, colorText)
	w.pdf.MultiCell(0, lineHeight, w.tr(value), "", "L", false)
}

func (w *pageWriter) statusCell(width, height float64, text, class, border string, ln int) {
	c, ok := statusColors[class]
	if !ok {
		c = rgb{241, 245, 249}
	}
	w.font("B", 9, colorText)
	if width == 0 {
		width = w.pdf.GetStringWidth(w.tr(text)) + 4
	}
	w.pdf.SetFillColor(c.r, c.g, c.b)
	w.pdf.CellFormat(width, height, w.fit(text, width), border, ln, "L", true, 0, "")
}

func (w *pageWriter) labelWidth(label string) float64 {
	w.pdf.SetFont(fontFamily, "B", bodySize)
	return w.pdf.GetStringWidth(w.tr(label+":")) + 2
}

func (w *pageWriter) indent() {
	w.pdf.SetX(w.left + indentWidth)
}

// fit translates text and shortens it with an ellipsis to fit width.
func (w *pageWriter) fit(text string, width float64) string {
	s := w.tr(text)
	if w.pdf.GetStringWidth(s) <= width-2 {
		return s
	}
	// s is single-byte encoded after translation, so byte slicing is safe.
	for len(s) > 0 && w.pdf.GetStringWidth(s+"...") > width-2 {
		s = s[:len(s)-1]
	}
	return s + "..."
}

var _ Renderer = (*FallbackRenderer)(nil)
