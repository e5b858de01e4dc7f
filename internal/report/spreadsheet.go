package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Spreadsheet sheet names
const (
	SheetSummary   = "Summary"
	SheetProcesses = "Processes"
	SheetIncidents = "Incidents"
)

// SpreadsheetExporter writes a Document as an XLSX workbook.
type SpreadsheetExporter struct {
	logger *zap.Logger
}

// NewSpreadsheetExporter creates a new SpreadsheetExporter
func NewSpreadsheetExporter(logger *zap.Logger) *SpreadsheetExporter {
	return &SpreadsheetExporter{logger: logger}
}

// Export renders doc into workbook bytes.
func (e *SpreadsheetExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil || doc.Labels == nil {
		return nil, fmt.Errorf("%w: document is incomplete", ErrInvalidRequest)
	}
	l := doc.Labels

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetProcesses, SheetIncidents} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	summary := [][]interface{}{
		{doc.Title},
		{l.GeneratedOn, doc.GeneratedLabel},
		{},
		{l.Processes, doc.Summary.Processes},
		{l.Incidents, doc.Summary.Incidents},
		{l.Pending, doc.Summary.Pending},
		{l.Approved, doc.Summary.Approved},
		{l.Resolved, doc.Summary.Resolved},
	}
	if err := e.writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}
	e.style(f, SheetSummary, "A1", "A1", bold)
	e.style(f, SheetSummary, "A4", "A8", bold)

	processes := [][]interface{}{{l.Name, l.Status, l.Reviewer, l.DueDate, l.Incidents, l.Description}}
	for i, row := range doc.Overview {
		processes = append(processes, []interface{}{
			row.Name, row.Status, row.Reviewer, row.DueDate, row.IncidentCount, doc.Sections[i].Description,
		})
	}
	if err := e.writeRows(f, SheetProcesses, processes); err != nil {
		return nil, err
	}
	e.style(f, SheetProcesses, "A1", "F1", bold)

	incidents := [][]interface{}{{
		l.Processes, "#", l.Description, l.Status, l.CreatedBy, l.AssignedTo,
		l.CreatedAt, l.ApprovedAt, l.ResolvedAt, l.Evidence,
	}}
	for _, section := range doc.Sections {
		for _, entry := range section.Incidents {
			evidence := entry.EvidenceMarker
			if len(entry.Evidence) > 0 {
				urls := make([]string, 0, len(entry.Evidence))
				for _, link := range entry.Evidence {
					urls = append(urls, link.URL)
				}
				evidence = strings.Join(urls, "\n")
			}
			incidents = append(incidents, []interface{}{
				section.Name, entry.Ordinal, entry.Description, entry.Status, entry.CreatedBy, entry.AssignedTo,
				entry.CreatedAt, entry.ApprovedAt, entry.ResolvedAt, evidence,
			})
		}
	}
	if err := e.writeRows(f, SheetIncidents, incidents); err != nil {
		return nil, err
	}
	e.style(f, SheetIncidents, "A1", "J1", bold)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *SpreadsheetExporter) writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func (e *SpreadsheetExporter) style(f *excelize.File, sheet, from, to string, style int) {
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		e.logger.Warn("Failed to style cells",
			zap.String("sheet", sheet),
			zap.String("range", from+":"+to),
			zap.Error(err))
	}
}
