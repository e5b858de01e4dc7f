package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

func TestSpreadsheetExporter_Export(t *testing.T) {
	data, err := NewSpreadsheetExporter(zaptest.NewLogger(t)).Export(supervisionDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetProcesses, SheetIncidents}, f.GetSheetList())

	title, _ := f.GetCellValue(SheetSummary, "A1")
	assert.Equal(t, "Monthly Supervision Report", title)
	pending, _ := f.GetCellValue(SheetSummary, "B6")
	assert.Equal(t, "1", pending)

	processes, err := f.GetRows(SheetProcesses)
	require.NoError(t, err)
	require.Len(t, processes, 3)
	assert.Equal(t, []string{"Beta Audit", "Pending", "Unassigned", "No deadline", "0", "No description"}, processes[2])

	incidents, err := f.GetRows(SheetIncidents)
	require.NoError(t, err)
	require.Len(t, incidents, 3)
	assert.Equal(t, "Alpha Review", incidents[1][0])
	assert.Equal(t, "https://files.example.com/e1.png\nhttps://files.example.com/e2.pdf", incidents[1][9])
	assert.Equal(t, "No evidence attached", incidents[2][9])
}

func TestSpreadsheetExporter_IncompleteDocument(t *testing.T) {
	_, err := NewSpreadsheetExporter(zaptest.NewLogger(t)).Export(nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
