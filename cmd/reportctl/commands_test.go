package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/application/service"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"github.com/garyjia/process-reports/internal/infrastructure/storage"
	"github.com/garyjia/process-reports/internal/report"
)

var createdAt = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

type mockReportService struct {
	generated service.GenerateRequest
	filter    port.ReportFilter
	records   map[string]*entity.Report
}

func newMockReportService() *mockReportService {
	return &mockReportService{records: map[string]*entity.Report{
		"r1": {
			ID:         "r1",
			Title:      "Monthly Supervision Report",
			Filename:   "reporte-Monthly-Supervision-Report-2026-03-14.pdf",
			ProcessIDs: []string{"P1", "P2"},
			CreatedBy:  "u-sup",
			CreatedAt:  createdAt,
		},
	}}
}

func (m *mockReportService) Generate(ctx context.Context, req service.GenerateRequest) (*service.GeneratedReport, error) {
	m.generated = req
	if len(req.ProcessIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one process id is required", report.ErrInvalidRequest)
	}
	return &service.GeneratedReport{Report: m.records["r1"], PDF: []byte("%PDF-1.4 generated"), Renderer: "fpdf", Pages: 1, Fallback: true}, nil
}

func (m *mockReportService) Get(ctx context.Context, id string) (*entity.Report, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", report.ErrReportNotFound, id)
	}
	return rec, nil
}

func (m *mockReportService) List(ctx context.Context, filter port.ReportFilter) ([]*entity.Report, error) {
	m.filter = filter
	return []*entity.Report{m.records["r1"]}, nil
}

func (m *mockReportService) Regenerate(ctx context.Context, id string) (*service.GeneratedReport, error) {
	rec, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &service.GeneratedReport{Report: rec, PDF: []byte("%PDF-1.4 regenerated"), Renderer: "chrome", Pages: 1}, nil
}

func (m *mockReportService) ExportSpreadsheet(ctx context.Context, id string) (*service.Export, error) {
	rec, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &service.Export{Filename: report.WithExtension(rec.Filename, ".xlsx"), ContentType: service.XLSXContentType, Data: []byte("PK")}, nil
}

type mockProvider struct {
	svc     *mockReportService
	dir     string
	opened  int
	cleaned int
	err     error
	t       *testing.T
}

func (p *mockProvider) Open(ctx context.Context, opts *rootOptions) (*app, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	p.opened++
	dir := p.dir
	if opts.outputDir != "" {
		dir = opts.outputDir
	}
	return &app{
		Reports: p.svc,
		Storage: storage.NewLocalFileStorage(dir, zaptest.NewLogger(p.t)),
	}, func() { p.cleaned++ }, nil
}

func execute(t *testing.T, p *mockProvider, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(p)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func newMockProvider(t *testing.T) *mockProvider {
	return &mockProvider{svc: newMockReportService(), dir: t.TempDir(), t: t}
}

func TestGenerateCmd(t *testing.T) {
	p := newMockProvider(t)

	out, err := execute(t, p, "generate", "--title", "Monthly Supervision Report", "-p", "P1,P2", "--user", "u-sup")
	require.NoError(t, err)

	assert.Equal(t, service.GenerateRequest{
		Title:       "Monthly Supervision Report",
		ProcessIDs:  []string{"P1", "P2"},
		RequestedBy: "u-sup",
	}, p.svc.generated)

	written, err := os.ReadFile(filepath.Join(p.dir, "reporte-Monthly-Supervision-Report-2026-03-14.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 generated", string(written))

	assert.Contains(t, out, "Monthly Supervision Report")
	assert.Contains(t, out, "fpdf")
	assert.Equal(t, 1, p.cleaned)
}

func TestGenerateCmd_RequiresFlags(t *testing.T) {
	p := newMockProvider(t)

	_, err := execute(t, p, "generate", "--title", "Only title")

	assert.ErrorContains(t, err, "process")
	assert.Zero(t, p.opened, "nothing is opened when flags are missing")
}

func TestListCmd(t *testing.T) {
	p := newMockProvider(t)

	out, err := execute(t, p, "list", "--created-by", "u-sup", "--limit", "5")
	require.NoError(t, err)

	assert.Equal(t, port.ReportFilter{CreatedBy: "u-sup", Limit: 5}, p.svc.filter)
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "P1,P2")
	assert.Contains(t, out, "2026-03-14T09:30:00Z")
}

func TestListCmd_JSON(t *testing.T) {
	p := newMockProvider(t)

	out, err := execute(t, p, "list", "--json")
	require.NoError(t, err)

	var reports []entity.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "r1", reports[0].ID)
}

func TestShowCmd(t *testing.T) {
	p := newMockProvider(t)

	out, err := execute(t, p, "show", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "reporte-Monthly-Supervision-Report-2026-03-14.pdf")

	_, err = execute(t, p, "show", "missing")
	assert.ErrorIs(t, err, report.ErrReportNotFound)

	_, err = execute(t, p, "show")
	assert.Error(t, err)
}

func TestDownloadCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFile string
		wantData string
		wantErr  string
	}{
		{
			name:     "pdf",
			args:     []string{"download", "r1"},
			wantFile: "reporte-Monthly-Supervision-Report-2026-03-14.pdf",
			wantData: "%PDF-1.4 regenerated",
		},
		{
			name:     "xlsx",
			args:     []string{"download", "r1", "--format", "xlsx"},
			wantFile: "reporte-Monthly-Supervision-Report-2026-03-14.xlsx",
			wantData: "PK",
		},
		{
			name:    "unknown format",
			args:    []string{"download", "r1", "-f", "docx"},
			wantErr: "unsupported format",
		},
		{
			name:    "unknown report",
			args:    []string{"download", "nope"},
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMockProvider(t)

			out, err := execute(t, p, tt.args...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(p.dir, tt.wantFile))
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, string(data))
			assert.Contains(t, out, "Wrote")
		})
	}
}

func TestOutputDirOverride(t *testing.T) {
	p := newMockProvider(t)
	override := t.TempDir()

	_, err := execute(t, p, "download", "r1", "--output-dir", override)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(override, "reporte-Monthly-Supervision-Report-2026-03-14.pdf"))
}

func TestProviderError(t *testing.T) {
	p := newMockProvider(t)
	p.err = errors.New("database locked")

	_, err := execute(t, p, "list")
	assert.ErrorContains(t, err, "database locked")
}
