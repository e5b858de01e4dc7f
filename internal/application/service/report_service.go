package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"github.com/garyjia/process-reports/internal/report"
	"github.com/garyjia/process-reports/pkg/utils"
	"github.com/google/uuid"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Operation names used in logs and metrics
const (
	OpGenerate   = "generate"
	OpRegenerate = "regenerate"
	OpExport     = "export"
)

// Title length limit in characters
const maxTitleLength = 200

// XLSXContentType is the media type of spreadsheet exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GenerateRequest is an inbound report generation request.
type GenerateRequest struct {
	Title       string
	ProcessIDs  []string
	RequestedBy string
}

// GeneratedReport is a rendered PDF together with its metadata record.
type GeneratedReport struct {
	Report   *entity.Report
	PDF      []byte
	Renderer string
	Pages    int
	Fallback bool
}

// Export is a non-PDF rendition of a stored report.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Aggregator loads the data a report covers
type Aggregator interface {
	Aggregate(ctx context.Context, processIDs []string) (*report.Aggregate, error)
}

// Composer builds the renderable document
type Composer interface {
	Compose(agg *report.Aggregate, title string) *report.Document
}

// DocumentRenderer turns a document into PDF bytes, falling back internally
type DocumentRenderer interface {
	Render(ctx context.Context, doc *report.Document) (*report.RenderResult, error)
}

// SpreadsheetExporter turns a document into workbook bytes
type SpreadsheetExporter interface {
	Export(doc *report.Document) ([]byte, error)
}

// OperationObserver records the outcome and duration of service calls
type OperationObserver interface {
	ObserveOperation(operation string, err error, elapsed time.Duration)
}

// ReportService generates, lists and regenerates reports
type ReportService interface {
	// Generate aggregates, composes and renders a new report, then stores its metadata.
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedReport, error)
	// Get returns stored report metadata.
	Get(ctx context.Context, id string) (*entity.Report, error)
	// List returns stored report metadata, newest first.
	List(ctx context.Context, filter port.ReportFilter) ([]*entity.Report, error)
	// Regenerate renders a fresh PDF from a stored report without creating a new record.
	Regenerate(ctx context.Context, id string) (*GeneratedReport, error)
	// ExportSpreadsheet renders a stored report as an XLSX workbook.
	ExportSpreadsheet(ctx context.Context, id string) (*Export, error)
}

// ReportServiceOption configures the report service
type ReportServiceOption func(*reportServiceImpl)

// WithObserver records operation metrics.
func WithObserver(o OperationObserver) ReportServiceOption {
	return func(s *reportServiceImpl) {
		s.observer = o
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *reportServiceImpl) {
		s.now = now
	}
}

type reportServiceImpl struct {
	reports    port.ReportRepository
	aggregator Aggregator
	composer   Composer
	renderer   DocumentRenderer
	exporter   SpreadsheetExporter
	observer   OperationObserver
	logger     Logger
	now        func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	reports port.ReportRepository,
	aggregator Aggregator,
	composer Composer,
	renderer DocumentRenderer,
	exporter SpreadsheetExporter,
	logger Logger,
	opts ...ReportServiceOption,
) ReportService {
	s := &reportServiceImpl{
		reports:    reports,
		aggregator: aggregator,
		composer:   composer,
		renderer:   renderer,
		exporter:   exporter,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate implements ReportService. Generation is detached from ctx
// cancellation: a client that disconnects does not abort the render.
func (s *reportServiceImpl) Generate(ctx context.Context, req GenerateRequest) (result *GeneratedReport, err error) {
	start := time.Now()
	defer func() { s.observe(OpGenerate, err, start) }()

	req, err = normalizeRequest(req)
	if err != nil {
		s.logger.Info("Rejected report request", "title", req.Title, "process_count", len(req.ProcessIDs),
			"requested_by", req.RequestedBy, "error", err.Error())
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	logFields := []interface{}{"title", req.Title, "process_count", len(req.ProcessIDs), "requested_by", req.RequestedBy}

	rendered, err := s.render(ctx, req.Title, req.ProcessIDs, logFields)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	rec := &entity.Report{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Filename:   report.BuildFilename(req.Title, createdAt),
		ProcessIDs: req.ProcessIDs,
		CreatedBy:  req.RequestedBy,
		CreatedAt:  createdAt,
	}
	if err := s.reports.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to persist report metadata", append(logFields, "error", err.Error())...)
		return nil, fmt.Errorf("%w: failed to persist report metadata: %w", report.ErrGenerationFailed, err)
	}

	s.logger.Info("Report generated", append(logFields,
		"report_id", rec.ID,
		"renderer", rendered.Renderer,
		"fallback", rendered.Fallback,
		"bytes", len(rendered.PDF))...)

	return &GeneratedReport{
		Report:   rec,
		PDF:      rendered.PDF,
		Renderer: rendered.Renderer,
		Pages:    rendered.Pages,
		Fallback: rendered.Fallback,
	}, nil
}

// Get implements ReportService
func (s *reportServiceImpl) Get(ctx context.Context, id string) (*entity.Report, error) {
	if err := utils.ValidateIdentifier(id); err != nil {
		return nil, fmt.Errorf("%w: %w", report.ErrInvalidRequest, err)
	}

	rec, err := s.reports.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load report", "report_id", id, "error", err.Error())
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", report.ErrReportNotFound, id)
	}
	return rec, nil
}

// List implements ReportService
func (s *reportServiceImpl) List(ctx context.Context, filter port.ReportFilter) ([]*entity.Report, error) {
	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list reports", "created_by", filter.CreatedBy, "error", err.Error())
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Regenerate implements ReportService
func (s *reportServiceImpl) Regenerate(ctx context.Context, id string) (result *GeneratedReport, err error) {
	start := time.Now()
	defer func() { s.observe(OpRegenerate, err, start) }()

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	logFields := []interface{}{"report_id", rec.ID, "title", rec.Title, "process_count", len(rec.ProcessIDs), "created_by", rec.CreatedBy}
	rendered, err := s.render(ctx, rec.Title, rec.ProcessIDs, logFields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report regenerated", append(logFields, "renderer", rendered.Renderer, "fallback", rendered.Fallback)...)
	return &GeneratedReport{
		Report:   rec,
		PDF:      rendered.PDF,
		Renderer: rendered.Renderer,
		Pages:    rendered.Pages,
		Fallback: rendered.Fallback,
	}, nil
}

// ExportSpreadsheet implements ReportService
func (s *reportServiceImpl) ExportSpreadsheet(ctx context.Context, id string) (result *Export, err error) {
	start := time.Now()
	defer func() { s.observe(OpExport, err, start) }()

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	doc, err := s.compose(ctx, rec.Title, rec.ProcessIDs)
	if err != nil {
		s.logger.Error("Spreadsheet export failed", "report_id", rec.ID, "error", err.Error())
		return nil, err
	}

	data, err := s.exporter.Export(doc)
	if err != nil {
		s.logger.Error("Spreadsheet export failed", "report_id", rec.ID, "error", err.Error())
		return nil, fmt.Errorf("%w: %w", report.ErrGenerationFailed, err)
	}

	return &Export{
		Filename:    report.WithExtension(rec.Filename, ".xlsx"),
		ContentType: XLSXContentType,
		Data:        data,
	}, nil
}

// render runs aggregation, composition and the renderer chain.
func (s *reportServiceImpl) render(ctx context.Context, title string, processIDs []string, logFields []interface{}) (*report.RenderResult, error) {
	doc, err := s.compose(ctx, title, processIDs)
	if err != nil {
		s.logger.Error("Report aggregation failed", append(logFields, "error", err.Error())...)
		return nil, err
	}

	rendered, err := s.renderer.Render(ctx, doc)
	if err != nil {
		s.logger.Error("Report rendering failed", append(logFields, "error", err.Error())...)
		return nil, err
	}
	return rendered, nil
}

func (s *reportServiceImpl) compose(ctx context.Context, title string, processIDs []string) (*report.Document, error) {
	agg, err := s.aggregator.Aggregate(ctx, processIDs)
	if err != nil {
		return nil, err
	}
	return s.composer.Compose(agg, title), nil
}

func (s *reportServiceImpl) observe(operation string, err error, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveOperation(operation, err, time.Since(start))
	}
}

// normalizeRequest sanitizes the request and rejects empty or malformed input.
// Duplicate process ids are dropped, keeping first occurrence order.
func normalizeRequest(req GenerateRequest) (GenerateRequest, error) {
	req.Title = utils.SanitizeString(req.Title)
	req.RequestedBy = utils.SanitizeString(req.RequestedBy)

	switch {
	case req.Title == "":
		return req, fmt.Errorf("%w: title is required", report.ErrInvalidRequest)
	case len([]rune(req.Title)) > maxTitleLength:
		return req, fmt.Errorf("%w: title exceeds %d characters", report.ErrInvalidRequest, maxTitleLength)
	case len(req.ProcessIDs) == 0:
		return req, fmt.Errorf("%w: at least one process id is required", report.ErrInvalidRequest)
	case req.RequestedBy == "":
		return req, fmt.Errorf("%w: requesting user is required", report.ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(req.ProcessIDs))
	ids := make([]string, 0, len(req.ProcessIDs))
	for _, id := range req.ProcessIDs {
		id = strings.TrimSpace(id)
		if err := utils.ValidateIdentifier(id); err != nil {
			return req, fmt.Errorf("%w: %w", report.ErrInvalidRequest, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	req.ProcessIDs = ids
	return req, nil
}
