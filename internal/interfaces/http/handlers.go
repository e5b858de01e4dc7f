package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/application/service"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"github.com/garyjia/process-reports/internal/report"
)

// Request headers and response headers set on report downloads
const (
	HeaderUserID          = "X-User-ID"
	HeaderReportID        = "X-Report-ID"
	HeaderReportCreatedAt = "X-Report-Created-At"
	HeaderReportRenderer  = "X-Report-Renderer"

	pdfContentType = "application/pdf"
)

// List paging bounds
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

const healthTimeout = 3 * time.Second

// Handlers contains all HTTP request handlers
type Handlers struct {
	reportService service.ReportService
	health        port.HealthChecker
	version       string
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	reportService service.ReportService,
	health port.HealthChecker,
	version string,
	logger Logger,
) *Handlers {
	return &Handlers{
		reportService: reportService,
		health:        health,
		version:       version,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// GenerateReportRequest is the body of POST /api/v1/reports/generate
type GenerateReportRequest struct {
	Title      string   `json:"title"`
	ProcessIDs []string `json:"processIds"`
}

// ReportResponse represents report metadata in API responses
type ReportResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Filename   string   `json:"filename"`
	ProcessIDs []string `json:"processIds"`
	CreatedBy  string   `json:"createdBy"`
	CreatedAt  string   `json:"createdAt"`
}

// ListReportsRequest represents query parameters for listing reports
type ListReportsRequest struct {
	CreatedBy string `form:"createdBy"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		h.logger.Error("Health check failed", "error", err.Error())
		resp.Status = "unhealthy"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Data:    resp,
			Error:   "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    resp,
	})
}

// GenerateReport handles POST /api/v1/reports/generate
func (h *Handlers) GenerateReport(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid report request body", "requested_by", userID, "error", err.Error())
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.reportService.Generate(c.Request.Context(), service.GenerateRequest{
		Title:       req.Title,
		ProcessIDs:  req.ProcessIDs,
		RequestedBy: userID,
	})
	if err != nil {
		h.writeError(c, err, "Report generation failed",
			"title", req.Title, "process_count", len(req.ProcessIDs), "requested_by", userID)
		return
	}

	h.writePDF(c, result)
}

// ListReports handles GET /api/v1/reports
func (h *Handlers) ListReports(c *gin.Context) {
	var req ListReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	reports, err := h.reportService.List(c.Request.Context(), port.ReportFilter{
		CreatedBy: req.CreatedBy,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		h.writeError(c, err, "Failed to list reports", "created_by", req.CreatedBy)
		return
	}

	data := make([]ReportResponse, 0, len(reports))
	for _, rec := range reports {
		data = append(data, toReportResponse(rec))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// GetReport handles GET /api/v1/reports/:id
func (h *Handlers) GetReport(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to get report", "report_id", id)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toReportResponse(rec),
	})
}

// DownloadReport handles GET /api/v1/reports/:id/download. The document is
// regenerated from current data on every call.
func (h *Handlers) DownloadReport(c *gin.Context) {
	id := c.Param("id")
	format := c.DefaultQuery("format", "pdf")

	switch format {
	case "pdf":
		result, err := h.reportService.Regenerate(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err, "Report download failed", "report_id", id, "format", format)
			return
		}
		h.writePDF(c, result)
	case "xlsx":
		export, err := h.reportService.ExportSpreadsheet(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err, "Report download failed", "report_id", id, "format", format)
			return
		}
		h.writeAttachment(c, export.ContentType, export.Filename, export.Data)
	default:
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("unsupported format %q", format),
		})
	}
}

func (h *Handlers) requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(HeaderUserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing " + HeaderUserID + " header",
		})
		return "", false
	}
	return userID, true
}

func (h *Handlers) writePDF(c *gin.Context, result *service.GeneratedReport) {
	c.Header(HeaderReportID, result.Report.ID)
	c.Header(HeaderReportCreatedAt, result.Report.CreatedAt.UTC().Format(time.RFC3339))
	c.Header(HeaderReportRenderer, result.Renderer)
	h.writeAttachment(c, pdfContentType, result.Report.Filename, result.PDF)
}

func (h *Handlers) writeAttachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, contentType, data)
}

// writeError maps err onto a status code. Causes of internal failures are
// logged but never returned to the client.
func (h *Handlers) writeError(c *gin.Context, err error, msg string, keysAndValues ...interface{}) {
	status, clientMsg := http.StatusInternalServerError, "internal server error"

	switch report.KindOf(err) {
	case report.KindValidation:
		status, clientMsg = http.StatusBadRequest, err.Error()
	case report.KindNotFound:
		status, clientMsg = http.StatusNotFound, notFoundMessage(err)
	case report.KindGeneration:
		clientMsg = "report generation failed"
	}

	h.logger.Error(msg, append(keysAndValues, "status", status, "error", err.Error())...)
	c.JSON(status, Response{
		Success: false,
		Error:   clientMsg,
	})
}

func notFoundMessage(err error) string {
	if errors.Is(err, report.ErrReportNotFound) {
		return "report not found"
	}
	return "no matching processes found"
}

// toReportResponse converts domain entity to API response
func toReportResponse(rec *entity.Report) ReportResponse {
	ids := rec.ProcessIDs
	if ids == nil {
		ids = []string{}
	}
	return ReportResponse{
		ID:         rec.ID,
		Title:      rec.Title,
		Filename:   rec.Filename,
		ProcessIDs: ids,
		CreatedBy:  rec.CreatedBy,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}
