package report

import (
	"context"

	"github.com/garyjia/process-reports/internal/domain/entity"
)

// ProcessReader loads processes with reviewer and creator resolved to summaries.
type ProcessReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Process, error)
}

// IncidentReader loads incidents belonging to any of the given processes,
// newest first, with process name and creator resolved.
type IncidentReader interface {
	FindByProcessIDs(ctx context.Context, processIDs []string) ([]*entity.Incident, error)
}

// Renderer turns a composed Document into PDF bytes.
type Renderer interface {
	Name() string
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// PageCounter reports how many pages a PDF declares.
type PageCounter interface {
	PageCount(pdf []byte) (int, error)
}

// Metrics receives pipeline observations. A nil Metrics is allowed everywhere.
type Metrics interface {
	RenderAttempt(renderer string, err error)
	FallbackActivated()
}
