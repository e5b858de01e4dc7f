package port

import (
	"context"

	"github.com/garyjia/process-reports/internal/domain/entity"
)

// ProcessRepository reads processes for reporting. Process writes belong to
// the CRUD layer and are not exposed here.
type ProcessRepository interface {
	// FindByIDs returns the processes whose id is in ids with reviewer and
	// creator resolved. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Process, error)
}

// IncidentRepository reads incidents for reporting
type IncidentRepository interface {
	// FindByProcessIDs returns every incident of the given processes,
	// newest first.
	FindByProcessIDs(ctx context.Context, processIDs []string) ([]*entity.Incident, error)
}

// ReportFilter narrows a report listing
type ReportFilter struct {
	CreatedBy string
	Limit     int
	Offset    int
}

// ReportRepository defines persistence operations for report metadata
type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	// GetByID returns nil, nil when no report has the id.
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	// List returns reports newest first.
	List(ctx context.Context, filter ReportFilter) ([]*entity.Report, error)
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}
