package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"go.uber.org/zap"
)

const defaultListLimit = 20

// ReportRepository implements port.ReportRepository
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB, logger *zap.Logger) port.ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores report metadata
func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		return errors.New("report id is required")
	}

	processIDs, err := json.Marshal(report.ProcessIDs)
	if err != nil {
		return fmt.Errorf("failed to encode process ids: %w", err)
	}

	query := `
		INSERT INTO reports (id, title, filename, process_ids, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		report.ID,
		report.Title,
		report.Filename,
		string(processIDs),
		report.CreatedBy,
		report.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create report", zap.String("report_id", report.ID), zap.Error(err))
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves report metadata by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	query := `
		SELECT id, title, filename, process_ids, created_by, created_at
		FROM reports
		WHERE id = ?
	`

	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get report by ID", zap.String("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// List retrieves reports newest first
func (r *ReportRepository) List(ctx context.Context, filter port.ReportFilter) ([]*entity.Report, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := `
		SELECT id, title, filename, process_ids, created_by, created_at
		FROM reports
		WHERE (? = '' OR created_by = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		filter.CreatedBy, filter.CreatedBy, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error("Failed to list reports", zap.Error(err))
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*entity.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*entity.Report, error) {
	var (
		report     entity.Report
		processIDs string
	)
	if err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Filename,
		&processIDs,
		&report.CreatedBy,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(processIDs), &report.ProcessIDs); err != nil {
		return nil, fmt.Errorf("failed to decode process ids: %w", err)
	}
	return &report, nil
}

// Verify interface compliance
var _ port.ReportRepository = (*ReportRepository)(nil)
