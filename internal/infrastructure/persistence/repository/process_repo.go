package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"go.uber.org/zap"
)

// ProcessRepository implements port.ProcessRepository
type ProcessRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProcessRepository creates a new process repository
func NewProcessRepository(db *sql.DB, logger *zap.Logger) port.ProcessRepository {
	return &ProcessRepository{
		db:     db,
		logger: logger,
	}
}

// FindByIDs retrieves processes with reviewer and creator summaries, oldest first
func (r *ProcessRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Process, error) {
	if len(ids) == 0 {
		return []*entity.Process{}, nil
	}

	marks, args := inClause(ids)
	query := fmt.Sprintf(`
		SELECT p.id, p.name, COALESCE(p.description, ''), p.status,
			p.due_date, p.created_at, p.updated_at,
			rv.id, rv.name, rv.email,
			cr.id, cr.name, cr.email
		FROM processes p
		LEFT JOIN users rv ON rv.id = p.assigned_reviewer_id
		LEFT JOIN users cr ON cr.id = p.created_by
		WHERE p.id IN (%s)
		ORDER BY p.created_at ASC, p.id ASC
	`, marks)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query processes", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}
	defer rows.Close()

	var processes []*entity.Process
	for rows.Next() {
		var (
			p                               entity.Process
			dueDate                         sql.NullTime
			reviewerID, reviewerName, revEm sql.NullString
			creatorID, creatorName, crEm    sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Status,
			&dueDate, &p.CreatedAt, &p.UpdatedAt,
			&reviewerID, &reviewerName, &revEm,
			&creatorID, &creatorName, &crEm,
		); err != nil {
			return nil, fmt.Errorf("failed to scan process: %w", err)
		}

		p.DueDate = timePtr(dueDate)
		p.AssignedReviewer = userSummary(reviewerID, reviewerName, revEm)
		p.CreatedBy = userSummary(creatorID, creatorName, crEm)
		processes = append(processes, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processes: %w", err)
	}

	return processes, nil
}

// Verify interface compliance
var _ port.ProcessRepository = (*ProcessRepository)(nil)
