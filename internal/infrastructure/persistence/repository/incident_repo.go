package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"go.uber.org/zap"
)

// IncidentRepository implements port.IncidentRepository
type IncidentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *sql.DB, logger *zap.Logger) port.IncidentRepository {
	return &IncidentRepository{
		db:     db,
		logger: logger,
	}
}

// FindByProcessIDs retrieves the incidents of the given processes, newest first
func (r *IncidentRepository) FindByProcessIDs(ctx context.Context, processIDs []string) ([]*entity.Incident, error) {
	if len(processIDs) == 0 {
		return []*entity.Incident{}, nil
	}

	marks, args := inClause(processIDs)
	query := fmt.Sprintf(`
		SELECT i.id, i.process_id, p.name, i.description, i.status, i.evidence,
			i.approved_at, i.resolved_at, i.created_at, i.updated_at,
			cr.id, cr.name, cr.email,
			asg.id, asg.name, asg.email
		FROM incidents i
		JOIN processes p ON p.id = i.process_id
		LEFT JOIN users cr ON cr.id = i.created_by
		LEFT JOIN users asg ON asg.id = i.assigned_to
		WHERE i.process_id IN (%s)
		ORDER BY i.created_at DESC, i.id DESC
	`, marks)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query incidents", zap.Int("process_ids", len(processIDs)), zap.Error(err))
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*entity.Incident
	for rows.Next() {
		var (
			in                                   entity.Incident
			evidence                             string
			approvedAt, resolvedAt               sql.NullTime
			creatorID, creatorName, creatorEmail sql.NullString
			assigneeID, assigneeName, assigneeEm sql.NullString
		)
		if err := rows.Scan(
			&in.ID, &in.ProcessID, &in.ProcessName, &in.Description, &in.Status, &evidence,
			&approvedAt, &resolvedAt, &in.CreatedAt, &in.UpdatedAt,
			&creatorID, &creatorName, &creatorEmail,
			&assigneeID, &assigneeName, &assigneeEm,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}

		if err := json.Unmarshal([]byte(evidence), &in.Evidence); err != nil {
			r.logger.Error("Malformed incident evidence", zap.String("incident_id", in.ID), zap.Error(err))
			return nil, fmt.Errorf("failed to decode evidence of incident %s: %w", in.ID, err)
		}
		in.ApprovedAt = timePtr(approvedAt)
		in.ResolvedAt = timePtr(resolvedAt)
		in.CreatedBy = userSummary(creatorID, creatorName, creatorEmail)
		in.AssignedTo = userSummary(assigneeID, assigneeName, assigneeEm)
		incidents = append(incidents, &in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}

	return incidents, nil
}

// Verify interface compliance
var _ port.IncidentRepository = (*IncidentRepository)(nil)
