// Package postgres implements the report repositories on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/domain/entity"
	"github.com/garyjia/process-reports/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const defaultListLimit = 20

// DBPool abstracts pgxpool.Pool so the store can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store serves processes, incidents and report metadata from PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("postgres"),
	}, nil
}

// Ping implements port.HealthChecker
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending migrations from fsys inside one transaction each.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := s.pool.Exec(ctx, sqlCreateMigrations); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := database.LoadMigrations(fsys)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		if err := s.pool.QueryRow(ctx, sqlMigrationApplied, m.Version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if applied {
			continue
		}

		s.log.Info("Applying migration", zap.Int("version", m.Version), zap.String("name", m.Name))
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m database.Migration) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback migration", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sqlRecordMigration, m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindByIDs implements port.ProcessRepository
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]*entity.Process, error) {
	if len(ids) == 0 {
		return []*entity.Process{}, nil
	}

	rows, err := s.pool.Query(ctx, sqlFindProcesses, ids)
	if err != nil {
		s.log.Error("Failed to query processes", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}
	defer rows.Close()

	var processes []*entity.Process
	for rows.Next() {
		var (
			p                 entity.Process
			status            string
			reviewer, creator userColumns
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &status,
			&p.DueDate, &p.CreatedAt, &p.UpdatedAt,
			&reviewer.id, &reviewer.name, &reviewer.email,
			&creator.id, &creator.name, &creator.email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan process: %w", err)
		}
		p.Status = entity.ProcessStatus(status)
		p.AssignedReviewer = reviewer.summary()
		p.CreatedBy = creator.summary()
		processes = append(processes, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processes: %w", err)
	}
	return processes, nil
}

// FindByProcessIDs implements port.IncidentRepository
func (s *Store) FindByProcessIDs(ctx context.Context, processIDs []string) ([]*entity.Incident, error) {
	if len(processIDs) == 0 {
		return []*entity.Incident{}, nil
	}

	rows, err := s.pool.Query(ctx, sqlFindIncidents, processIDs)
	if err != nil {
		s.log.Error("Failed to query incidents", zap.Int("process_ids", len(processIDs)), zap.Error(err))
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*entity.Incident
	for rows.Next() {
		var (
			in                entity.Incident
			status            string
			creator, assignee userColumns
		)
		if err := rows.Scan(
			&in.ID, &in.ProcessID, &in.ProcessName, &in.Description, &status, &in.Evidence,
			&in.ApprovedAt, &in.ResolvedAt, &in.CreatedAt, &in.UpdatedAt,
			&creator.id, &creator.name, &creator.email,
			&assignee.id, &assignee.name, &assignee.email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		in.Status = entity.IncidentStatus(status)
		in.CreatedBy = creator.summary()
		in.AssignedTo = assignee.summary()
		incidents = append(incidents, &in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}
	return incidents, nil
}

// Create implements port.ReportRepository
func (s *Store) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		return errors.New("report id is required")
	}

	processIDs := report.ProcessIDs
	if processIDs == nil {
		processIDs = []string{}
	}
	_, err := s.pool.Exec(ctx, sqlInsertReport,
		report.ID, report.Title, report.Filename, processIDs, report.CreatedBy, report.CreatedAt.UTC())
	if err != nil {
		s.log.Error("Failed to create report", zap.String("report_id", report.ID), zap.Error(err))
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID implements port.ReportRepository
func (s *Store) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	var r entity.Report
	err := s.pool.QueryRow(ctx, sqlGetReport, id).Scan(
		&r.ID, &r.Title, &r.Filename, &r.ProcessIDs, &r.CreatedBy, &r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("Failed to get report by ID", zap.String("report_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &r, nil
}

// List implements port.ReportRepository
func (s *Store) List(ctx context.Context, filter port.ReportFilter) ([]*entity.Report, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	rows, err := s.pool.Query(ctx, sqlListReports, filter.CreatedBy, filter.Limit, filter.Offset)
	if err != nil {
		s.log.Error("Failed to list reports", zap.Error(err))
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*entity.Report{}
	for rows.Next() {
		var r entity.Report
		if err := rows.Scan(&r.ID, &r.Title, &r.Filename, &r.ProcessIDs, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

// userColumns receives the nullable columns of a LEFT JOINed user.
type userColumns struct {
	id, name, email *string
}

func (u userColumns) summary() *entity.UserSummary {
	if u.id == nil {
		return nil
	}
	s := &entity.UserSummary{ID: *u.id}
	if u.name != nil {
		s.Name = *u.name
	}
	if u.email != nil {
		s.Email = *u.email
	}
	return s
}

var (
	_ port.ProcessRepository  = (*Store)(nil)
	_ port.IncidentRepository = (*Store)(nil)
	_ port.ReportRepository   = (*Store)(nil)
	_ port.HealthChecker      = (*Store)(nil)
)
