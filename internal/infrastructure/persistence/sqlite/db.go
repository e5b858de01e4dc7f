package sqlite

import (
	"context"
	"database/sql"

	"github.com/garyjia/process-reports/internal/application/port"
	"go.uber.org/zap"
)

// DB wraps sql.DB for health reporting
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: logger,
	}
}

// Ping implements port.HealthChecker
func (db *DB) Ping(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		db.logger.Warn("SQLite ping failed", zap.Error(err))
		return err
	}
	return nil
}

var _ port.HealthChecker = (*DB)(nil)
