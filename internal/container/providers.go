package container

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/application/service"
	"github.com/garyjia/process-reports/internal/infrastructure/metrics"
	"github.com/garyjia/process-reports/internal/infrastructure/persistence/postgres"
	"github.com/garyjia/process-reports/internal/infrastructure/persistence/repository"
	"github.com/garyjia/process-reports/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/process-reports/internal/infrastructure/storage"
	httpserver "github.com/garyjia/process-reports/internal/interfaces/http"
	"github.com/garyjia/process-reports/internal/report"
	"github.com/garyjia/process-reports/migrations"
	"github.com/garyjia/process-reports/pkg/database"
)

// DatabaseBundle holds the repositories of whichever driver is configured.
type DatabaseBundle struct {
	Processes port.ProcessRepository
	Incidents port.IncidentRepository
	Reports   port.ReportRepository
	Health    port.HealthChecker
	close     func() error
}

// Close releases the underlying connection pool.
func (b *DatabaseBundle) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// PipelineBundle holds the report pipeline stages.
type PipelineBundle struct {
	Aggregator *report.Aggregator
	Composer   *report.Composer
	Chain      *report.Chain
	Exporter   *report.SpreadsheetExporter
}

// MetricsBundle holds the collector and the registry it is exposed from.
type MetricsBundle struct {
	Collector *metrics.Collector
	Handler   http.Handler
}

// ProvideDatabase opens the configured database, applies pending migrations
// and builds the repositories on top of it.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Driver {
	case "postgres":
		return providePostgres(ctx, cfg, logger)
	default:
		return provideSQLite(ctx, cfg, logger)
	}
}

func provideSQLite(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(ctx, migrationFiles(cfg, migrations.SQLite)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Processes: repository.NewProcessRepository(db.DB, logger),
		Incidents: repository.NewIncidentRepository(db.DB, logger),
		Reports:   repository.NewReportRepository(db.DB, logger),
		Health:    sqlite.NewDB(db.DB, logger),
		close:     db.Close,
	}, nil
}

func providePostgres(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	store, err := postgres.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := store.Migrate(ctx, migrationFiles(cfg, migrations.Postgres)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Processes: store,
		Incidents: store,
		Reports:   store,
		Health:    store,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func migrationFiles(cfg *DatabaseConfig, embedded func() fs.FS) fs.FS {
	if cfg.MigrationsDir != "" {
		return os.DirFS(cfg.MigrationsDir)
	}
	return embedded()
}

// ProvideMetrics registers the pipeline collectors together with the Go
// runtime and process collectors on a dedicated registry.
func ProvideMetrics(cfg *MetricsConfig) (*MetricsBundle, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	bundle := &MetricsBundle{Collector: collector}
	if cfg != nil && cfg.Enabled {
		bundle.Handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	return bundle, nil
}

// ProvidePipeline builds the aggregator, composer, renderer chain and exporter.
func ProvidePipeline(cfg *ReportConfig, db *DatabaseBundle, collector *metrics.Collector, logger *zap.Logger) (*PipelineBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("report config is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	renderers := make([]report.Renderer, 0, 2)
	if cfg.Chrome.Enabled {
		launcher := report.NewChromedpLauncher(report.ChromedpConfig{
			ExecPath:  cfg.Chrome.ExecPath,
			NoSandbox: cfg.Chrome.NoSandbox,
			Flags:     chromeFlags(cfg.Chrome.Flags),
		}, logger)
		renderers = append(renderers, report.NewChromeRenderer(launcher, report.ChromeConfig{
			QueueTimeout:  cfg.QueueTimeout,
			LaunchTimeout: cfg.LaunchTimeout,
			LoadTimeout:   cfg.LoadTimeout,
			PrintTimeout:  cfg.PrintTimeout,
			MaxConcurrent: cfg.MaxConcurrent,
			Print:         report.A4PrintOptions(cfg.MarginTop, cfg.MarginRight, cfg.MarginBottom, cfg.MarginLeft),
		}, logger))
	}
	renderers = append(renderers, report.NewFallbackRenderer(report.FallbackConfig{
		MarginTop:    cfg.MarginTop,
		MarginRight:  cfg.MarginRight,
		MarginBottom: cfg.MarginBottom,
		MarginLeft:   cfg.MarginLeft,
		Compress:     cfg.Compress,
	}, logger))

	chainOpts := []report.ChainOption{report.WithPageCounter(report.FitzPageCounter{})}
	if collector != nil {
		chainOpts = append(chainOpts, report.WithMetrics(collector))
	}

	return &PipelineBundle{
		Aggregator: report.NewAggregator(db.Processes, db.Incidents, logger),
		Composer:   report.NewComposer(report.LabelsFor(cfg.Locale), report.WithLocation(loc)),
		Chain:      report.NewChain(logger, renderers, chainOpts...),
		Exporter:   report.NewSpreadsheetExporter(logger),
	}, nil
}

// chromeFlags turns "true"/"false" values into switches and passes the rest as values.
func chromeFlags(flags map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(flags))
	for name, value := range flags {
		if b, err := strconv.ParseBool(value); err == nil {
			out[name] = b
			continue
		}
		out[name] = value
	}
	return out
}

// ProvideReportService creates the application service over the pipeline.
func ProvideReportService(db *DatabaseBundle, pipeline *PipelineBundle, collector *metrics.Collector, logger *zap.Logger) service.ReportService {
	var opts []service.ReportServiceOption
	if collector != nil {
		opts = append(opts, service.WithObserver(collector))
	}
	return service.NewReportService(
		db.Reports,
		pipeline.Aggregator,
		pipeline.Composer,
		pipeline.Chain,
		pipeline.Exporter,
		&zapLoggerAdapter{logger: logger},
		opts...,
	)
}

// ProvideStorage creates the local output directory storage.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) port.FileStorage {
	return storage.NewLocalFileStorage(cfg.OutputDir, logger)
}

// ProvideHTTPServer creates the HTTP server.
func ProvideHTTPServer(cfg *Config, svc service.ReportService, health port.HealthChecker, m *MetricsBundle, logger *zap.Logger) *httpserver.Server {
	serverCfg := httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Version:      cfg.Version,
	}
	if m != nil && m.Handler != nil {
		serverCfg.MetricsPath = cfg.Metrics.Path
		serverCfg.MetricsHandler = m.Handler
	}
	return httpserver.NewServer(serverCfg, svc, health, &zapLoggerAdapter{logger: logger})
}
