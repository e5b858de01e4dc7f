package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/application/service"
	httpserver "github.com/garyjia/process-reports/internal/interfaces/http"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	database *DatabaseBundle
	metrics  *MetricsBundle
	pipeline *PipelineBundle
	storage  port.FileStorage
	service  service.ReportService
	server   *httpserver.Server

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database, migrations and repositories
// 2. Metrics
// 3. Report pipeline
// 4. Application service and storage
// 5. HTTP server (not listening until Server().Start is called)
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.database = db
	c.logger.Info("Database initialized", zap.String("driver", c.config.Database.Driver))

	m, err := ProvideMetrics(&c.config.Metrics)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	c.metrics = m

	pipeline, err := ProvidePipeline(&c.config.Report, c.database, c.metrics.Collector, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize report pipeline: %w", err)
	}
	c.pipeline = pipeline
	c.logger.Info("Report pipeline initialized",
		zap.String("locale", c.config.Report.Locale),
		zap.Bool("chrome_enabled", c.config.Report.Chrome.Enabled))

	c.service = ProvideReportService(c.database, c.pipeline, c.metrics.Collector, c.logger)
	c.storage = ProvideStorage(&c.config.Storage, c.logger)
	c.server = ProvideHTTPServer(c.config, c.service, c.database.Health, c.metrics, c.logger)

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error
	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
	}
	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %v", len(errs), errs)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.database == nil {
		return nil
	}
	err := c.database.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	} else {
		c.logger.Info("Database closed")
	}
	c.database = nil
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	c.mu.Lock()
	db := c.database
	c.mu.Unlock()

	switch {
	case db == nil:
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	default:
		if err := db.Health.Ping(ctx); err != nil {
			status.Components["database"] = ComponentHealth{Healthy: false, Message: fmt.Sprintf("ping failed: %v", err)}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.pipeline != nil {
		status.Components["pipeline"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["pipeline"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// ReportService returns the application service.
func (c *Container) ReportService() service.ReportService {
	return c.service
}

// Storage returns the local output storage.
func (c *Container) Storage() port.FileStorage {
	return c.storage
}

// Server returns the HTTP server.
func (c *Container) Server() *httpserver.Server {
	return c.server
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service and http Logger interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
