// Package container wires the report pipeline together and owns the
// lifecycle of its database, renderers and HTTP server.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/process-reports/internal/report"
)

// Config holds all configuration for the Container.
type Config struct {
	Database DatabaseConfig
	Report   ReportConfig
	Storage  StorageConfig
	Server   ServerConfig
	Metrics  MetricsConfig

	// Version is reported by the health endpoint
	Version string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string

	// Path to the SQLite database file
	Path string

	// URL is the PostgreSQL connection string
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string
}

// ReportConfig holds document and renderer settings.
type ReportConfig struct {
	// Locale selects the label catalog, e.g. "en" or "es"
	Locale string

	// Timezone used for every date printed in a report
	Timezone string

	Chrome        ChromeConfig
	QueueTimeout  time.Duration
	LaunchTimeout time.Duration
	LoadTimeout   time.Duration
	PrintTimeout  time.Duration

	// MaxConcurrent bounds simultaneous browser instances
	MaxConcurrent int64

	// Page margins in millimetres, shared by both renderers
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Compress enables stream compression in the fallback renderer
	Compress bool
}

// ChromeConfig holds headless browser settings.
type ChromeConfig struct {
	// Enabled puts the browser renderer first in the chain
	Enabled   bool
	ExecPath  string
	NoSandbox bool
	Flags     map[string]string
}

// StorageConfig holds local output settings.
type StorageConfig struct {
	OutputDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	chrome := report.DefaultChromeConfig()
	fallback := report.DefaultFallbackConfig()

	return &Config{
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Path:            "data/processes.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Report: ReportConfig{
			Locale:        "en",
			Timezone:      "UTC",
			Chrome:        ChromeConfig{Enabled: true},
			QueueTimeout:  chrome.QueueTimeout,
			LaunchTimeout: chrome.LaunchTimeout,
			LoadTimeout:   chrome.LoadTimeout,
			PrintTimeout:  chrome.PrintTimeout,
			MaxConcurrent: chrome.MaxConcurrent,
			MarginTop:     fallback.MarginTop,
			MarginRight:   fallback.MarginRight,
			MarginBottom:  fallback.MarginBottom,
			MarginLeft:    fallback.MarginLeft,
			Compress:      fallback.Compress,
		},
		Storage: StorageConfig{
			OutputDir: "generated_reports",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Version: "dev",
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Report.MaxConcurrent < 1 {
		return fmt.Errorf("report.max_concurrent must be at least 1")
	}

	return nil
}
