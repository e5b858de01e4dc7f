package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"golang.org/x/text/language"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration. Path applies to sqlite, URL to postgres.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ReportConfig holds document and renderer configuration
type ReportConfig struct {
	Locale        string        `mapstructure:"locale"`
	Timezone      string        `mapstructure:"timezone"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
	LaunchTimeout time.Duration `mapstructure:"launch_timeout"`
	LoadTimeout   time.Duration `mapstructure:"load_timeout"`
	PrintTimeout  time.Duration `mapstructure:"print_timeout"`
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
	Chrome        ChromeConfig  `mapstructure:"chrome"`
	Margins       MarginsConfig `mapstructure:"margins"`
	Compress      bool          `mapstructure:"compress"`
}

// ChromeConfig holds headless browser settings
type ChromeConfig struct {
	Enabled   bool              `mapstructure:"enabled"`
	ExecPath  string            `mapstructure:"exec_path"`
	NoSandbox bool              `mapstructure:"no_sandbox"`
	Flags     map[string]string `mapstructure:"flags"`
}

// MarginsConfig holds page margins in millimetres
type MarginsConfig struct {
	Top    float64 `mapstructure:"top"`
	Right  float64 `mapstructure:"right"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
}

// StorageConfig holds the local output directory used by the CLI
type StorageConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load loads configuration from an optional .env file, the config file and
// environment variables. An empty configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("REPORTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	// Database defaults
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/processes.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Report defaults
	v.SetDefault("report.locale", "en")
	v.SetDefault("report.timezone", "UTC")
	v.SetDefault("report.queue_timeout", 10*time.Second)
	v.SetDefault("report.launch_timeout", 15*time.Second)
	v.SetDefault("report.load_timeout", 30*time.Second)
	v.SetDefault("report.print_timeout", 30*time.Second)
	v.SetDefault("report.max_concurrent", 2)
	v.SetDefault("report.chrome.enabled", true)
	v.SetDefault("report.chrome.no_sandbox", false)
	v.SetDefault("report.margins.top", 20.0)
	v.SetDefault("report.margins.right", 15.0)
	v.SetDefault("report.margins.bottom", 20.0)
	v.SetDefault("report.margins.left", 15.0)
	v.SetDefault("report.compress", true)

	v.SetDefault("storage.output_dir", "generated_reports")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)
}

// bindEnvVars binds the unprefixed variables deployments already set
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "REPORTS_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("report.chrome.exec_path", "REPORTS_REPORT_CHROME_EXEC_PATH", "CHROME_PATH")
	v.BindEnv("server.port", "REPORTS_SERVER_PORT", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}

	if _, err := language.Parse(c.Report.Locale); err != nil {
		return fmt.Errorf("report.locale %q is not a valid language tag: %w", c.Report.Locale, err)
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("report.timezone %q: %w", c.Report.Timezone, err)
	}
	if c.Report.MaxConcurrent < 1 {
		return fmt.Errorf("report.max_concurrent must be at least 1")
	}
	for name, d := range map[string]time.Duration{
		"report.queue_timeout":  c.Report.QueueTimeout,
		"report.launch_timeout": c.Report.LaunchTimeout,
		"report.load_timeout":   c.Report.LoadTimeout,
		"report.print_timeout":  c.Report.PrintTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	m := c.Report.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("report.margins must not be negative")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}

	return nil
}
