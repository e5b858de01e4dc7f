package config

import (
	"github.com/garyjia/process-reports/internal/container"
)

// ToContainerConfig converts the file-based Config into the container's
// configuration structure.
func (c *Config) ToContainerConfig(version string) *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Driver:          c.Database.Driver,
			Path:            c.Database.Path,
			URL:             c.Database.URL,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Report: container.ReportConfig{
			Locale:   c.Report.Locale,
			Timezone: c.Report.Timezone,
			Chrome: container.ChromeConfig{
				Enabled:   c.Report.Chrome.Enabled,
				ExecPath:  c.Report.Chrome.ExecPath,
				NoSandbox: c.Report.Chrome.NoSandbox,
				Flags:     c.Report.Chrome.Flags,
			},
			QueueTimeout:  c.Report.QueueTimeout,
			LaunchTimeout: c.Report.LaunchTimeout,
			LoadTimeout:   c.Report.LoadTimeout,
			PrintTimeout:  c.Report.PrintTimeout,
			MaxConcurrent: c.Report.MaxConcurrent,
			MarginTop:     c.Report.Margins.Top,
			MarginRight:   c.Report.Margins.Right,
			MarginBottom:  c.Report.Margins.Bottom,
			MarginLeft:    c.Report.Margins.Left,
			Compress:      c.Report.Compress,
		},
		Storage: container.StorageConfig{
			OutputDir: c.Storage.OutputDir,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
		Metrics: container.MetricsConfig{
			Enabled: c.Metrics.Enabled,
			Path:    c.Metrics.Path,
		},
		Version: version,
	}
}
