package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/process-reports/internal/application/port"
	"github.com/garyjia/process-reports/internal/application/service"
	"github.com/garyjia/process-reports/internal/config"
	"github.com/garyjia/process-reports/internal/container"
	"github.com/garyjia/process-reports/pkg/utils"
)

// app is what every subcommand needs from the wiring.
type app struct {
	Reports service.ReportService
	Storage port.FileStorage
}

// appProvider builds the app for one command run and returns its cleanup.
type appProvider interface {
	Open(ctx context.Context, opts *rootOptions) (*app, func(), error)
}

type rootOptions struct {
	configPath string
	outputDir  string
	jsonOutput bool
}

// containerProvider starts the real container from the config file.
type containerProvider struct{}

func (containerProvider) Open(ctx context.Context, opts *rootOptions) (*app, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.outputDir != "" {
		cfg.Storage.OutputDir = opts.outputDir
	}

	// Logs go to stderr so stdout stays machine readable
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg.ToContainerConfig(version), logger)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return &app{Reports: c.ReportService(), Storage: c.Storage()}, cleanup, nil
}

func newRootCmd(provider appProvider) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Generate and inspect process reports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "path to the configuration file")
	root.PersistentFlags().StringVar(&opts.outputDir, "output-dir", "", "directory for written files (overrides storage.output_dir)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newGenerateCmd(provider, opts),
		newListCmd(provider, opts),
		newShowCmd(provider, opts),
		newDownloadCmd(provider, opts),
	)
	return root
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, provider appProvider, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, cleanup, err := provider.Open(ctx, opts)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return fn(ctx, a)
}
