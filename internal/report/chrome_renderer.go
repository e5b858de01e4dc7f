package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ChromeRendererName identifies the headless browser renderer.
const ChromeRendererName = "chrome"

// PrintOptions describes the printed page. Sizes are in inches.
type PrintOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginRight     float64
	MarginBottom    float64
	MarginLeft      float64
	PrintBackground bool
}

const mmPerInch = 25.4

// A4PrintOptions returns A4 portrait with the given margins in millimetres and
// backgrounds enabled.
func A4PrintOptions(top, right, bottom, left float64) PrintOptions {
	return PrintOptions{
		PaperWidth:      210 / mmPerInch,
		PaperHeight:     297 / mmPerInch,
		MarginTop:       top / mmPerInch,
		MarginRight:     right / mmPerInch,
		MarginBottom:    bottom / mmPerInch,
		MarginLeft:      left / mmPerInch,
		PrintBackground: true,
	}
}

// Engine is one running browser instance. Close must release the underlying
// process and is called exactly once per launched Engine.
type Engine interface {
	Load(ctx context.Context, html string) error
	Print(ctx context.Context, opts PrintOptions) ([]byte, error)
	Close() error
}

// EngineLauncher starts browser instances.
type EngineLauncher interface {
	Launch(ctx context.Context) (Engine, error)
}

// ChromeConfig holds the limits of the headless browser renderer.
type ChromeConfig struct {
	// QueueTimeout bounds the wait for a free browser slot
	QueueTimeout  time.Duration
	LaunchTimeout time.Duration
	LoadTimeout   time.Duration
	PrintTimeout  time.Duration
	MaxConcurrent int64
	Print         PrintOptions
}

// DefaultChromeConfig returns 30s load/print limits and A4 with 20/15mm margins.
func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		QueueTimeout:  10 * time.Second,
		LaunchTimeout: 15 * time.Second,
		LoadTimeout:   30 * time.Second,
		PrintTimeout:  30 * time.Second,
		MaxConcurrent: 2,
		Print:         A4PrintOptions(20, 15, 20, 15),
	}
}

// ChromeRenderer lays the document out as HTML in a headless browser and
// prints it to PDF.
type ChromeRenderer struct {
	launcher EngineLauncher
	cfg      ChromeConfig
	slots    *semaphore.Weighted
	logger   *zap.Logger
}

// NewChromeRenderer creates a new ChromeRenderer
func NewChromeRenderer(launcher EngineLauncher, cfg ChromeConfig, logger *zap.Logger) *ChromeRenderer {
	defaults := DefaultChromeConfig()
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaults.QueueTimeout
	}
	if cfg.LaunchTimeout <= 0 {
		cfg.LaunchTimeout = defaults.LaunchTimeout
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaults.LoadTimeout
	}
	if cfg.PrintTimeout <= 0 {
		cfg.PrintTimeout = defaults.PrintTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaults.MaxConcurrent
	}
	if cfg.Print.PaperWidth <= 0 || cfg.Print.PaperHeight <= 0 {
		cfg.Print = defaults.Print
	}

	return &ChromeRenderer{
		launcher: launcher,
		cfg:      cfg,
		slots:    semaphore.NewWeighted(cfg.MaxConcurrent),
		logger:   logger,
	}
}

// Name implements Renderer
func (r *ChromeRenderer) Name() string {
	return ChromeRendererName
}

// Render implements Renderer. The browser is always closed before Render
// returns, whatever the outcome.
func (r *ChromeRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	html, err := RenderMarkup(doc)
	if err != nil {
		return nil, newRenderError(r.Name(), StageMarkup, err)
	}

	queueCtx, cancelQueue := context.WithTimeout(ctx, r.cfg.QueueTimeout)
	err = stageError(queueCtx, r.slots.Acquire(queueCtx, 1))
	cancelQueue()
	if err != nil {
		r.logger.Warn("No browser slot available", zap.Duration("queue_timeout", r.cfg.QueueTimeout))
		return nil, newRenderError(r.Name(), StageLaunch, err)
	}
	defer r.slots.Release(1)

	launchCtx, cancelLaunch := context.WithTimeout(ctx, r.cfg.LaunchTimeout)
	engine, err := r.launcher.Launch(launchCtx)
	err = stageError(launchCtx, err)
	cancelLaunch()
	if err != nil {
		return nil, newRenderError(r.Name(), StageLaunch, fmt.Errorf("%w: %w", ErrEngineLaunch, err))
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			r.logger.Warn("Failed to close browser", zap.Error(cerr))
		}
	}()

	loadCtx, cancelLoad := context.WithTimeout(ctx, r.cfg.LoadTimeout)
	err = stageError(loadCtx, engine.Load(loadCtx, html))
	cancelLoad()
	if err != nil {
		return nil, newRenderError(r.Name(), StageLoad, err)
	}

	printCtx, cancelPrint := context.WithTimeout(ctx, r.cfg.PrintTimeout)
	pdf, err := engine.Print(printCtx, r.cfg.Print)
	err = stageError(printCtx, err)
	cancelPrint()
	if err != nil {
		return nil, newRenderError(r.Name(), StagePrint, err)
	}

	r.logger.Debug("Browser rendered report", zap.Int("bytes", len(pdf)))
	return pdf, nil
}

// stageError makes sure a failure caused by the stage deadline is
// recognisable as context.DeadlineExceeded, whatever the engine returned.
func stageError(stageCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(stageCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

var _ Renderer = (*ChromeRenderer)(nil)
