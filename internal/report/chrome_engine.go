package report

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromedpConfig configures how browser processes are started.
type ChromedpConfig struct {
	// ExecPath is the browser binary; empty lets chromedp look it up.
	ExecPath  string
	NoSandbox bool
	Flags     map[string]interface{}
}

// ChromedpLauncher starts a fresh headless Chrome per render.
type ChromedpLauncher struct {
	cfg    ChromedpConfig
	logger *zap.Logger
}

// NewChromedpLauncher creates a new ChromedpLauncher
func NewChromedpLauncher(cfg ChromedpConfig, logger *zap.Logger) *ChromedpLauncher {
	return &ChromedpLauncher{cfg: cfg, logger: logger}
}

func (l *ChromedpLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)
	if l.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	for name, value := range l.cfg.Flags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// Launch implements EngineLauncher. ctx bounds start-up only; the returned
// engine lives until Close.
func (l *ChromedpLauncher) Launch(ctx context.Context) (Engine, error) {
	sugar := l.logger.Sugar()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), l.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	engine := &chromedpEngine{
		ctx: browserCtx,
		release: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}

	started := make(chan error, 1)
	go func() {
		// The first Run starts the browser and binds it to browserCtx.
		started <- chromedp.Run(browserCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
	case <-ctx.Done():
		_ = engine.Close()
		<-started
		return nil, ctx.Err()
	}

	return engine, nil
}

type chromedpEngine struct {
	ctx     context.Context
	release func()
	once    sync.Once
}

// run executes actions on the browser tab, bounded by ctx.
func (e *chromedpEngine) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(e.ctx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(e.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (e *chromedpEngine) Load(ctx context.Context, html string) error {
	return e.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (e *chromedpEngine) Print(ctx context.Context, opts PrintOptions) ([]byte, error) {
	var pdf []byte
	err := e.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(opts.PrintBackground).
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			WithMarginTop(opts.MarginTop).
			WithMarginRight(opts.MarginRight).
			WithMarginBottom(opts.MarginBottom).
			WithMarginLeft(opts.MarginLeft).
			WithDisplayHeaderFooter(false).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = buf
		return nil
	}))
	return pdf, err
}

// Close shuts the browser down and waits for its process to exit.
func (e *chromedpEngine) Close() error {
	e.once.Do(e.release)
	return nil
}

var _ EngineLauncher = (*ChromedpLauncher)(nil)
