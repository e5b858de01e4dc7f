package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func shortChromeConfig() ChromeConfig {
	cfg := DefaultChromeConfig()
	cfg.LaunchTimeout = 50 * time.Millisecond
	cfg.LoadTimeout = 50 * time.Millisecond
	cfg.PrintTimeout = 50 * time.Millisecond
	return cfg
}

func TestChromeRenderer_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := &fakeEngine{pdf: []byte("%PDF-1.7 chrome")}
	launcher := &fakeLauncher{engine: engine}
	r := NewChromeRenderer(launcher, shortChromeConfig(), zaptest.NewLogger(t))

	pdf, err := r.Render(context.Background(), supervisionDocument())
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.7 chrome"), pdf)
	assert.Equal(t, int32(1), engine.closed.Load())
	assert.True(t, strings.HasPrefix(engine.html, "<!DOCTYPE html>"))
	assert.Contains(t, engine.html, "Monthly Supervision Report")
	assert.Equal(t, ChromeRendererName, r.Name())
}

func TestChromeRenderer_Failures(t *testing.T) {
	tests := []struct {
		name      string
		launcher  *fakeLauncher
		stage     string
		timeout   bool
		launchErr bool
	}{
		{
			name:      "engine does not start",
			launcher:  &fakeLauncher{err: errBrowserMissing},
			stage:     StageLaunch,
			launchErr: true,
		},
		{
			name:      "start-up hangs",
			launcher:  &fakeLauncher{block: true},
			stage:     StageLaunch,
			timeout:   true,
			launchErr: true,
		},
		{
			name:     "content load times out",
			launcher: &fakeLauncher{engine: &fakeEngine{blockLoad: true}},
			stage:    StageLoad,
			timeout:  true,
		},
		{
			name:     "print times out",
			launcher: &fakeLauncher{engine: &fakeEngine{blockPrint: true}},
			stage:    StagePrint,
			timeout:  true,
		},
		{
			name:     "print fails",
			launcher: &fakeLauncher{engine: &fakeEngine{printErr: assert.AnError}},
			stage:    StagePrint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			r := NewChromeRenderer(tt.launcher, shortChromeConfig(), zaptest.NewLogger(t))
			pdf, err := r.Render(context.Background(), supervisionDocument())

			assert.Nil(t, pdf)
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, ChromeRendererName, renderErr.Renderer)
			assert.Equal(t, tt.stage, renderErr.Stage)
			assert.Equal(t, tt.timeout, errors.Is(err, ErrRenderTimeout))
			if tt.launchErr {
				assert.ErrorIs(t, err, ErrEngineLaunch)
			}
			if tt.launcher.engine != nil {
				assert.Equal(t, int32(1), tt.launcher.engine.closed.Load(), "engine must be closed")
			}
		})
	}
}

// countingLauncher tracks how many engines run at once.
type countingLauncher struct {
	mu      sync.Mutex
	running int
	peak    int
	hold    time.Duration
	total   atomic.Int32
}

type countingEngine struct {
	l *countingLauncher
}

func (l *countingLauncher) Launch(context.Context) (Engine, error) {
	l.mu.Lock()
	l.running++
	if l.running > l.peak {
		l.peak = l.running
	}
	l.mu.Unlock()
	l.total.Add(1)
	return &countingEngine{l: l}, nil
}

func (e *countingEngine) Load(context.Context, string) error {
	time.Sleep(e.l.hold)
	return nil
}

func (e *countingEngine) Print(context.Context, PrintOptions) ([]byte, error) {
	return []byte("%PDF"), nil
}

func (e *countingEngine) Close() error {
	e.l.mu.Lock()
	e.l.running--
	e.l.mu.Unlock()
	return nil
}

func TestChromeRenderer_BoundsConcurrentBrowsers(t *testing.T) {
	defer goleak.VerifyNone(t)

	launcher := &countingLauncher{hold: 20 * time.Millisecond}
	cfg := shortChromeConfig()
	cfg.MaxConcurrent = 2
	r := NewChromeRenderer(launcher, cfg, zaptest.NewLogger(t))
	doc := supervisionDocument()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Render(context.Background(), doc)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(6), launcher.total.Load())
	assert.LessOrEqual(t, launcher.peak, 2)
	assert.Equal(t, 0, launcher.running)
}

func TestChromeRenderer_SlotWaitTimesOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := &fakeEngine{blockLoad: true}
	cfg := shortChromeConfig()
	cfg.MaxConcurrent = 1
	cfg.QueueTimeout = 50 * time.Millisecond
	cfg.LoadTimeout = time.Second
	launcher := &fakeLauncher{engine: engine}
	r := NewChromeRenderer(launcher, cfg, zaptest.NewLogger(t))
	doc := supervisionDocument()

	held := make(chan error, 1)
	go func() {
		_, err := r.Render(context.WithoutCancel(context.Background()), doc)
		held <- err
	}()
	require.Eventually(t, func() bool { return launcher.launches.Load() == 1 },
		time.Second, 5*time.Millisecond)

	start := time.Now()
	pdf, err := r.Render(context.WithoutCancel(context.Background()), doc)
	elapsed := time.Since(start)

	assert.Nil(t, pdf)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, StageLaunch, renderErr.Stage)
	assert.ErrorIs(t, err, ErrRenderTimeout)
	assert.NotErrorIs(t, err, ErrEngineLaunch)
	assert.Less(t, elapsed, 500*time.Millisecond)

	assert.ErrorIs(t, <-held, ErrRenderTimeout)
	assert.Equal(t, int32(1), launcher.launches.Load())
	assert.Equal(t, int32(1), engine.closed.Load())
}

func TestA4PrintOptions(t *testing.T) {
	opts := A4PrintOptions(20, 15, 20, 15)

	assert.InDelta(t, 8.27, opts.PaperWidth, 0.01)
	assert.InDelta(t, 11.69, opts.PaperHeight, 0.01)
	assert.InDelta(t, 0.787, opts.MarginTop, 0.001)
	assert.InDelta(t, 0.591, opts.MarginLeft, 0.001)
	assert.True(t, opts.PrintBackground)
}
