package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// RenderResult is the output of a successful Chain run.
type RenderResult struct {
	PDF      []byte
	Renderer string
	Pages    int
	// Fallback is true when a renderer other than the first produced the PDF.
	Fallback bool
}

// Chain tries renderers in a fixed order until one succeeds.
type Chain struct {
	renderers []Renderer
	pages     PageCounter
	metrics   Metrics
	logger    *zap.Logger
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// WithPageCounter verifies that every produced PDF declares at least one page.
func WithPageCounter(pc PageCounter) ChainOption {
	return func(c *Chain) {
		c.pages = pc
	}
}

// WithMetrics records render attempts and fallback activations.
func WithMetrics(m Metrics) ChainOption {
	return func(c *Chain) {
		c.metrics = m
	}
}

// NewChain creates a Chain over renderers, tried in the given order
func NewChain(logger *zap.Logger, renderers []Renderer, opts ...ChainOption) *Chain {
	c := &Chain{
		renderers: renderers,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render produces a PDF for doc. Each renderer runs at most once; the first
// success wins. When every renderer fails the error wraps ErrGenerationFailed
// and all individual causes.
func (c *Chain) Render(ctx context.Context, doc *Document) (*RenderResult, error) {
	if len(c.renderers) == 0 {
		return nil, fmt.Errorf("%w: no renderer configured", ErrGenerationFailed)
	}

	var errs []error
	for i, r := range c.renderers {
		if i > 0 {
			c.logger.Warn("Falling back to next renderer",
				zap.String("renderer", r.Name()),
				zap.Error(errs[len(errs)-1]))
			if c.metrics != nil {
				c.metrics.FallbackActivated()
			}
		}

		pdf, pages, err := c.attempt(ctx, r, doc)
		if c.metrics != nil {
			c.metrics.RenderAttempt(r.Name(), err)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		return &RenderResult{
			PDF:      pdf,
			Renderer: r.Name(),
			Pages:    pages,
			Fallback: i > 0,
		}, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, errors.Join(errs...))
}

func (c *Chain) attempt(ctx context.Context, r Renderer, doc *Document) ([]byte, int, error) {
	pdf, err := r.Render(ctx, doc)
	if err != nil {
		var renderErr *RenderError
		if !errors.As(err, &renderErr) {
			err = newRenderError(r.Name(), StageDraw, err)
		}
		return nil, 0, err
	}
	if len(pdf) == 0 {
		return nil, 0, newRenderError(r.Name(), StageInspect, ErrEmptyDocument)
	}

	if c.pages == nil {
		return pdf, 0, nil
	}
	pages, err := c.pages.PageCount(pdf)
	if err != nil {
		return nil, 0, newRenderError(r.Name(), StageInspect, err)
	}
	if pages < 1 {
		return nil, 0, newRenderError(r.Name(), StageInspect, ErrEmptyDocument)
	}
	return pdf, pages, nil
}
