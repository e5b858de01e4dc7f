package report

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid report request")

	// Lookup errors
	ErrNotFound            = errors.New("not found")
	ErrNoMatchingProcesses = fmt.Errorf("no matching processes: %w", ErrNotFound)
	ErrReportNotFound      = fmt.Errorf("report: %w", ErrNotFound)

	// Rendering errors
	ErrGenerationFailed = errors.New("report generation failed")
	ErrEngineLaunch     = errors.New("rendering engine failed to start")
	ErrRenderTimeout    = errors.New("rendering timed out")
	ErrEmptyDocument    = errors.New("rendered document has no pages")
)

// Kind is the cause category surfaced to callers of the pipeline.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindGeneration:
		return "generation_failure"
	default:
		return "internal"
	}
}

// KindOf classifies err into the category used at the request boundary.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidRequest):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrGenerationFailed):
		return KindGeneration
	default:
		return KindInternal
	}
}

// Render stages reported in RenderError
const (
	StageMarkup  = "markup"
	StageLaunch  = "launch"
	StageLoad    = "load"
	StagePrint   = "print"
	StageDraw    = "draw"
	StageInspect = "inspect"
)

// RenderError is the structured failure a Renderer returns. The Chain treats any
// RenderError as a signal to try the next strategy.
type RenderError struct {
	Renderer string
	Stage    string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s renderer failed at %s: %v", e.Renderer, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// newRenderError wraps err, tagging deadline overruns with ErrRenderTimeout.
func newRenderError(renderer, stage string, err error) *RenderError {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrRenderTimeout) {
		err = fmt.Errorf("%w: %w", ErrRenderTimeout, err)
	}
	return &RenderError{Renderer: renderer, Stage: stage, Err: err}
}
