package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"validation", fmt.Errorf("%w: title is required", ErrInvalidRequest), KindValidation},
		{"no processes", ErrNoMatchingProcesses, KindNotFound},
		{"report missing", fmt.Errorf("get: %w", ErrReportNotFound), KindNotFound},
		{"generation", fmt.Errorf("%w: both failed", ErrGenerationFailed), KindGeneration},
		{"other", errors.New("disk full"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "generation_failure", KindGeneration.String())
	assert.Equal(t, "internal", KindInternal.String())
}

func TestNewRenderError_TagsTimeouts(t *testing.T) {
	err := newRenderError("chrome", StageLoad, context.DeadlineExceeded)

	assert.ErrorIs(t, err, ErrRenderTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "chrome", err.Renderer)
	assert.Contains(t, err.Error(), "chrome renderer failed at load")

	plain := newRenderError("fpdf", StageDraw, errors.New("bad font"))
	assert.NotErrorIs(t, plain, ErrRenderTimeout)
}
