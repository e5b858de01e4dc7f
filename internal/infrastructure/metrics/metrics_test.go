package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/garyjia/process-reports/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RenderAttempts(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	c.RenderAttempt("chrome", nil)
	c.RenderAttempt("chrome", fmt.Errorf("%w: load", report.ErrRenderTimeout))
	c.RenderAttempt("chrome", errors.New("crashed"))
	c.RenderAttempt("fpdf", nil)
	c.FallbackActivated()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.renderAttempts.WithLabelValues("chrome", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.renderAttempts.WithLabelValues("chrome", OutcomeTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.renderAttempts.WithLabelValues("chrome", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.renderAttempts.WithLabelValues("fpdf", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fallbacks))
}

func TestCollector_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveOperation("generate", nil, 2*time.Second)
	c.ObserveOperation("generate", report.ErrNoMatchingProcesses, time.Millisecond)
	c.ObserveOperation("generate", fmt.Errorf("%w: x", report.ErrInvalidRequest), 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("generate", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("generate", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("generate", "validation")))

	count, err := testutil.GatherAndCount(reg, "process_reports_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}
