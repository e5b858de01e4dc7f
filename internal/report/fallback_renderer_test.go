package report

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/garyjia/process-reports/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func uncompressedFallback(t *testing.T) *FallbackRenderer {
	cfg := DefaultFallbackConfig()
	cfg.Compress = false
	return NewFallbackRenderer(cfg, zaptest.NewLogger(t))
}

func TestFallbackRenderer_Content(t *testing.T) {
	doc := supervisionDocument()

	pdf, err := uncompressedFallback(t).Render(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	for _, want := range []string{
		"(Alpha Review)",
		"(Beta Audit)",
		"(Ana Torres)",
		"(Unassigned)",
		"(No deadline)",
		"(No incidents recorded for this process.)",
		"Incident #1: Invoice total does not match order",
		"Incident #2: Missing signature on contract",
		"https://files.example.com/e1.png",
	} {
		assert.Contains(t, string(pdf), want)
	}
}

var textRun = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\) ?Tj`)

// pdfTextRuns returns the strings drawn by an uncompressed PDF, in drawing order.
func pdfTextRuns(pdf []byte) []string {
	var runs []string
	for _, m := range textRun.FindAllSubmatch(pdf, -1) {
		runs = append(runs, string(m[1]))
	}
	return runs
}

// sectionIncidentCounts reads the "Incidents:" value printed under each
// process heading of the details part.
func sectionIncidentCounts(t *testing.T, runs []string, labels *Labels, names []string) map[string]string {
	t.Helper()
	start := slices.Index(runs, labels.DetailsHeading)
	require.GreaterOrEqual(t, start, 0, "details heading drawn")

	counts := make(map[string]string, len(names))
	cursor := start
	for _, name := range names {
		at := slices.Index(runs[cursor:], name)
		require.GreaterOrEqual(t, at, 0, "section %q drawn", name)
		cursor += at

		label := slices.Index(runs[cursor:], labels.Incidents+":")
		require.GreaterOrEqual(t, label, 0, "incident count drawn for %q", name)
		cursor += label + 1
		require.Less(t, cursor, len(runs))
		counts[name] = runs[cursor]
	}
	return counts
}

func TestFallbackRenderer_MatchesPrimaryProcessSet(t *testing.T) {
	agg := supervisionAggregate()
	doc := supervisionDocument()
	primary := &stubRenderer{name: ChromeRendererName, err: newRenderError(ChromeRendererName, StageLaunch, ErrEngineLaunch)}
	fallback := uncompressedFallback(t)

	result, err := NewChain(zaptest.NewLogger(t), []Renderer{primary, fallback}).Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, FallbackRendererName, result.Renderer)
	assert.Same(t, doc, primary.seen, "both renderers receive the same document")

	byProcess := agg.IncidentsByProcess()
	want := make(map[string]string, len(agg.Processes))
	for _, p := range agg.Processes {
		want[p.Name] = strconv.Itoa(len(byProcess[p.ID]))
	}

	got := sectionIncidentCounts(t, pdfTextRuns(result.PDF), doc.Labels, doc.ProcessNames())
	assert.Equal(t, want, got)
	assert.Len(t, got, len(agg.Processes))
}

func TestFallbackRenderer_BreaksPages(t *testing.T) {
	agg := supervisionAggregate()
	for i := 0; i < 80; i++ {
		agg.Incidents = append(agg.Incidents, &entity.Incident{
			ID:          fmt.Sprintf("bulk-%d", i),
			ProcessID:   "P2",
			Description: fmt.Sprintf("Bulk finding number %d", i),
			Status:      entity.IncidentStatusPending,
			CreatedAt:   fixedNow.Add(-time.Duration(i) * time.Minute),
		})
	}
	doc := NewComposer(LabelsFor("en"), WithClock(func() time.Time { return fixedNow })).Compose(agg, "Long report")

	pdf, err := NewFallbackRenderer(DefaultFallbackConfig(), zaptest.NewLogger(t)).Render(context.Background(), doc)
	require.NoError(t, err)

	pages, err := FitzPageCounter{}.PageCount(pdf)
	require.NoError(t, err)
	assert.Greater(t, pages, 5)
}

func TestFallbackRenderer_SpanishText(t *testing.T) {
	doc := NewComposer(LabelsFor("es"), WithClock(func() time.Time { return fixedNow })).
		Compose(supervisionAggregate(), "Revisión mensual")

	pdf, err := uncompressedFallback(t).Render(context.Background(), doc)
	require.NoError(t, err)

	// Latin-1 encoded after translation.
	assert.Contains(t, string(pdf), "Revisi\xf3n mensual")
	assert.Contains(t, string(pdf), "Sin asignar")
}

func TestFallbackRenderer_RejectsIncompleteDocument(t *testing.T) {
	_, err := uncompressedFallback(t).Render(context.Background(), &Document{})

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, StageDraw, renderErr.Stage)
}
