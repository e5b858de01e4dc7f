package report

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garyjia/process-reports/internal/domain/entity"
)

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

// supervisionFixture returns two processes: P1 with one pending and one
// resolved incident, P2 with no incidents and no optional fields set.
func supervisionFixture() ([]*entity.Process, []*entity.Incident) {
	reviewer := &entity.UserSummary{ID: "u-rev", Name: "Ana Torres", Email: "ana@example.com"}
	creator := &entity.UserSummary{ID: "u-sup", Name: "Luis Perez", Email: "luis@example.com"}

	processes := []*entity.Process{
		{
			ID:               "P1",
			Name:             "Alpha Review",
			Description:      "Quarterly supplier review",
			Status:           entity.ProcessStatusInReview,
			AssignedReviewer: reviewer,
			DueDate:          timePtr(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)),
			CreatedBy:        creator,
			CreatedAt:        fixedNow.Add(-72 * time.Hour),
		},
		{
			ID:        "P2",
			Name:      "Beta Audit",
			Status:    entity.ProcessStatusPending,
			CreatedBy: creator,
			CreatedAt: fixedNow.Add(-48 * time.Hour),
		},
	}

	incidents := []*entity.Incident{
		{
			ID:          "I2",
			ProcessID:   "P1",
			ProcessName: "Alpha Review",
			Description: "Invoice total does not match order",
			Status:      entity.IncidentStatusResolved,
			Evidence:    []string{"https://files.example.com/e1.png", "https://files.example.com/e2.pdf"},
			CreatedBy:   creator,
			AssignedTo:  reviewer,
			ApprovedAt:  timePtr(fixedNow.Add(-12 * time.Hour)),
			ResolvedAt:  timePtr(fixedNow.Add(-6 * time.Hour)),
			CreatedAt:   fixedNow.Add(-24 * time.Hour),
		},
		{
			ID:          "I1",
			ProcessID:   "P1",
			ProcessName: "Alpha Review",
			Description: "Missing signature on contract",
			Status:      entity.IncidentStatusPending,
			CreatedBy:   creator,
			CreatedAt:   fixedNow.Add(-36 * time.Hour),
		},
	}
	return processes, incidents
}

func supervisionAggregate() *Aggregate {
	processes, incidents := supervisionFixture()
	return &Aggregate{Processes: processes, Incidents: incidents}
}

func supervisionDocument() *Document {
	c := NewComposer(LabelsFor("en"), WithClock(func() time.Time { return fixedNow }))
	return c.Compose(supervisionAggregate(), "Monthly Supervision Report")
}

type mockProcessReader struct {
	findByIDsFunc func(ctx context.Context, ids []string) ([]*entity.Process, error)
	calls         atomic.Int32
}

func (m *mockProcessReader) FindByIDs(ctx context.Context, ids []string) ([]*entity.Process, error) {
	m.calls.Add(1)
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return nil, nil
}

type mockIncidentReader struct {
	findByProcessIDsFunc func(ctx context.Context, ids []string) ([]*entity.Incident, error)
}

func (m *mockIncidentReader) FindByProcessIDs(ctx context.Context, ids []string) ([]*entity.Incident, error) {
	if m.findByProcessIDsFunc != nil {
		return m.findByProcessIDsFunc(ctx, ids)
	}
	return nil, nil
}

type stubRenderer struct {
	name  string
	pdf   []byte
	err   error
	calls atomic.Int32
	seen  *Document
}

func (s *stubRenderer) Name() string { return s.name }

func (s *stubRenderer) Render(_ context.Context, doc *Document) ([]byte, error) {
	s.calls.Add(1)
	s.seen = doc
	if s.err != nil {
		return nil, s.err
	}
	return s.pdf, nil
}

type stubPageCounter struct {
	pages int
	err   error
}

func (s stubPageCounter) PageCount([]byte) (int, error) { return s.pages, s.err }

type recordingMetrics struct {
	mu        sync.Mutex
	attempts  map[string][]error
	fallbacks int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{attempts: make(map[string][]error)}
}

func (m *recordingMetrics) RenderAttempt(renderer string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[renderer] = append(m.attempts[renderer], err)
}

func (m *recordingMetrics) FallbackActivated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

// fakeEngine simulates a browser. A nil loadErr with blockLoad set waits for
// the load deadline, like a page that never finishes loading.
type fakeEngine struct {
	blockLoad  bool
	blockPrint bool
	loadErr    error
	printErr   error
	pdf        []byte
	html       string
	closed     atomic.Int32
}

func (e *fakeEngine) Load(ctx context.Context, html string) error {
	e.html = html
	if e.blockLoad {
		<-ctx.Done()
		return ctx.Err()
	}
	return e.loadErr
}

func (e *fakeEngine) Print(ctx context.Context, _ PrintOptions) ([]byte, error) {
	if e.blockPrint {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.printErr != nil {
		return nil, e.printErr
	}
	return e.pdf, nil
}

func (e *fakeEngine) Close() error {
	e.closed.Add(1)
	return nil
}

type fakeLauncher struct {
	engine   *fakeEngine
	err      error
	block    bool
	launches atomic.Int32
}

func (l *fakeLauncher) Launch(ctx context.Context) (Engine, error) {
	l.launches.Add(1)
	if l.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.engine, nil
}

var errBrowserMissing = errors.New("exec: chrome not found")
