package syncer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
	"github.com/couchcryptid/obstacle-data-etl/internal/syncer"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFetcher struct {
	path   string
	cached bool
	errs   []error // consumed per call before returning path
	calls  atomic.Int64
}

func (m *mockFetcher) Fetch(_ context.Context, _ domain.Cycle, _ faa.ProgressFunc) (string, bool, error) {
	n := int(m.calls.Add(1))
	if n <= len(m.errs) && m.errs[n-1] != nil {
		return "", false, m.errs[n-1]
	}
	return m.path, m.cached, nil
}

type mockPublisher struct {
	err    error
	notify chan *domain.ObstacleContainer

	mu       sync.Mutex
	received []*domain.ObstacleContainer
}

func (m *mockPublisher) PublishContainer(_ context.Context, c *domain.ObstacleContainer) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.received = append(m.received, c)
	m.mu.Unlock()
	if m.notify != nil {
		m.notify <- c
	}
	return nil
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

type mockIndexer struct {
	err error

	mu     sync.Mutex
	cycles []string
}

func (m *mockIndexer) ReplaceContainer(_ context.Context, c *domain.ObstacleContainer) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.cycles = append(m.cycles, c.Cycle().ID())
	m.mu.Unlock()
	return nil
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSyncer(t *testing.T, f syncer.Fetcher, p syncer.Publisher, i syncer.Indexer) *syncer.Syncer {
	t.Helper()
	parser := pipeline.New(discardLogger(), observability.NewMetricsForTesting())
	return syncer.New(f, parser, p, i, discardLogger(), observability.NewMetricsForTesting(), 6*time.Hour)
}

// pinClock freezes domain time at the given instant so the requested cycle
// is deterministic.
func pinClock(t *testing.T, at time.Time) *clockwork.FakeClock {
	t.Helper()
	clk := clockwork.NewFakeClockAt(at)
	domain.SetClock(clk)
	t.Cleanup(func() { domain.SetClock(nil) })
	return clk
}

var dec25 = time.Date(2025, time.December, 25, 12, 0, 0, 0, time.UTC)

func fixturePath() string {
	return filepath.Join("testdata", "dof_sample.dat")
}

// --- tests ---

func TestSyncer_SyncNow_Success(t *testing.T) {
	pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath()}
	pub := &mockPublisher{}
	idx := &mockIndexer{}
	s := newTestSyncer(t, fetcher, pub, idx)

	require.Error(t, s.CheckReadiness(context.Background()))

	require.NoError(t, s.SyncNow(context.Background()))

	require.Equal(t, 1, pub.count())
	container := pub.received[0]
	assert.Equal(t, "20251221", container.Cycle().ID(), "container carries the file's own cycle")
	assert.Equal(t, 10, container.Len())
	assert.Equal(t, []string{"20251221"}, idx.cycles)

	assert.NoError(t, s.CheckReadiness(context.Background()))

	st := s.Status()
	assert.Equal(t, "20251221", st.Cycle)
	assert.Equal(t, 10, st.Obstacles)
	assert.Equal(t, "2025-12-25T12:00:00Z", st.LastSync)
	assert.Empty(t, st.LastError)
	assert.False(t, st.InProgress)
}

func TestSyncer_SyncNow_SkipsSyncedCycle(t *testing.T) {
	pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath()}
	pub := &mockPublisher{}
	s := newTestSyncer(t, fetcher, pub, nil)

	require.NoError(t, s.SyncNow(context.Background()))
	require.NoError(t, s.SyncNow(context.Background()))

	assert.Equal(t, int64(1), fetcher.calls.Load(), "second pass for the same cycle is a no-op")
	assert.Equal(t, 1, pub.count())
}

func TestSyncer_SyncNow_FetchError(t *testing.T) {
	pinClock(t, dec25)
	boom := errors.New("server unreachable")
	fetcher := &mockFetcher{errs: []error{boom}}
	s := newTestSyncer(t, fetcher, &mockPublisher{}, nil)

	err := s.SyncNow(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch cycle 20251222")

	assert.Error(t, s.CheckReadiness(context.Background()))
	assert.Contains(t, s.Status().LastError, "server unreachable")
}

func TestSyncer_SyncNow_ParseError(t *testing.T) {
	pinClock(t, dec25)
	garbage := filepath.Join(t.TempDir(), "garbage.dat")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a DOF\n"), 0o644))
	fetcher := &mockFetcher{path: garbage}
	s := newTestSyncer(t, fetcher, &mockPublisher{}, nil)

	err := s.SyncNow(context.Background())
	require.Error(t, err)

	var formatErr *domain.FormatError
	assert.ErrorAs(t, err, &formatErr)
	assert.Error(t, s.CheckReadiness(context.Background()))
}

func TestSyncer_SyncNow_PublishError(t *testing.T) {
	pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath()}
	pub := &mockPublisher{err: errors.New("broker down")}
	s := newTestSyncer(t, fetcher, pub, nil)

	err := s.SyncNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish cycle 20251221")
	assert.Error(t, s.CheckReadiness(context.Background()))

	// The cycle is not marked synced, so the next pass tries again.
	require.Error(t, s.SyncNow(context.Background()))
	assert.Equal(t, int64(2), fetcher.calls.Load())
}

func TestSyncer_SyncNow_IndexerError(t *testing.T) {
	pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath()}
	idx := &mockIndexer{err: errors.New("disk full")}
	pub := &mockPublisher{}
	s := newTestSyncer(t, fetcher, pub, idx)

	err := s.SyncNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index cycle 20251221")
	assert.Zero(t, pub.count(), "publish is skipped when indexing fails")
}

func TestSyncer_Run_SyncsThenSkipsOnTick(t *testing.T) {
	clk := pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath()}
	pub := &mockPublisher{notify: make(chan *domain.ObstacleContainer, 1)}
	s := newTestSyncer(t, fetcher, pub, nil)
	s.SetClock(clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// First pass runs immediately.
	<-pub.notify
	clk.BlockUntil(1) // loop parked on the interval timer

	// Six hours later the cycle is unchanged, so the tick is a no-op.
	clk.Advance(6 * time.Hour)
	clk.BlockUntil(1)
	assert.Equal(t, int64(1), fetcher.calls.Load())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, pub.count())
}

func TestSyncer_Run_RetriesAfterFailure(t *testing.T) {
	clk := pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath(), errs: []error{errors.New("flaky")}}
	pub := &mockPublisher{notify: make(chan *domain.ObstacleContainer, 1)}
	s := newTestSyncer(t, fetcher, pub, nil)
	s.SetClock(clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// First pass fails, loop parks on the backoff timer.
	clk.BlockUntil(1)
	clk.Advance(30 * time.Second)

	// Retry succeeds.
	<-pub.notify
	assert.Equal(t, int64(2), fetcher.calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestSyncer_Run_StopsOnCancel(t *testing.T) {
	pinClock(t, dec25)
	fetcher := &mockFetcher{path: fixturePath()}
	s := newTestSyncer(t, fetcher, &mockPublisher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
	assert.Zero(t, fetcher.calls.Load())
}
