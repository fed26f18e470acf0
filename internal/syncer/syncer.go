package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// Fetcher yields the local path of a cycle's data file.
type Fetcher interface {
	Fetch(ctx context.Context, cycle domain.Cycle, progress faa.ProgressFunc) (string, bool, error)
}

// Publisher emits a parsed container to the sink.
type Publisher interface {
	PublishContainer(ctx context.Context, container *domain.ObstacleContainer) error
}

// Indexer persists a parsed container for queries.
type Indexer interface {
	ReplaceContainer(ctx context.Context, container *domain.ObstacleContainer) error
}

// Status is the snapshot of the sync loop served at /status. Times are
// RFC 3339 strings, empty before the first event.
type Status struct {
	Cycle      string `json:"cycle,omitempty"`
	Obstacles  int    `json:"obstacles"`
	LastSync   string `json:"last_sync,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	InProgress bool   `json:"in_progress"`
}

// Syncer keeps the sink topic and the local index on the current
// publication cycle: fetch the archive, parse it, index it, publish it,
// then wait for the next pass.
type Syncer struct {
	fetcher   Fetcher
	parser    *pipeline.Parser
	publisher Publisher
	indexer   Indexer // may be nil when no local index is wanted
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	clock     clockwork.Clock

	ready atomic.Bool

	mu        sync.Mutex
	status    Status
	lastCycle string // last successfully synced requested cycle id
}

// New creates a Syncer with the given stages and observability.
func New(fetcher Fetcher, parser *pipeline.Parser, publisher Publisher, indexer Indexer, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Syncer {
	return &Syncer{
		fetcher:   fetcher,
		parser:    parser,
		publisher: publisher,
		indexer:   indexer,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
		clock:     clockwork.NewRealClock(),
	}
}

// SetClock replaces the loop's time source, for tests.
func (s *Syncer) SetClock(c clockwork.Clock) {
	s.clock = c
}

// CheckReadiness returns nil once at least one sync pass has completed, or
// an error describing why the service is not yet ready.
func (s *Syncer) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no publication cycle synced yet")
	}
	return nil
}

// Status returns a copy of the current sync snapshot.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Run executes the sync loop until the context is cancelled. The first pass
// starts immediately; afterwards passes run every interval.
func (s *Syncer) Run(ctx context.Context) error {
	s.logger.Info("syncer started", "interval", s.interval)

	// Failed passes retry with exponential backoff instead of waiting a
	// whole interval; success resets it. FAA outages tend to last minutes,
	// not hours.
	backoff := 30 * time.Second
	maxBackoff := 10 * time.Minute

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("syncer stopping", "reason", ctx.Err())
			return nil
		default:
		}

		err := s.SyncNow(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			s.logger.Error("sync failed", "error", err, "retry_in", backoff)
			if !s.sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
		default:
			backoff = 30 * time.Second
			if !s.sleepWithContext(ctx, s.interval) {
				return nil
			}
		}
	}
}

// SyncNow runs a single sync pass for the current publication cycle. A pass
// whose cycle was already synced by this process is a no-op.
func (s *Syncer) SyncNow(ctx context.Context) error {
	cycle := domain.CurrentCycle()

	s.mu.Lock()
	done := s.lastCycle == cycle.ID()
	s.mu.Unlock()
	if done {
		s.logger.Debug("cycle already synced", "cycle", cycle.ID())
		return nil
	}

	s.metrics.SyncInProgress.Set(1)
	defer s.metrics.SyncInProgress.Set(0)
	s.setInProgress(true)
	defer s.setInProgress(false)

	fetchStart := time.Now()
	path, cached, err := s.fetcher.Fetch(ctx, cycle, nil)
	if err != nil {
		s.metrics.Fetches.WithLabelValues("error").Inc()
		s.recordError(err)
		return fmt.Errorf("fetch cycle %s: %w", cycle.ID(), err)
	}
	outcome := "success"
	if cached {
		outcome = "cached"
	}
	s.metrics.Fetches.WithLabelValues(outcome).Inc()
	s.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())

	container, err := s.parser.ParseFile(ctx, path, 0)
	if err != nil {
		s.recordError(err)
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if s.indexer != nil {
		if err := s.indexer.ReplaceContainer(ctx, container); err != nil {
			s.recordError(err)
			return fmt.Errorf("index cycle %s: %w", container.Cycle().ID(), err)
		}
	}

	publishStart := time.Now()
	if err := s.publisher.PublishContainer(ctx, container); err != nil {
		s.metrics.Publishes.WithLabelValues("error").Inc()
		s.recordError(err)
		return fmt.Errorf("publish cycle %s: %w", container.Cycle().ID(), err)
	}
	s.metrics.Publishes.WithLabelValues("success").Inc()
	s.metrics.ObstaclesPublished.Add(float64(container.Len()))
	s.metrics.PublishDuration.Observe(time.Since(publishStart).Seconds())

	s.metrics.LastSyncCycle.Set(cycleGaugeValue(container.Cycle()))
	s.ready.Store(true)
	s.recordSuccess(cycle, container)

	s.logger.Info("sync complete",
		"cycle", container.Cycle().ID(),
		"obstacles", container.Len(),
		"cached", cached,
	)
	return nil
}

func (s *Syncer) setInProgress(v bool) {
	s.mu.Lock()
	s.status.InProgress = v
	s.mu.Unlock()
}

func (s *Syncer) recordError(err error) {
	s.mu.Lock()
	s.status.LastError = err.Error()
	s.mu.Unlock()
}

// recordSuccess notes the requested cycle as synced; the status carries the
// container's own cycle, which may trail the computed one when the FAA file
// is dated off-boundary.
func (s *Syncer) recordSuccess(requested domain.Cycle, container *domain.ObstacleContainer) {
	s.mu.Lock()
	s.lastCycle = requested.ID()
	s.status.Cycle = container.Cycle().ID()
	s.status.Obstacles = container.Len()
	s.status.LastSync = domain.Now().UTC().Format(time.RFC3339)
	s.status.LastError = ""
	s.mu.Unlock()
}

// cycleGaugeValue encodes a cycle id as the number YYYYMMDD for the
// last_sync_cycle gauge.
func cycleGaugeValue(cycle domain.Cycle) float64 {
	return float64(cycle.Year*10000 + int(cycle.Month)*100 + cycle.Day)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// sleepWithContext waits d on the syncer's clock, returning false when the
// context ends first.
func (s *Syncer) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
