// Package sweeper deletes generated PDFs once they outlive the retention
// window. One ticker goroutine runs for the life of the process; each
// cycle works from a snapshot of the store and holds no lock across
// entries, so in-flight generate and serve calls are never blocked.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pdfgen/backend/internal/infrastructure/storage"
)

var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfgen_sweep_runs_total",
		Help: "Number of completed retention sweep cycles",
	})
	sweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfgen_sweep_deleted_total",
		Help: "Number of expired PDF files deleted by the sweeper",
	})
	sweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfgen_sweep_errors_total",
		Help: "Number of per-file deletion errors during sweeps",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdfgen_sweep_duration_seconds",
		Help:    "Duration of retention sweep cycles in seconds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// Result summarizes one sweep cycle
type Result struct {
	Scanned  int
	Deleted  int
	Errors   int
	Duration time.Duration
}

// Sweeper periodically deletes expired files from the store
type Sweeper struct {
	store     *storage.FileStore
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger

	mu     sync.Mutex // guards against overlapping RunOnce calls
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Sweeper over the given store
func New(store *storage.FileStore, retention, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger.Named("sweeper"),
	}
}

// Start launches the background sweep loop. Call once at startup.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("retention sweeper started",
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval),
	)
}

// Stop cancels the sweep loop and waits for an in-progress cycle to
// finish. Files not yet reached stay on disk for the next startup.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("retention sweeper stopped")
}

// run executes sweep cycles until the context is cancelled
func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	// First cycle right away: clears anything expired across a restart
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs a single sweep cycle over a snapshot of the store.
// Per-entry failures are logged and skipped; they never abort the cycle.
// An empty store is a no-op cycle.
func (s *Sweeper) RunOnce() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	now := start.UTC()
	result := Result{}

	for _, file := range s.store.List() {
		result.Scanned++
		if !file.Expired(now, s.retention) {
			continue
		}
		if err := s.store.Delete(file.ID); err != nil {
			result.Errors++
			s.logger.Error("failed to delete expired PDF",
				zap.String("id", file.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Deleted++
	}

	result.Duration = time.Since(start)

	sweepRunsTotal.Inc()
	sweepDeletedTotal.Add(float64(result.Deleted))
	sweepErrorsTotal.Add(float64(result.Errors))
	sweepDuration.Observe(result.Duration.Seconds())

	if result.Deleted > 0 || result.Errors > 0 {
		s.logger.Info("sweep cycle finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("deleted", result.Deleted),
			zap.Int("errors", result.Errors),
			zap.Duration("duration", result.Duration),
		)
	}
	return result
}
