package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"docworker/internal/domain"
	"docworker/internal/port"
	"docworker/internal/telemetry"
)

const defaultDocumentTimeout = 5 * time.Minute

// WorkerConfig holds settings for the processing worker.
type WorkerConfig struct {
	PollInterval    time.Duration
	DocumentTimeout time.Duration
	// StaleAfter requeues documents stuck in processing for longer than this
	// at the start of each cycle. Zero disables it.
	StaleAfter time.Duration
	Logger     zerolog.Logger
}

// WorkerStatus is a snapshot of the worker's progress.
type WorkerStatus struct {
	StartedAt      time.Time `json:"started_at"`
	LastCycleAt    time.Time `json:"last_cycle_at"`
	LastCycleError string    `json:"last_cycle_error,omitempty"`

	// CycleStartedAt is zero unless a cycle is running.
	CycleStartedAt time.Time `json:"cycle_started_at"`
	// LastProgressAt is updated when a cycle starts and after each document.
	LastProgressAt time.Time `json:"last_progress_at"`

	CyclesRun          int64 `json:"cycles_run"`
	DocumentsCompleted int64 `json:"documents_completed"`
	DocumentsFailed    int64 `json:"documents_failed"`
}

// WorkerOption configures optional worker collaborators.
type WorkerOption func(*ProcessingWorker)

// WithLease makes every cycle acquire l first and skip when another instance
// holds it. The lease is refreshed before each document, and the cycle stops
// early if it has been lost.
func WithLease(l port.Lease) WorkerOption {
	return func(w *ProcessingWorker) { w.lease = l }
}

// WithMetrics records cycle and document metrics on m.
func WithMetrics(m *telemetry.Metrics) WorkerOption {
	return func(w *ProcessingWorker) { w.metrics = m }
}

// ProcessingWorker polls for pending documents and processes them one at a time.
type ProcessingWorker struct {
	repo      port.DocumentRepository
	processor DocumentProcessor
	cfg       WorkerConfig
	lease     port.Lease
	metrics   *telemetry.Metrics
	now       func() time.Time

	mu     sync.RWMutex
	status WorkerStatus
}

// NewProcessingWorker creates a new ProcessingWorker. PollInterval must be positive.
func NewProcessingWorker(repo port.DocumentRepository, processor DocumentProcessor, cfg WorkerConfig, opts ...WorkerOption) (*ProcessingWorker, error) {
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.DocumentTimeout <= 0 {
		cfg.DocumentTimeout = defaultDocumentTimeout
	}

	w := &ProcessingWorker{
		repo:      repo,
		processor: processor,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.status.StartedAt = w.now()
	return w, nil
}

// Run polls until ctx is canceled. The first cycle starts immediately and
// each following cycle starts one PollInterval after the previous one ended.
func (w *ProcessingWorker) Run(ctx context.Context) {
	log := w.cfg.Logger
	log.Info().
		Dur("poll_interval", w.cfg.PollInterval).
		Dur("document_timeout", w.cfg.DocumentTimeout).
		Dur("stale_after", w.cfg.StaleAfter).
		Msg("processing worker started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.releaseLease()
			log.Info().Msg("processing worker stopped")
			return
		case <-timer.C:
			if err := w.RunCycle(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("poll cycle failed")
			}
			timer.Reset(w.cfg.PollInterval)
		}
	}
}

// RunCycle runs one poll cycle: it opens a session, optionally requeues
// stale documents, and processes every pending document in order. Failures
// of individual documents are contained; only cycle-level failures return.
func (w *ProcessingWorker) RunCycle(ctx context.Context) (err error) {
	start := w.now()
	var completed, failed int64
	skipped := false

	w.mu.Lock()
	w.status.CycleStartedAt = start
	w.status.LastProgressAt = start
	w.mu.Unlock()

	defer func() {
		w.finishCycle(ctx, start, completed, failed, skipped, err)
	}()

	if w.lease != nil {
		held, err := w.lease.Acquire(ctx)
		if err != nil {
			return errors.WithStack(fmt.Errorf("acquiring lease: %w", err))
		}
		if !held {
			skipped = true
			w.cfg.Logger.Debug().Msg("lease held by another worker, skipping cycle")
			return nil
		}
	}

	w.cfg.Logger.Debug().Msg("poll cycle started")

	session, err := w.repo.OpenSession(ctx)
	if err != nil {
		return errors.WithStack(fmt.Errorf("opening session: %w", err))
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			w.cfg.Logger.Warn().Err(cerr).Msg("failed to close session")
		}
	}()

	if w.cfg.StaleAfter > 0 {
		n, err := session.RequeueStale(ctx, w.now().Add(-w.cfg.StaleAfter))
		if err != nil {
			return errors.WithStack(fmt.Errorf("requeueing stale documents: %w", err))
		}
		if n > 0 {
			w.cfg.Logger.Warn().Int64("count", n).Msg("requeued stale processing documents")
			if w.metrics != nil {
				w.metrics.RecordRequeued(ctx, n)
			}
		}
	}

	docs, err := session.ListPending(ctx)
	if err != nil {
		return errors.WithStack(fmt.Errorf("listing pending documents: %w", err))
	}
	if len(docs) == 0 {
		return nil
	}

	w.cfg.Logger.Info().Int("pending", len(docs)).Msg("processing pending documents")

	for i := range docs {
		if ctx.Err() != nil {
			w.cfg.Logger.Info().Int("remaining", len(docs)-i).Msg("shutdown requested, leaving remaining documents pending")
			break
		}

		if w.lease != nil {
			held, err := w.lease.Acquire(ctx)
			if err != nil {
				return errors.WithStack(fmt.Errorf("refreshing lease: %w", err))
			}
			if !held {
				w.cfg.Logger.Warn().Int("remaining", len(docs)-i).Msg("lease lost, leaving remaining documents pending")
				break
			}
		}

		if w.processOne(ctx, session, &docs[i]) {
			completed++
		} else {
			failed++
		}

		w.mu.Lock()
		w.status.LastProgressAt = w.now()
		w.mu.Unlock()
	}

	return nil
}

// processOne runs one attempt detached from ctx's cancellation and bounded
// by DocumentTimeout. It reports whether the document completed.
func (w *ProcessingWorker) processOne(ctx context.Context, session port.DocumentSession, doc *domain.Document) bool {
	docCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.DocumentTimeout)
	defer cancel()

	start := w.now()
	err := w.processor.Process(docCtx, session, doc)

	if w.metrics != nil {
		outcome := telemetry.OutcomeCompleted
		if err != nil {
			outcome = telemetry.OutcomeError
		}
		w.metrics.RecordDocument(ctx, outcome, w.now().Sub(start))
	}
	return err == nil
}

func (w *ProcessingWorker) finishCycle(ctx context.Context, start time.Time, completed, failed int64, skipped bool, err error) {
	now := w.now()

	w.mu.Lock()
	w.status.LastCycleAt = now
	w.status.LastProgressAt = now
	w.status.CycleStartedAt = time.Time{}
	w.status.CyclesRun++
	w.status.DocumentsCompleted += completed
	w.status.DocumentsFailed += failed
	w.status.LastCycleError = ""
	if err != nil {
		w.status.LastCycleError = err.Error()
	}
	w.mu.Unlock()

	if w.metrics != nil {
		outcome := telemetry.OutcomeCompleted
		switch {
		case err != nil:
			outcome = telemetry.OutcomeError
		case skipped:
			outcome = telemetry.OutcomeSkipped
		}
		w.metrics.RecordCycle(ctx, outcome, now.Sub(start))
	}
}

func (w *ProcessingWorker) releaseLease() {
	if w.lease == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.lease.Release(ctx); err != nil {
		w.cfg.Logger.Warn().Err(err).Msg("failed to release lease")
	}
}

// Status returns a snapshot of the worker's progress.
func (w *ProcessingWorker) Status() WorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// PollInterval returns the configured interval between cycles.
func (w *ProcessingWorker) PollInterval() time.Duration {
	return w.cfg.PollInterval
}

// DocumentTimeout returns the deadline applied to each document.
func (w *ProcessingWorker) DocumentTimeout() time.Duration {
	return w.cfg.DocumentTimeout
}
