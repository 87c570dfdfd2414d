package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

// ConnectivityState tracks whether the external capability services are
// reachable. Hooks registered with OnRestored run synchronously on every
// offline to online transition.
type ConnectivityState struct {
	mu     sync.Mutex
	online bool
	hooks  []func()
}

func NewConnectivityState(online bool) *ConnectivityState {
	return &ConnectivityState{online: online}
}

func (c *ConnectivityState) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *ConnectivityState) OnRestored(fn func()) {
	c.mu.Lock()
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

func (c *ConnectivityState) Set(online bool) {
	c.mu.Lock()
	restored := online && !c.online
	c.online = online
	hooks := c.hooks
	c.mu.Unlock()

	if restored {
		for _, fn := range hooks {
			fn()
		}
	}
}

const defaultDrainBatch = 32

// Intake routes submissions either straight into the pipeline or, while
// offline, into the durable queue for later replay.
type Intake struct {
	orc        *Orchestrator
	queue      domain.OfflineQueueStore
	conn       *ConnectivityState
	drainBatch int
	log        zerolog.Logger
}

func NewIntake(orc *Orchestrator, queue domain.OfflineQueueStore, conn *ConnectivityState, log zerolog.Logger) *Intake {
	return &Intake{
		orc:        orc,
		queue:      queue,
		conn:       conn,
		drainBatch: defaultDrainBatch,
		log:        log.With().Str("component", "intake").Logger(),
	}
}

// Submit runs the pipeline when online and enqueues otherwise. The bool
// reports whether the submission was queued instead of processed.
func (i *Intake) Submit(ctx context.Context, sub domain.Submission) (domain.PipelineOutcome, bool, error) {
	if !i.conn.Online() {
		if err := i.Enqueue(ctx, sub); err != nil {
			return domain.PipelineOutcome{SubmissionID: sub.ID}, false, err
		}
		return domain.PipelineOutcome{SubmissionID: sub.ID}, true, nil
	}
	outcome, err := i.orc.Process(ctx, sub)
	return outcome, false, err
}

// Enqueue persists a submission for later replay. Persistence failures
// surface as ErrQueuePersistence: a submission accepted for offline
// handling must never be silently dropped.
func (i *Intake) Enqueue(ctx context.Context, sub domain.Submission) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	entry := domain.OfflineQueueEntry{Submission: sub, EnqueuedAt: time.Now().UTC()}
	if err := i.queue.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueuePersistence, err)
	}
	i.log.Info().Str("submission_id", sub.ID).Msg("submission queued offline")
	return nil
}

// Drain replays queued submissions in FIFO order. An entry leaves the
// queue only on a terminal outcome; the first non-terminal outcome stops
// the drain so ordering is preserved for the next attempt.
func (i *Intake) Drain(ctx context.Context) ([]domain.PipelineOutcome, error) {
	var outcomes []domain.PipelineOutcome
	for {
		if !i.conn.Online() {
			return outcomes, nil
		}
		batch, err := i.queue.NextBatch(ctx, i.drainBatch)
		if err != nil {
			return outcomes, fmt.Errorf("%w: %v", domain.ErrQueuePersistence, err)
		}
		if len(batch) == 0 {
			return outcomes, nil
		}
		for _, entry := range batch {
			if !i.conn.Online() || ctx.Err() != nil {
				return outcomes, ctx.Err()
			}
			id := entry.Submission.ID
			if err := i.queue.MarkAttempt(ctx, id); err != nil {
				i.log.Warn().Err(err).Str("submission_id", id).Msg("attempt bookkeeping failed")
			}
			outcome, err := i.orc.Process(ctx, entry.Submission)
			if errors.Is(err, domain.ErrPipelineBusy) {
				// Already running elsewhere; retry on the next drain.
				return outcomes, nil
			}
			if err != nil {
				// Invalid entries can never succeed; drop them.
				i.log.Error().Err(err).Str("submission_id", id).Msg("dropping unprocessable queue entry")
				if rmErr := i.queue.Remove(ctx, id); rmErr != nil {
					return outcomes, fmt.Errorf("%w: %v", domain.ErrQueuePersistence, rmErr)
				}
				continue
			}
			if !outcome.Terminal() {
				return append(outcomes, outcome), nil
			}
			if err := i.queue.Remove(ctx, id); err != nil {
				return outcomes, fmt.Errorf("%w: %v", domain.ErrQueuePersistence, err)
			}
			outcomes = append(outcomes, outcome)
		}
	}
}

func (i *Intake) Pending(ctx context.Context) (int, error) {
	return i.queue.Pending(ctx)
}
