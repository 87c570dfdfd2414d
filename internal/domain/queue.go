package domain

import (
	"context"
	"time"
)

// OfflineQueueEntry holds a submission accepted while connectivity was
// absent. Entries are keyed by submission id and drained in enqueue order.
type OfflineQueueEntry struct {
	Submission Submission `json:"submission"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	Attempts   int        `json:"attempts"`
}

type OfflineQueueStore interface {
	// Enqueue persists the entry; re-enqueueing an already queued
	// submission id is a no-op.
	Enqueue(ctx context.Context, entry OfflineQueueEntry) error
	// NextBatch returns up to limit entries in FIFO enqueue order.
	NextBatch(ctx context.Context, limit int) ([]OfflineQueueEntry, error)
	MarkAttempt(ctx context.Context, submissionID string) error
	Remove(ctx context.Context, submissionID string) error
	Pending(ctx context.Context) (int, error)
}
