package queue

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"veritas/internal/domain"
)

func queuedSubmission(id string) domain.OfflineQueueEntry {
	return domain.OfflineQueueEntry{
		Submission: domain.Submission{
			ID:          id,
			Payload:     []byte("payload-" + id),
			MediaKind:   domain.MediaImage,
			Submitter:   "tester",
			SubmittedAt: time.Now().UTC(),
		},
	}
}

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.db")
	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSQLiteFIFOOrder(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Enqueue(ctx, queuedSubmission(id)); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}
	batch, err := store.NextBatch(ctx, 10)
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(batch))
	}
	for i, id := range []string{"a", "b", "c"} {
		if batch[i].Submission.ID != id {
			t.Fatalf("entry %d out of order: got %s want %s", i, batch[i].Submission.ID, id)
		}
	}
}

func TestSQLiteDuplicateEnqueueIsNoOp(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	entry := queuedSubmission("dup")
	if err := store.Enqueue(ctx, entry); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.Enqueue(ctx, entry); err != nil {
		t.Fatalf("duplicate enqueue: %v", err)
	}
	pending, err := store.Pending(ctx)
	if err != nil || pending != 1 {
		t.Fatalf("expected 1 pending, got %d (%v)", pending, err)
	}
}

func TestSQLiteMarkAttemptAndRemove(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if err := store.Enqueue(ctx, queuedSubmission("x")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.MarkAttempt(ctx, "x"); err != nil {
		t.Fatalf("mark attempt: %v", err)
	}
	if err := store.MarkAttempt(ctx, "x"); err != nil {
		t.Fatalf("mark attempt: %v", err)
	}
	batch, err := store.NextBatch(ctx, 1)
	if err != nil || len(batch) != 1 {
		t.Fatalf("next batch: %v", err)
	}
	if batch[0].Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", batch[0].Attempts)
	}

	if err := store.Remove(ctx, "x"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	pending, _ := store.Pending(ctx)
	if pending != 0 {
		t.Fatalf("expected empty queue, %d pending", pending)
	}
	// Removing an absent id is not an error.
	if err := store.Remove(ctx, "x"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "queue.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	entry := queuedSubmission("persisted")
	entry.Submission.Metadata = &domain.EnrichmentMetadata{Location: "somewhere"}
	if err := store.Enqueue(ctx, entry); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	batch, err := reopened.NextBatch(ctx, 1)
	if err != nil || len(batch) != 1 {
		t.Fatalf("next batch after reopen: %v", err)
	}
	got := batch[0].Submission
	if got.ID != "persisted" || string(got.Payload) != "payload-persisted" {
		t.Fatalf("submission did not survive restart: %+v", got)
	}
	if got.Metadata == nil || got.Metadata.Location != "somewhere" {
		t.Fatal("metadata did not survive restart")
	}
}

func TestSQLiteRejectsInvalidSubmission(t *testing.T) {
	store, _ := openTestStore(t)
	err := store.Enqueue(context.Background(), domain.OfflineQueueEntry{
		Submission: domain.Submission{ID: "no-payload", MediaKind: domain.MediaImage, Submitter: "t"},
	})
	if err == nil {
		t.Fatal("invalid submissions must not be persisted")
	}
}
