// Package queue provides the durable offline submission queue.
package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veritas/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS offline_queue (
	submission_id TEXT PRIMARY KEY,
	submission    BLOB NOT NULL,
	enqueued_at   TEXT NOT NULL,
	attempts      INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore persists queue entries in a local sqlite file so queued
// submissions survive a process restart. FIFO order is insertion order.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("queue db path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent drains.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init queue schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Enqueue(ctx context.Context, entry domain.OfflineQueueEntry) error {
	if err := entry.Submission.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(entry.Submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	enqueuedAt := entry.EnqueuedAt
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO offline_queue (submission_id, submission, enqueued_at, attempts)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(submission_id) DO NOTHING`,
		entry.Submission.ID, raw, enqueuedAt.Format(time.RFC3339Nano), entry.Attempts,
	)
	return err
}

func (s *SQLiteStore) NextBatch(ctx context.Context, limit int) ([]domain.OfflineQueueEntry, error) {
	if limit <= 0 {
		limit = 32
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT submission, enqueued_at, attempts
		 FROM offline_queue ORDER BY rowid ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OfflineQueueEntry
	for rows.Next() {
		var (
			raw        []byte
			enqueuedAt string
			attempts   int
		)
		if err := rows.Scan(&raw, &enqueuedAt, &attempts); err != nil {
			return nil, err
		}
		var sub domain.Submission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, fmt.Errorf("decode queued submission: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, enqueuedAt)
		if err != nil {
			return nil, fmt.Errorf("decode enqueue time: %w", err)
		}
		out = append(out, domain.OfflineQueueEntry{Submission: sub, EnqueuedAt: at, Attempts: attempts})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkAttempt(ctx context.Context, submissionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE offline_queue SET attempts = attempts + 1 WHERE submission_id = ?`, submissionID)
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, submissionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM offline_queue WHERE submission_id = ?`, submissionID)
	return err
}

func (s *SQLiteStore) Pending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_queue`).Scan(&n)
	return n, err
}
