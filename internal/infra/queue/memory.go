package queue

import (
	"context"
	"sync"
	"time"

	"veritas/internal/domain"
)

// MemoryStore is a process-local queue with the same semantics as the
// sqlite store, minus durability.
type MemoryStore struct {
	mu      sync.Mutex
	order   []string
	entries map[string]domain.OfflineQueueEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.OfflineQueueEntry)}
}

func (s *MemoryStore) Enqueue(_ context.Context, entry domain.OfflineQueueEntry) error {
	if err := entry.Submission.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := entry.Submission.ID
	if _, dup := s.entries[id]; dup {
		return nil
	}
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now().UTC()
	}
	s.entries[id] = entry
	s.order = append(s.order, id)
	return nil
}

func (s *MemoryStore) NextBatch(_ context.Context, limit int) ([]domain.OfflineQueueEntry, error) {
	if limit <= 0 {
		limit = 32
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OfflineQueueEntry
	for _, id := range s.order {
		if len(out) == limit {
			break
		}
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *MemoryStore) MarkAttempt(_ context.Context, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[submissionID]; ok {
		entry.Attempts++
		s.entries[submissionID] = entry
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[submissionID]; !ok {
		return nil
	}
	delete(s.entries, submissionID)
	for i, id := range s.order {
		if id == submissionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Pending(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order), nil
}
