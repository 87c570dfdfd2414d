package usecase

import (
	"sync"

	"veritas/internal/domain"
)

// ProgressBus fans stage events out to subscribers. Publish never blocks:
// a subscriber whose buffer is full simply misses the event.
type ProgressBus struct {
	mu   sync.RWMutex
	subs map[int]chan domain.ProgressEvent
	next int
}

func NewProgressBus() *ProgressBus {
	return &ProgressBus{subs: make(map[int]chan domain.ProgressEvent)}
}

// Subscribe registers a buffered listener and returns its channel with a
// cancel function. Cancel closes the channel.
func (b *ProgressBus) Subscribe(buffer int) (<-chan domain.ProgressEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.ProgressEvent, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *ProgressBus) Publish(ev domain.ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
