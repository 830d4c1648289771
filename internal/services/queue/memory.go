package queue

import (
	"context"
	"slices"
	"sync"
)

// MemoryQueue is an in-process Queue, used when no Redis URL is configured.
type MemoryQueue struct {
	mu     sync.Mutex
	events map[string][]string
}

// NewMemoryQueue returns an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{events: make(map[string][]string)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, gameID, eventPrompt string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events[gameID] = append(q.events[gameID], eventPrompt)
	return nil
}

func (q *MemoryQueue) Dequeue(_ context.Context, gameID string) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events[gameID]
	delete(q.events, gameID)
	return events, nil
}

func (q *MemoryQueue) Peek(_ context.Context, gameID string, limit int) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events[gameID]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return slices.Clone(events), nil
}

func (q *MemoryQueue) Clear(_ context.Context, gameID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.events, gameID)
	return nil
}

func (q *MemoryQueue) Depth(_ context.Context, gameID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events[gameID]), nil
}
