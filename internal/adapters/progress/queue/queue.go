// Package queue carries optimizer progress snapshots to whoever displays
// them. Publishing never blocks: when the buffer is full the snapshot is
// dropped and counted.
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/progol/internal/domain/types"
)

// Default queue configuration constants.
const (
	defaultCapacity = 64
)

// Queue provides non-blocking publish and channel-based consumption.
type Queue interface {
	// Publish offers a snapshot. Returns false if it was dropped.
	Publish(ctx context.Context, p types.Progress) bool

	// Dequeue returns the channel snapshots arrive on. It is closed by Close.
	Dequeue() <-chan types.Progress

	// Len returns the number of buffered snapshots.
	Len() int

	// Close stops publishing and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events    chan types.Progress
	capacity  int
	published atomic.Int64
	dropped   atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan types.Progress, q.capacity)
	return q
}

// Publish adds a snapshot without blocking.
func (q *InMemoryQueue) Publish(ctx context.Context, p types.Progress) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		q.dropped.Add(1)
		return false
	}

	select {
	case q.events <- p:
		q.published.Add(1)
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dequeue returns the channel snapshots arrive on.
func (q *InMemoryQueue) Dequeue() <-chan types.Progress {
	return q.events
}

// Len returns the number of buffered snapshots.
func (q *InMemoryQueue) Len() int {
	return len(q.events)
}

// Published returns how many snapshots were accepted.
func (q *InMemoryQueue) Published() int64 { return q.published.Load() }

// Dropped returns how many snapshots were discarded.
func (q *InMemoryQueue) Dropped() int64 { return q.dropped.Load() }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
