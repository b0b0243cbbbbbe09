// Package reporter consumes progress snapshots off the queue in its own
// goroutine, logs phase changes and forwards each snapshot to a handler.
package reporter

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/progol/internal/domain/types"
	"github.com/okian/progol/pkg/logger"
)

// Queue defines how the reporter receives snapshots.
type Queue interface {
	Dequeue() <-chan types.Progress
}

// Handler is called for every snapshot, on the reporter goroutine.
type Handler func(ctx context.Context, p types.Progress)

// Reporter drains a progress queue until it is closed or stopped.
type Reporter struct {
	queue   Queue
	handler Handler
	name    string

	mu       sync.RWMutex
	last     types.Progress
	received int

	shutdown chan struct{}
	once     sync.Once
	done     chan struct{}

	logger logger.Logger
}

// New creates a reporter for q.
func New(q Queue, opts ...Option) *Reporter {
	r := &Reporter{
		queue:    q,
		name:     "reporter",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Named("progress"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.name != "reporter" {
		r.logger = r.logger.Named(r.name)
	}
	return r
}

// Run consumes snapshots until the queue closes, Shutdown is called or ctx
// is canceled.
func (r *Reporter) Run(ctx context.Context) {
	defer close(r.done)

	events := r.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, p)
		}
	}
}

func (r *Reporter) handle(ctx context.Context, p types.Progress) {
	r.mu.Lock()
	prev := r.last
	r.last = p
	r.received++
	r.mu.Unlock()

	if p.Phase != prev.Phase {
		r.logger.Info(ctx, "optimizer phase",
			logger.String("phase", string(p.Phase)),
			logger.Float64("percent", p.Percent),
			logger.Float64("best", p.BestScore),
		)
	} else {
		r.logger.Debug(ctx, "optimizer progress",
			logger.Int("iteration", p.Iteration),
			logger.Float64("percent", p.Percent),
			logger.Float64("best", p.BestScore),
		)
	}

	if r.handler != nil {
		r.handler(ctx, p)
	}
}

// Last returns the most recent snapshot.
func (r *Reporter) Last() types.Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Received returns how many snapshots were handled.
func (r *Reporter) Received() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.received
}

// Wait blocks until Run returns, which happens once the queue is closed and
// drained.
func (r *Reporter) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for reporter: %w", ctx.Err())
	}
}

// Shutdown stops the reporter without draining the queue.
func (r *Reporter) Shutdown(ctx context.Context) error {
	r.once.Do(func() { close(r.shutdown) })

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
