package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/progol/internal/domain/types"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Publish(ctx, types.Progress{Phase: types.PhasePool, Percent: 1}) {
		t.Error("expected publish to succeed")
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	p := <-q.Dequeue()
	if p.Phase != types.PhasePool {
		t.Errorf("expected pool phase, got %v", p.Phase)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_DropsWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !q.Publish(ctx, types.Progress{Iteration: i}) {
			t.Fatalf("expected publish %d to succeed", i)
		}
	}
	if q.Publish(ctx, types.Progress{Iteration: 2}) {
		t.Error("expected publish to fail when full")
	}
	if q.Dropped() != 1 || q.Published() != 2 {
		t.Errorf("expected 2 published and 1 dropped, got %d and %d", q.Published(), q.Dropped())
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	q.Publish(ctx, types.Progress{Iteration: 1})
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Publish(ctx, types.Progress{Iteration: 2}) {
		t.Error("expected publish after close to fail")
	}

	var got []int
	for p := range q.Dequeue() {
		got = append(got, p.Iteration)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected buffered snapshot to drain after close, got %v", got)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Publish(ctx, types.Progress{}) {
		t.Error("expected publish with cancelled context to fail")
	}
}

func TestInMemoryQueue_ConcurrentPublishAndClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				q.Publish(ctx, types.Progress{Iteration: i})
			}
		}()
	}
	go func() {
		for range q.Dequeue() {
		}
	}()
	wg.Wait()
	_ = q.Close()

	if total := q.Published() + q.Dropped(); total != 4000 {
		t.Errorf("expected every publish to be accounted for, got %d", total)
	}
}
