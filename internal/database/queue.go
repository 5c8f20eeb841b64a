package database

import (
	"sync"
	"time"
)

// fifo is an unbounded first-in-first-out queue with a bounded-wait pop.
// Pushes never block, which keeps QueueWrite non-blocking for callers, and
// the timed pop lets the worker loops periodically check for shutdown.
type fifo[T any] struct {
	mu     sync.Mutex
	items  []T
	signal chan struct{}
}

func newFIFO[T any]() *fifo[T] {
	return &fifo[T]{signal: make(chan struct{}, 1)}
}

// push appends item and wakes a waiting pop, if any.
func (q *fifo[T]) push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop removes and returns the head, waiting up to timeout for an item to
// arrive. The second return value is false if the queue stayed empty.
func (q *fifo[T]) pop(timeout time.Duration) (T, bool) {
	if item, ok := q.tryPop(); ok {
		return item, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.signal:
			if item, ok := q.tryPop(); ok {
				return item, true
			}
		case <-timer.C:
			var zero T
			return zero, false
		}
	}
}

// tryPop removes and returns the head without waiting.
func (q *fifo[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]

	// Re-arm the signal so another pending item is not missed.
	if len(q.items) > 0 {
		select {
		case q.signal <- struct{}{}:
		default:
		}
	}
	return item, true
}

// len returns the number of queued items.
func (q *fifo[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
