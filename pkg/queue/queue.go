// Package queue provides an unbounded FIFO with a channel on the receive side.
package queue

import "sync"

// Queue buffers every pushed value until it is received. Push never blocks on
// a slow consumer; memory grows instead.
type Queue[T any] struct {
	mu     sync.RWMutex
	closed bool
	in     chan T
	out    chan T
}

// New creates a queue and starts its pump goroutine.
// The goroutine exits once the queue is closed and fully drained.
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go q.pump()
	return q
}

// Push appends v. It returns false if the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	q.in <- v
	return true
}

// Out returns the receive channel. It is closed after Close once every
// buffered value has been received.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

// TryPop returns the next value without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	select {
	case v, ok := <-q.out:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// Close stops accepting values. Already pushed values stay receivable.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.in)
}

func (q *Queue[T]) pump() {
	defer close(q.out)

	var pending []T
	in := q.in
	for in != nil || len(pending) > 0 {
		if len(pending) == 0 {
			v, ok := <-in
			if !ok {
				return
			}
			pending = append(pending, v)
			continue
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, v)
		case q.out <- pending[0]:
			var zero T
			pending[0] = zero
			pending = pending[1:]
		}
	}
}
