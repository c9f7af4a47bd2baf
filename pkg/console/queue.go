// ABOUTME: Strict FIFO queues shared between the console worker and application goroutines.
// ABOUTME: InputQueue carries completed lines out of the worker with a blocking ReadLine.

package console

import (
	"context"
	"sync"
)

// fifo is an unsynchronised first-in first-out list. Owners provide locking.
type fifo[T any] struct {
	items []T
	head  int
}

func (f *fifo[T]) push(v T) {
	f.items = append(f.items, v)
}

func (f *fifo[T]) pop() (T, bool) {
	var zero T
	if f.head == len(f.items) {
		return zero, false
	}
	v := f.items[f.head]
	f.items[f.head] = zero
	f.head++
	if f.head == len(f.items) {
		f.items = f.items[:0]
		f.head = 0
	} else if f.head >= 64 && f.head*2 >= len(f.items) {
		n := copy(f.items, f.items[f.head:])
		clear(f.items[n:])
		f.items = f.items[:n]
		f.head = 0
	}
	return v, true
}

func (f *fifo[T]) len() int {
	return len(f.items) - f.head
}

func (f *fifo[T]) drain() []T {
	out := append([]T(nil), f.items[f.head:]...)
	clear(f.items)
	f.items = f.items[:0]
	f.head = 0
	return out
}

// Queue is a mutex-guarded FIFO. The zero value is ready to use.
type Queue[T any] struct {
	mu sync.Mutex
	q  fifo[T]
}

// Push appends v.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.q.push(v)
	q.mu.Unlock()
}

// Pop removes the oldest element. It never blocks; ok is false when empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.pop()
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.len()
}

// Drain removes and returns everything queued, oldest first.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.drain()
}

// InputQueue holds completed input lines until a consumer takes them.
type InputQueue struct {
	q         Queue[string]
	ready     chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewInputQueue returns an empty InputQueue.
func NewInputQueue() *InputQueue {
	return &InputQueue{
		ready:  make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Push appends a completed line and wakes one blocked reader.
func (q *InputQueue) Push(line string) {
	q.q.Push(line)
	signal(q.ready)
}

// Pop removes the oldest line without blocking.
func (q *InputQueue) Pop() (string, bool) {
	line, ok := q.q.Pop()
	if ok && q.q.Len() > 0 {
		// Pass the wake-up on so a second reader does not sleep on a
		// coalesced signal.
		signal(q.ready)
	}
	return line, ok
}

// Len returns the number of queued lines.
func (q *InputQueue) Len() int {
	return q.q.Len()
}

// ReadLine blocks until a line is available, the queue is closed
// (ErrClosed), or ctx ends.
func (q *InputQueue) ReadLine(ctx context.Context) (string, error) {
	for {
		if line, ok := q.Pop(); ok {
			return line, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.closed:
			return "", ErrClosed
		case <-q.ready:
		}
	}
}

// Close wakes every blocked reader with ErrClosed and discards the
// remaining lines, returning how many there were.
func (q *InputQueue) Close() int {
	q.closeOnce.Do(func() { close(q.closed) })
	return len(q.q.Drain())
}

// signal does a non-blocking send on a capacity-one channel.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
