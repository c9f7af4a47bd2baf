// ABOUTME: OutputQueue buffers messages for the worker and tells waiters when it has been drained.
// ABOUTME: Unbounded by default; an optional capacity applies a drop or block overflow policy.

package console

import (
	"context"
	"sync"
)

// OutputQueue is the producer side of the console. Producers push; only
// the worker pops and announces drains.
type OutputQueue struct {
	mu       sync.Mutex
	q        fifo[Message]
	capacity int
	policy   OverflowPolicy
	space    *sync.Cond
	closed   bool
	flushing bool
	dropped  uint64

	wake    chan struct{}
	drained chan struct{}
}

// NewOutputQueue returns an OutputQueue. capacity <= 0 means unbounded and
// policy is then ignored.
func NewOutputQueue(capacity int, policy OverflowPolicy) *OutputQueue {
	q := &OutputQueue{
		capacity: max(capacity, 0),
		policy:   policy,
		wake:     make(chan struct{}, 1),
		drained:  make(chan struct{}),
	}
	q.space = sync.NewCond(&q.mu)
	return q
}

// Push queues m and wakes the worker. It reports false when m was
// rejected, either by the overflow policy or because the queue is closed.
// Under the Block policy it waits for room.
func (q *OutputQueue) Push(m Message) bool {
	q.mu.Lock()
	for !q.closed && q.capacity > 0 && q.q.len() >= q.capacity {
		switch q.policy {
		case DropOldest:
			q.q.pop()
			q.dropped++
		case Block:
			q.space.Wait()
		default:
			q.dropped++
			q.mu.Unlock()
			return false
		}
	}
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.q.push(m)
	q.mu.Unlock()
	signal(q.wake)
	return true
}

// pop removes the oldest message and reports how many remain behind it.
func (q *OutputQueue) pop() (m Message, remaining int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	m, ok = q.q.pop()
	if ok && q.capacity > 0 {
		q.space.Signal()
	}
	return m, q.q.len(), ok
}

// Len returns the number of queued messages.
func (q *OutputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.len()
}

// Dropped returns how many messages the overflow policy discarded.
func (q *OutputQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Wake is signalled after every successful Push.
func (q *OutputQueue) Wake() <-chan struct{} {
	return q.wake
}

// beginFlush marks popped messages as in flight until markDrained.
func (q *OutputQueue) beginFlush() {
	q.mu.Lock()
	q.flushing = true
	q.mu.Unlock()
}

// markDrained ends the flush and wakes everyone in WaitUntilEmpty if the
// queue is empty now.
func (q *OutputQueue) markDrained() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flushing = false
	if q.q.len() == 0 {
		close(q.drained)
		q.drained = make(chan struct{})
	}
}

// WaitUntilEmpty returns nil once the queue is empty and no popped message
// is still being written. It returns ctx.Err() if ctx ends first.
func (q *OutputQueue) WaitUntilEmpty(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.q.len() == 0 && !q.flushing {
			q.mu.Unlock()
			return nil
		}
		ch := q.drained
		q.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close rejects further pushes, releases blocked producers, discards what
// is queued and wakes waiters. It returns the number of discarded messages.
func (q *OutputQueue) Close() int {
	q.mu.Lock()
	q.closed = true
	n := len(q.q.drain())
	q.space.Broadcast()
	q.mu.Unlock()
	q.markDrained()
	return n
}
