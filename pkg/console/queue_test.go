// ABOUTME: Tests for Queue, InputQueue and OutputQueue ordering, blocking, and overflow behaviour.
// ABOUTME: Concurrency cases run under -race with many producers.

package console

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	var q Queue[int]
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue should fail")
	}
	// Enough traffic to exercise compaction of the backing slice.
	next := 0
	for i := range 500 {
		q.Push(i)
		if i%3 == 0 {
			v, ok := q.Pop()
			if !ok || v != next {
				t.Fatalf("Pop() = %d, %v; want %d", v, ok, next)
			}
			next++
		}
	}
	if q.Len() != 500-next {
		t.Fatalf("Len() = %d, want %d", q.Len(), 500-next)
	}
	rest := q.Drain()
	for i, v := range rest {
		if v != next+i {
			t.Fatalf("Drain()[%d] = %d, want %d", i, v, next+i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d", q.Len())
	}
}

func TestQueue_ConcurrentProducersKeepOrder(t *testing.T) {
	t.Parallel()

	const producers, perProducer = 8, 200
	var q Queue[[2]int]
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.Push([2]int{p, i})
			}
		}()
	}
	wg.Wait()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	total := 0
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		if v[1] != last[v[0]]+1 {
			t.Fatalf("producer %d: got %d after %d", v[0], v[1], last[v[0]])
		}
		last[v[0]] = v[1]
		total++
	}
	if total != producers*perProducer {
		t.Errorf("popped %d, want %d", total, producers*perProducer)
	}
}

func TestInputQueue_ReadLine(t *testing.T) {
	t.Parallel()

	q := NewInputQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan string, 2)
	for range 2 {
		go func() {
			line, err := q.ReadLine(ctx)
			if err != nil {
				got <- "error: " + err.Error()
				return
			}
			got <- line
		}()
	}
	time.Sleep(10 * time.Millisecond)
	q.Push("a")
	q.Push("b")

	var lines []string
	for range 2 {
		select {
		case l := <-got:
			lines = append(lines, l)
		case <-time.After(time.Second):
			t.Fatalf("readers stalled; got %q", lines)
		}
	}
	slices.Sort(lines)
	if !slices.Equal(lines, []string{"a", "b"}) {
		t.Errorf("lines = %q, want [a b]", lines)
	}
}

func TestInputQueue_ReadLineEnds(t *testing.T) {
	t.Parallel()

	q := NewInputQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.ReadLine(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadLine(cancelled) = %v, want context.Canceled", err)
	}

	q.Push("left over")
	if n := q.Close(); n != 1 {
		t.Errorf("Close() discarded %d, want 1", n)
	}
	if _, err := q.ReadLine(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadLine after Close = %v, want ErrClosed", err)
	}
	q.Close()
}

func TestOutputQueue_Overflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		capacity    int
		policy      OverflowPolicy
		wantTexts   []string
		wantDropped uint64
	}{
		{name: "unbounded", capacity: 0, policy: DropNewest, wantTexts: []string{"1", "2", "3"}},
		{name: "drop newest", capacity: 2, policy: DropNewest, wantTexts: []string{"1", "2"}, wantDropped: 1},
		{name: "drop oldest", capacity: 2, policy: DropOldest, wantTexts: []string{"2", "3"}, wantDropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := NewOutputQueue(tt.capacity, tt.policy)
			for _, s := range []string{"1", "2", "3"} {
				q.Push(Message{Text: s})
			}
			var got []string
			for {
				m, _, ok := q.pop()
				if !ok {
					break
				}
				got = append(got, m.Text)
			}
			if !slices.Equal(got, tt.wantTexts) {
				t.Errorf("texts = %q, want %q", got, tt.wantTexts)
			}
			if q.Dropped() != tt.wantDropped {
				t.Errorf("Dropped() = %d, want %d", q.Dropped(), tt.wantDropped)
			}
		})
	}
}

func TestOutputQueue_BlockWaitsForRoom(t *testing.T) {
	t.Parallel()

	q := NewOutputQueue(1, Block)
	q.Push(Message{Text: "first"})

	pushed := make(chan bool)
	go func() { pushed <- q.Push(Message{Text: "second"}) }()

	select {
	case <-pushed:
		t.Fatal("Push should block while the queue is full")
	case <-time.After(30 * time.Millisecond):
	}

	if m, _, _ := q.pop(); m.Text != "first" {
		t.Fatalf("pop() = %q, want first", m.Text)
	}
	select {
	case ok := <-pushed:
		if !ok {
			t.Error("blocked Push should succeed once there is room")
		}
	case <-time.After(time.Second):
		t.Fatal("Push stayed blocked after pop")
	}
}

func TestOutputQueue_CloseReleasesBlockedPush(t *testing.T) {
	t.Parallel()

	q := NewOutputQueue(1, Block)
	q.Push(Message{Text: "x"})
	pushed := make(chan bool)
	go func() { pushed <- q.Push(Message{Text: "y"}) }()
	time.Sleep(10 * time.Millisecond)

	if n := q.Close(); n != 1 {
		t.Errorf("Close() discarded %d, want 1", n)
	}
	select {
	case ok := <-pushed:
		if ok {
			t.Error("Push after Close should report false")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not release the blocked producer")
	}
	if q.Push(Message{Text: "z"}) {
		t.Error("Push on closed queue should fail")
	}
}

func TestOutputQueue_WaitUntilEmpty(t *testing.T) {
	t.Parallel()

	q := NewOutputQueue(0, DropNewest)
	if err := q.WaitUntilEmpty(context.Background()); err != nil {
		t.Fatalf("WaitUntilEmpty on empty queue = %v", err)
	}

	for i := range 3 {
		q.Push(Message{Text: fmt.Sprint(i)})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.WaitUntilEmpty(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitUntilEmpty with pending output = %v, want deadline", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.WaitUntilEmpty(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	// A drain that leaves messages behind must not release the waiter.
	q.pop()
	q.markDrained()
	select {
	case <-done:
		t.Fatal("waiter released while output was still queued")
	case <-time.After(20 * time.Millisecond):
	}

	q.pop()
	q.pop()
	q.markDrained()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitUntilEmpty = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not released after drain")
	}
}

func TestOutputQueue_WaitUntilEmptyDuringFlush(t *testing.T) {
	t.Parallel()

	q := NewOutputQueue(0, DropNewest)
	q.Push(Message{Text: "last"})
	q.beginFlush()
	q.pop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.WaitUntilEmpty(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitUntilEmpty with a message in flight = %v, want deadline", err)
	}

	q.markDrained()
	if err := q.WaitUntilEmpty(context.Background()); err != nil {
		t.Errorf("WaitUntilEmpty after drain = %v", err)
	}
}

func TestOutputQueue_WakeCoalesces(t *testing.T) {
	t.Parallel()

	q := NewOutputQueue(0, DropNewest)
	q.Push(Message{Text: "a"})
	q.Push(Message{Text: "b"})
	<-q.Wake()
	select {
	case <-q.Wake():
		t.Error("expected a single coalesced wake-up")
	default:
	}
}
