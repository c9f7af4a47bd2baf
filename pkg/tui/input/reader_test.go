// ABOUTME: Tests for Reader key parsing and delivery from an io.Reader.
// ABOUTME: Uses in-memory readers and a channel-fed blocking reader; covers escapes, CRLF, paste, and cancellation.

package input

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mauromedda/asyncconsole/pkg/tui/key"
)

// collect runs a Reader over src until it returns and gathers every key.
func collect(t *testing.T, src io.Reader) ([]key.Key, error) {
	t.Helper()

	r := NewReader(src, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	var got []key.Key
	for k := range r.Keys() {
		got = append(got, k)
	}
	return got, <-errCh
}

func TestReader_Keys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []key.Key
	}{
		{
			name:  "single rune",
			input: "a",
			want:  []key.Key{{Type: key.KeyRune, Rune: 'a'}},
		},
		{
			name:  "arrow up",
			input: "\x1b[A",
			want:  []key.Key{{Type: key.KeyUp}},
		},
		{
			name:  "multiple runes",
			input: "abc",
			want: []key.Key{
				{Type: key.KeyRune, Rune: 'a'},
				{Type: key.KeyRune, Rune: 'b'},
				{Type: key.KeyRune, Rune: 'c'},
			},
		},
		{
			name:  "crlf folds into one enter",
			input: "x\r\ny",
			want: []key.Key{
				{Type: key.KeyRune, Rune: 'x'},
				{Type: key.KeyEnter},
				{Type: key.KeyRune, Rune: 'y'},
			},
		},
		{
			name:  "bare newline is enter",
			input: "\n\n",
			want:  []key.Key{{Type: key.KeyEnter}, {Type: key.KeyEnter}},
		},
		{
			name:  "bracketed paste",
			input: "\x1b[200~hello world\x1b[201~!",
			want: []key.Key{
				{Type: key.KeyPaste, Text: "hello world"},
				{Type: key.KeyRune, Rune: '!'},
			},
		},
		{
			name:  "unknown csi is skipped whole",
			input: "\x1b[99Zq",
			want: []key.Key{
				{Type: key.KeyUnknown},
				{Type: key.KeyRune, Rune: 'q'},
			},
		},
		{
			name:  "trailing lone escape at eof",
			input: "a\x1b",
			want: []key.Key{
				{Type: key.KeyRune, Rune: 'a'},
				{Type: key.KeyEscape},
			},
		},
		{
			name:  "utf8 rune",
			input: "é",
			want:  []key.Key{{Type: key.KeyRune, Rune: 'é'}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := collect(t, bytes.NewBufferString(tt.input))
			if !errors.Is(err, io.EOF) {
				t.Fatalf("Run() error = %v, want io.EOF", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d keys %v, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("key[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReader_LoneEscapeTimeout(t *testing.T) {
	t.Parallel()

	src, feed := syncPipe()
	r := NewReader(src, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	feed <- []byte("\x1b")

	select {
	case k := <-r.Keys():
		if k.Type != key.KeyEscape {
			t.Fatalf("expected Escape after timeout, got %v", k)
		}
	case <-time.After(time.Second):
		t.Fatal("lone ESC was never delivered")
	}
}

func TestReader_SplitSequence(t *testing.T) {
	t.Parallel()

	src, feed := syncPipe()
	r := NewReader(src, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	// The CSI arrives in two reads well inside the ESC timeout.
	feed <- []byte("\x1b[")
	feed <- []byte("D")

	select {
	case k := <-r.Keys():
		if k.Type != key.KeyLeft {
			t.Fatalf("expected Left, got %v", k)
		}
	case <-time.After(time.Second):
		t.Fatal("split sequence was never delivered")
	}
}

func TestReader_ContextCancellation(t *testing.T) {
	t.Parallel()

	src, _ := syncPipe()
	r := NewReader(src, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	if _, ok := <-r.Keys(); ok {
		t.Error("expected Keys channel to be closed")
	}
}

// syncPipe creates a pipe-like reader/writer pair for testing.
// The reader blocks until data is written or the writer is closed.
func syncPipe() (*blockingReader, chan<- []byte) {
	ch := make(chan []byte)
	return &blockingReader{ch: ch}, ch
}

// blockingReader reads from a channel, blocking until data arrives.
type blockingReader struct {
	ch  <-chan []byte
	buf []byte
}

func (r *blockingReader) Read(p []byte) (int, error) {
	if len(r.buf) > 0 {
		n := copy(p, r.buf)
		r.buf = r.buf[n:]
		return n, nil
	}
	data, ok := <-r.ch
	if !ok {
		return 0, io.EOF
	}
	n := copy(p, data)
	if n < len(data) {
		r.buf = data[n:]
	}
	return n, nil
}
