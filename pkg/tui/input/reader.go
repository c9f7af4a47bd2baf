// ABOUTME: Reader turns a raw byte stream (stdin) into parsed key events on a channel.
// ABOUTME: Handles escape sequence buffering, lone-ESC timeout (~50ms), CRLF folding, and bracketed paste.

package input

import (
	"bytes"
	"context"
	"io"
	"time"
	"unicode/utf8"

	"github.com/mauromedda/asyncconsole/pkg/tui/key"
)

const (
	readBufSize  = 256
	escTimeout   = 50 * time.Millisecond
	bracketStart = "\x1b[200~"
	bracketEnd   = "\x1b[201~"
)

// parseState is the outcome of one attempt to parse the front of the buffer.
type parseState int

const (
	parsed       parseState = iota
	needMore                // incomplete; flush after escTimeout
	needMoreWait            // incomplete paste; wait for the end marker
)

// Reader reads from an io.Reader and delivers parsed keys on Keys().
// Only Run touches the internal buffer, so no locking is needed.
type Reader struct {
	src    io.Reader
	out    chan key.Key
	buf    []byte
	lastCR bool
}

// NewReader creates a Reader over r whose key channel holds up to size
// pending keys.
func NewReader(r io.Reader, size int) *Reader {
	if size <= 0 {
		size = 64
	}
	return &Reader{
		src: r,
		out: make(chan key.Key, size),
		buf: make([]byte, 0, readBufSize),
	}
}

// Keys returns the channel parsed keys are delivered on. It is closed when
// Run returns.
func (r *Reader) Keys() <-chan key.Key {
	return r.out
}

// Run reads until ctx is cancelled or the underlying reader fails. It returns
// ctx.Err() on cancellation, or the read error (io.EOF at end of input).
// It blocks; run it in a goroutine.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.out)

	readCh := make(chan readResult)
	done := make(chan struct{})
	go r.readLoop(readCh, done)
	defer close(done)

	var timeout <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-readCh:
			if !ok {
				r.flushRemaining(ctx)
				return io.EOF
			}
			if res.err != nil {
				r.flushRemaining(ctx)
				return res.err
			}
			r.buf = append(r.buf, res.data...)
			timeout = nil
			if r.dispatch(ctx) == needMore {
				timeout = time.After(escTimeout)
			}
		case <-timeout:
			timeout = nil
			r.forceOne(ctx)
			if r.dispatch(ctx) == needMore {
				timeout = time.After(escTimeout)
			}
		}
	}
}

// readResult holds the outcome of a single Read call.
type readResult struct {
	data []byte
	err  error
}

// readLoop continuously reads from the source and sends data on ch.
// It stops when done is closed, preventing goroutine leaks on context cancellation.
func (r *Reader) readLoop(ch chan<- readResult, done <-chan struct{}) {
	defer close(ch)
	tmp := make([]byte, readBufSize)
	for {
		n, err := r.src.Read(tmp)
		if n > 0 {
			data := make([]byte, n)
			copy(data, tmp[:n])
			select {
			case ch <- readResult{data: data}:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case ch <- readResult{err: err}:
			case <-done:
			}
			return
		}
	}
}

// dispatch emits every complete key at the front of the buffer and reports
// whether the remainder is an incomplete sequence.
func (r *Reader) dispatch(ctx context.Context) parseState {
	for len(r.buf) > 0 {
		consumed, k, state := r.tryParse()
		if state != parsed {
			return state
		}
		first := r.buf[0]
		r.buf = r.buf[consumed:]

		// Terminals in cooked mode and pipes send "\r\n"; fold it into one Enter.
		if first == '\n' && r.lastCR {
			r.lastCR = false
			continue
		}
		r.lastCR = first == '\r'

		if !r.emit(ctx, k) {
			return parsed
		}
	}
	return parsed
}

func (r *Reader) emit(ctx context.Context, k key.Key) bool {
	select {
	case r.out <- k:
		return true
	case <-ctx.Done():
		return false
	}
}

// tryParse attempts to parse one key from the front of r.buf.
func (r *Reader) tryParse() (int, key.Key, parseState) {
	if bytes.HasPrefix(r.buf, []byte(bracketStart)) {
		end := bytes.Index(r.buf[len(bracketStart):], []byte(bracketEnd))
		if end < 0 {
			return 0, key.Key{}, needMoreWait
		}
		text := string(r.buf[len(bracketStart) : len(bracketStart)+end])
		return len(bracketStart) + end + len(bracketEnd), key.Key{Type: key.KeyPaste, Text: text}, parsed
	}

	if r.buf[0] == 0x1b {
		if len(r.buf) == 1 || bytes.HasPrefix([]byte(bracketStart), r.buf) {
			return 0, key.Key{}, needMore
		}
		return r.parseEscape()
	}

	if !utf8.FullRune(r.buf) {
		return 0, key.Key{}, needMore
	}

	ch, size := utf8.DecodeRune(r.buf)
	if ch == utf8.RuneError {
		return 1, key.Key{Type: key.KeyUnknown}, parsed
	}
	return size, key.ParseKey(string(r.buf[:size])), parsed
}

// parseEscape parses an escape sequence; len(r.buf) >= 2.
func (r *Reader) parseEscape() (int, key.Key, parseState) {
	maxLen := min(len(r.buf), 16)
	minLen := 2
	if r.buf[1] == '[' || r.buf[1] == 'O' {
		// "\x1b[" alone is an unfinished CSI, not Alt+[.
		minLen = 3
	}

	// Longest match first.
	for end := maxLen; end >= minLen; end-- {
		k := key.ParseKey(string(r.buf[:end]))
		if k.Type != key.KeyUnknown {
			return end, k, parsed
		}
	}

	if (r.buf[1] == '[' || r.buf[1] == 'O') && !csiTerminated(r.buf[2:]) {
		return 0, key.Key{}, needMore
	}

	// Unknown but complete sequence: drop it whole.
	if r.buf[1] == '[' {
		return 2 + csiLength(r.buf[2:]), key.Key{Type: key.KeyUnknown}, parsed
	}
	return 1, key.Key{Type: key.KeyEscape}, parsed
}

// csiTerminated reports whether b contains a CSI final byte (0x40..0x7e).
func csiTerminated(b []byte) bool {
	return csiLength(b) > 0
}

func csiLength(b []byte) int {
	for i, c := range b {
		if c >= 0x40 && c <= 0x7e {
			return i + 1
		}
	}
	return 0
}

// forceOne resolves an incomplete sequence once the timeout has passed:
// a leading ESC becomes a lone Escape, anything else an unknown byte.
func (r *Reader) forceOne(ctx context.Context) {
	if len(r.buf) == 0 {
		return
	}
	k := key.Key{Type: key.KeyUnknown}
	if r.buf[0] == 0x1b {
		k = key.Key{Type: key.KeyEscape}
	}
	r.buf = r.buf[1:]
	r.emit(ctx, k)
}

// flushRemaining dispatches any leftover bytes at end of input.
func (r *Reader) flushRemaining(ctx context.Context) {
	for len(r.buf) > 0 {
		if r.dispatch(ctx) == parsed {
			return
		}
		if bytes.HasPrefix(r.buf, []byte(bracketStart)) {
			// Unterminated paste: deliver what arrived.
			text := string(r.buf[len(bracketStart):])
			r.buf = r.buf[:0]
			r.emit(ctx, key.Key{Type: key.KeyPaste, Text: text})
			return
		}
		r.forceOne(ctx)
	}
}
