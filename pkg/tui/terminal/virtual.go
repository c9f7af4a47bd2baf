// ABOUTME: VirtualTerminal implements Terminal for testing without a real TTY.
// ABOUTME: Captures raw output, tracks raw-mode calls, and replays output into visible rows.

package terminal

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// VirtualTerminal is a fake Terminal for unit tests.
// It records written output and tracks raw-mode transitions.
type VirtualTerminal struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	width      int
	height     int
	rawMode    bool
	resizeFn   func(width, height int)
	enterCount int
	exitCount  int
}

// NewVirtualTerminal returns a VirtualTerminal with the given dimensions.
func NewVirtualTerminal(width, height int) *VirtualTerminal {
	return &VirtualTerminal{
		width:  width,
		height: height,
	}
}

// EnterRawMode records a raw-mode entry.
func (v *VirtualTerminal) EnterRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawMode = true
	v.enterCount++
	return nil
}

// ExitRawMode records a raw-mode exit.
func (v *VirtualTerminal) ExitRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawMode = false
	v.exitCount++
	return nil
}

// Size returns the configured terminal dimensions.
func (v *VirtualTerminal) Size() (width, height int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.width, v.height, nil
}

// Write appends data to the internal buffer.
func (v *VirtualTerminal) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n, err := v.buf.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to virtual buffer: %w", err)
	}
	return n, nil
}

// OnResize stores the resize callback.
func (v *VirtualTerminal) OnResize(fn func(width, height int)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.resizeFn = fn
}

// --- Test helpers (not part of Terminal interface) ---

// Output returns everything written so far.
func (v *VirtualTerminal) Output() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.buf.String()
}

// Reset clears the output buffer.
func (v *VirtualTerminal) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.buf.Reset()
}

// IsRawMode reports whether raw mode is currently active.
func (v *VirtualTerminal) IsRawMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rawMode
}

// EnterCount returns how many times EnterRawMode was called.
func (v *VirtualTerminal) EnterCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.enterCount
}

// ExitCount returns how many times ExitRawMode was called.
func (v *VirtualTerminal) ExitCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.exitCount
}

// SetSize updates the terminal dimensions and, if a resize callback
// is registered, invokes it with the new size.
func (v *VirtualTerminal) SetSize(width, height int) {
	v.mu.Lock()
	v.width = width
	v.height = height
	fn := v.resizeFn
	v.mu.Unlock()

	if fn != nil {
		fn(width, height)
	}
}

// Screen replays everything written so far and returns the visible rows
// (trailing spaces trimmed) plus the final cursor position.
// It understands CR, LF, BS, erase-line (CSI K, CSI 2K), cursor
// forward/back (CSI n C, CSI n D) and clear screen (CSI 2J). Other escape
// sequences are ignored. Rows never scroll off.
func (v *VirtualTerminal) Screen() (rows []string, cursorRow, cursorCol int) {
	v.mu.Lock()
	data := v.buf.String()
	v.mu.Unlock()

	s := &screen{lines: [][]rune{nil}}
	s.feed(data)
	rows = make([]string, len(s.lines))
	for i, l := range s.lines {
		rows[i] = strings.TrimRight(string(l), " ")
	}
	return rows, s.row, s.col
}

// Line returns the visible text of the row holding the cursor.
func (v *VirtualTerminal) Line() string {
	rows, r, _ := v.Screen()
	return rows[r]
}

type screen struct {
	lines    [][]rune
	row, col int
}

func (s *screen) feed(data string) {
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '\r':
			s.col = 0
			i++
		case c == '\n':
			s.row++
			if s.row == len(s.lines) {
				s.lines = append(s.lines, nil)
			}
			i++
		case c == '\b':
			if s.col > 0 {
				s.col--
			}
			i++
		case c == 0x1b:
			i += s.escape(data[i:])
		case c < 0x20:
			i++
		default:
			r, size := utf8.DecodeRuneInString(data[i:])
			s.put(r)
			i += size
		}
	}
}

func (s *screen) put(r rune) {
	line := s.lines[s.row]
	for len(line) <= s.col {
		line = append(line, ' ')
	}
	line[s.col] = r
	s.lines[s.row] = line
	s.col++
}

// escape applies one escape sequence at the start of seq and returns its length.
func (s *screen) escape(seq string) int {
	if len(seq) < 2 || seq[1] != '[' {
		return min(len(seq), 2)
	}
	end := 2
	for end < len(seq) && (seq[end] < 0x40 || seq[end] > 0x7e) {
		end++
	}
	if end == len(seq) {
		return len(seq)
	}
	params, final := seq[2:end], seq[end]
	n := 1
	if v, err := strconv.Atoi(params); err == nil && v > 0 {
		n = v
	}
	line := s.lines[s.row]
	switch final {
	case 'K':
		switch params {
		case "", "0":
			if s.col < len(line) {
				s.lines[s.row] = line[:s.col]
			}
		case "2":
			s.lines[s.row] = nil
		}
	case 'C':
		s.col += n
	case 'D':
		s.col = max(0, s.col-n)
	case 'J':
		if params == "2" {
			s.lines = [][]rune{nil}
			s.row, s.col = 0, 0
		}
	case 'H':
		if params == "" {
			s.col = 0
			s.row = 0
		}
	}
	return end + 1
}
