// ABOUTME: Editor is a single-row Emacs-style line editor drawn on a terminal.Terminal.
// ABOUTME: It is driven one key at a time and exposes buffer, cursor, mark and prompt for save/restore.

package lineedit

import (
	"fmt"
	"io"

	"github.com/mauromedda/asyncconsole/pkg/tui/terminal"
)

const (
	bracketedPasteOn  = "\x1b[?2004h"
	bracketedPasteOff = "\x1b[?2004l"
	eraseLine         = "\r\x1b[2K"
)

// ResultKind says what a key press completed, if anything.
type ResultKind int

const (
	ResultNone      ResultKind = iota // still editing
	ResultLine                        // Enter; Line holds the text
	ResultInterrupt                   // Ctrl+C; the buffer was discarded
	ResultEOF                         // Ctrl+D on an empty line
)

// Result is the outcome of HandleKey.
type Result struct {
	Kind ResultKind
	Line string
}

// Options configures an Editor.
type Options struct {
	// History receives navigation keys. A fresh History is used when nil.
	History *History
	// Completer handles Tab. Tab is ignored when nil.
	Completer Completer
}

// Editor holds one editable line. It is not safe for concurrent use: a
// single goroutine owns it together with the terminal it draws on.
type Editor struct {
	term      terminal.Terminal
	out       *outputWriter
	history   *History
	completer Completer

	prompt      string
	text        []rune
	point, mark int
	scroll      int
	installed   bool

	ring     *killRing
	undo     *undoStack
	lastKill bool
	yanked   [2]int // bounds of the last yank, for yank-pop
	lastYank bool
	search   *searchState

	redraw chan struct{}
}

// New creates an Editor drawing on t.
func New(t terminal.Terminal, opts Options) *Editor {
	h := opts.History
	if h == nil {
		h = NewHistory(0)
	}
	e := &Editor{
		term:      t,
		history:   h,
		completer: opts.Completer,
		ring:      newKillRing(),
		undo:      newUndoStack(undoDepth),
		redraw:    make(chan struct{}, 1),
	}
	e.out = &outputWriter{nl: terminal.NewNewlineWriter(t)}
	return e
}

// Install enters raw mode, enables bracketed paste and draws the line.
func (e *Editor) Install() error {
	if e.installed {
		return nil
	}
	if err := e.term.EnterRawMode(); err != nil {
		return fmt.Errorf("installing line editor: %w", err)
	}
	e.term.OnResize(func(int, int) {
		select {
		case e.redraw <- struct{}{}:
		default:
		}
	})
	if _, err := e.term.Write([]byte(bracketedPasteOn)); err != nil {
		_ = e.term.ExitRawMode()
		return fmt.Errorf("enabling bracketed paste: %w", err)
	}
	e.installed = true
	e.Redisplay()
	return nil
}

// Remove erases the edit line, keeps any partial output line, and leaves
// raw mode. The buffer itself is preserved.
func (e *Editor) Remove() error {
	if !e.installed {
		return nil
	}
	e.installed = false
	e.term.OnResize(nil)
	tail := eraseLine + e.out.pending
	if e.out.pending != "" {
		tail += "\r\n"
		e.out.pending = ""
	}
	_, werr := e.term.Write([]byte(tail + bracketedPasteOff))
	if err := e.term.ExitRawMode(); err != nil {
		return fmt.Errorf("removing line editor: %w", err)
	}
	if werr != nil {
		return fmt.Errorf("removing line editor: %w", werr)
	}
	return nil
}

// Installed reports whether Install has been called without Remove.
func (e *Editor) Installed() bool {
	return e.installed
}

// RedrawRequests delivers a value whenever the terminal was resized and
// the line should be redisplayed by its owner.
func (e *Editor) RedrawRequests() <-chan struct{} {
	return e.redraw
}

// History returns the history the editor navigates.
func (e *Editor) History() *History {
	return e.history
}

// Prompt returns the current prompt text.
func (e *Editor) Prompt() string {
	return e.prompt
}

// SetPrompt replaces the prompt. It is drawn on the next Redisplay.
func (e *Editor) SetPrompt(p string) {
	e.prompt = p
}

// Buffer returns the text being edited.
func (e *Editor) Buffer() string {
	return string(e.text)
}

// ReplaceBuffer replaces the text being edited. Point and mark are clamped
// to the new length.
func (e *Editor) ReplaceBuffer(s string) {
	e.text = []rune(s)
	e.point = min(e.point, len(e.text))
	e.mark = min(e.mark, len(e.text))
	e.scroll = min(e.scroll, e.point)
}

// InsertText inserts s at point and advances point past it.
func (e *Editor) InsertText(s string) {
	if s == "" {
		return
	}
	r := []rune(s)
	text := make([]rune, 0, len(e.text)+len(r))
	text = append(text, e.text[:e.point]...)
	text = append(text, r...)
	text = append(text, e.text[e.point:]...)
	e.text = text
	e.point += len(r)
}

// Point returns the cursor offset in runes.
func (e *Editor) Point() int {
	return e.point
}

// SetPoint moves the cursor, clamped to the buffer.
func (e *Editor) SetPoint(p int) {
	e.point = clamp(p, 0, len(e.text))
}

// Mark returns the mark offset in runes.
func (e *Editor) Mark() int {
	return e.mark
}

// SetMark sets the mark, clamped to the buffer.
func (e *Editor) SetMark(m int) {
	e.mark = clamp(m, 0, len(e.text))
}

// AddHistory records a completed line.
func (e *Editor) AddHistory(line string) {
	e.history.Add(line)
}

// Output returns the stream text should be printed to so it lands cleanly
// relative to the edit line.
func (e *Editor) Output() io.Writer {
	return e.out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// outputWriter sends text through newline translation and remembers the
// trailing partial line, which is redrawn in front of the prompt.
type outputWriter struct {
	nl      *terminal.NewlineWriter
	pending string
}

func (w *outputWriter) Write(p []byte) (int, error) {
	n, err := w.nl.Write(p)
	if err != nil {
		return n, err
	}
	s := string(p)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' || s[i] == '\r' {
			w.pending = s[i+1:]
			return n, nil
		}
	}
	w.pending += s
	return n, nil
}

func (w *outputWriter) Flush() error {
	return w.nl.Flush()
}
