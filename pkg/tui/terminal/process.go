// ABOUTME: ProcessTerminal implements Terminal on a tty file pair using golang.org/x/term.
// ABOUTME: Defaults to stdin/stdout; raw mode is entered on the input side, size read from the output side.

package terminal

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ProcessTerminal is a real terminal backed by an input and output file.
type ProcessTerminal struct {
	in  *os.File
	out *os.File

	mu         sync.Mutex
	oldState   *term.State
	resizeFn   func(width, height int)
	stopResize func()
}

// NewProcessTerminal returns a ProcessTerminal on os.Stdin and os.Stdout.
func NewProcessTerminal() *ProcessTerminal {
	return NewFileTerminal(os.Stdin, os.Stdout)
}

// NewFileTerminal returns a ProcessTerminal reading keys from in and drawing
// to out. Both are usually the same tty (or a pty slave in tests).
func NewFileTerminal(in, out *os.File) *ProcessTerminal {
	return &ProcessTerminal{in: in, out: out}
}

// IsTerminal reports whether the input side is an interactive terminal.
func (t *ProcessTerminal) IsTerminal() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// Input returns the file keys are read from.
func (t *ProcessTerminal) Input() *os.File {
	return t.in
}

// EnterRawMode switches the input side to raw mode, saving the previous state.
// Calling it again while raw is a no-op.
func (t *ProcessTerminal) EnterRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

// ExitRawMode restores the terminal to its previous state.
func (t *ProcessTerminal) ExitRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(int(t.in.Fd()), t.oldState); err != nil {
		return fmt.Errorf("exiting raw mode: %w", err)
	}
	t.oldState = nil
	return nil
}

// Size returns the current terminal dimensions.
func (t *ProcessTerminal) Size() (width, height int, err error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return w, h, nil
}

// Write sends bytes to the output file.
func (t *ProcessTerminal) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to terminal: %w", err)
	}
	return n, nil
}

// OnResize registers a callback invoked when the terminal is resized.
// The platform listener is started on the first non-nil registration.
func (t *ProcessTerminal) OnResize(fn func(width, height int)) {
	t.mu.Lock()
	t.resizeFn = fn
	started := t.stopResize != nil
	t.mu.Unlock()

	if !started && fn != nil {
		stop := t.startResizeListener()
		t.mu.Lock()
		t.stopResize = stop
		t.mu.Unlock()
	}
}

// Close stops the resize listener and restores cooked mode.
func (t *ProcessTerminal) Close() error {
	t.mu.Lock()
	stop := t.stopResize
	t.stopResize = nil
	t.resizeFn = nil
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
	return t.ExitRawMode()
}

func (t *ProcessTerminal) resizeCallback() func(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resizeFn
}
