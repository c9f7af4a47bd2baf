// ABOUTME: The capability contract the console needs from a line-editing engine.
// ABOUTME: Only the worker goroutine calls these methods.

package console

import (
	"io"

	"github.com/mauromedda/asyncconsole/pkg/tui/key"
	"github.com/mauromedda/asyncconsole/pkg/tui/lineedit"
)

// LineEditor is an interactive line editor the console drives.
// lineedit.Editor is the stock implementation.
type LineEditor interface {
	// Install enters interactive mode (raw terminal, edit line drawn).
	Install() error
	// Remove leaves interactive mode and restores the terminal.
	Remove() error
	// HandleKey processes one input event and reports a completed line.
	HandleKey(k key.Key) lineedit.Result

	Prompt() string
	SetPrompt(p string)
	Buffer() string
	ReplaceBuffer(s string)
	InsertText(s string)
	Point() int
	SetPoint(p int)
	Mark() int
	SetMark(m int)

	// Redisplay redraws prompt and buffer.
	Redisplay()
	// AddHistory records a completed line.
	AddHistory(line string)
	// Output is the stream flushed text is written to.
	Output() io.Writer
}

// Redrawer is implemented by editors that want a redraw outside of key
// handling, for example after a terminal resize.
type Redrawer interface {
	RedrawRequests() <-chan struct{}
}

var _ LineEditor = (*lineedit.Editor)(nil)
var _ Redrawer = (*lineedit.Editor)(nil)
