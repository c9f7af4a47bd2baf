// ABOUTME: Flushes queued output around the edit line without disturbing what the user is typing.
// ABOUTME: A suspend guard clears the line first and restores buffer, point and mark on every exit path.

package console

import (
	"io"
	"strings"
)

// suspension is the edit line as it was before a flush.
type suspension struct {
	editor      LineEditor
	buffer      string
	point, mark int
	prompt      string
	adopted     bool
	newPrompt   string
}

// suspend captures the edit line and erases it from the display.
func suspend(ed LineEditor) *suspension {
	s := &suspension{
		editor: ed,
		buffer: ed.Buffer(),
		point:  ed.Point(),
		mark:   ed.Mark(),
		prompt: ed.Prompt(),
	}
	ed.ReplaceBuffer("")
	ed.SetPoint(0)
	ed.SetMark(0)
	ed.SetPrompt("")
	ed.Redisplay()
	return s
}

// adopt makes text the prompt shown after the flush, superseding the
// saved one.
func (s *suspension) adopt(text string) {
	s.adopted = true
	s.newPrompt = text
}

// restore puts the edit line back, redraws it and flushes the stream.
func (s *suspension) restore() error {
	ed := s.editor
	if s.adopted {
		ed.SetPrompt(s.newPrompt)
	} else {
		ed.SetPrompt(s.prompt)
	}
	ed.InsertText(s.buffer)
	ed.SetPoint(s.point)
	ed.SetMark(s.mark)
	ed.Redisplay()
	if f, ok := ed.Output().(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// flush writes everything queued when it starts. Messages pushed while it
// runs wait for the next pass.
func (c *Console) flush() {
	s := suspend(c.editor)
	defer func() {
		if err := s.restore(); err != nil {
			c.log.Warn("console flush failed", "err", err)
		}
	}()

	w := c.editor.Output()
	if s.prompt != "" && !c.opts.KeepPrompt {
		// The old prompt stays on screen as context above the output.
		c.write(w, s.prompt)
		s.prompt = ""
	}

	for n := c.out.Len(); n > 0; n-- {
		m, remaining, ok := c.out.pop()
		if !ok {
			return
		}
		switch {
		case m.Kind == KindPrompt:
			s.adopt(m.Text)
		case c.opts.PromptMode == PromptLegacy && remaining == 0 && m.Text != "" && !strings.HasSuffix(m.Text, "\n"):
			s.adopt(m.Text)
		default:
			c.write(w, m.Text)
		}
	}
}

func (c *Console) write(w io.Writer, text string) {
	if text == "" {
		return
	}
	if _, err := io.WriteString(w, text); err != nil {
		c.log.Warn("console write failed", "err", err)
	}
}
