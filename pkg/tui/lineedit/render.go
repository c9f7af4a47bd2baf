// ABOUTME: Draws the edit line: partial output, prompt, and a horizontally scrolled window of the buffer.
// ABOUTME: The cursor is placed by column so wide runes and styled prompts line up.

package lineedit

import (
	"strconv"
	"strings"

	"github.com/mauromedda/asyncconsole/pkg/tui/width"
)

const (
	clearScreen  = "\x1b[H\x1b[2J"
	defaultWidth = 80
)

// Redisplay redraws the whole line. It does nothing while not installed.
func (e *Editor) Redisplay() {
	if !e.installed {
		return
	}
	_, _ = e.term.Write([]byte(e.render()))
}

func (e *Editor) render() string {
	cols, _, err := e.term.Size()
	if err != nil || cols <= 0 {
		cols = defaultWidth
	}

	lead := e.out.pending + e.prompt
	text, point := e.text, e.point
	if e.search != nil {
		var slead string
		slead, text = e.search.view(e.history)
		lead = e.out.pending + slead
		point = len(text)
	}
	leadW := width.VisibleWidth(lead)
	avail := max(cols-leadW-1, 1)

	offs := width.Offsets(text)
	scroll := min(e.scroll, point)
	for offs[point]-offs[scroll] > avail {
		scroll++
	}
	if e.search == nil {
		e.scroll = scroll
	}
	end := scroll
	for end < len(text) && offs[end+1]-offs[scroll] <= avail {
		end++
	}

	var b strings.Builder
	b.WriteString(eraseLine)
	b.WriteString(lead)
	b.WriteString(string(text[scroll:end]))
	b.WriteByte('\r')
	if col := leadW + offs[point] - offs[scroll]; col > 0 {
		b.WriteString("\x1b[")
		b.WriteString(strconv.Itoa(col))
		b.WriteByte('C')
	}
	return b.String()
}
