// ABOUTME: Key dispatch for the Editor: Emacs bindings, history, completion, and paste.
// ABOUTME: Each handled key redraws the line when the editor is installed.

package lineedit

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/mauromedda/asyncconsole/pkg/tui/fuzzy"
	"github.com/mauromedda/asyncconsole/pkg/tui/key"
)

// HandleKey applies one key to the line.
func (e *Editor) HandleKey(k key.Key) Result {
	if e.search != nil {
		if done := e.handleSearchKey(k); done {
			e.Redisplay()
			return Result{}
		}
	}

	wasKill, wasYank := e.lastKill, e.lastYank
	e.lastKill, e.lastYank = false, false

	switch k.Type {
	case key.KeyEnter:
		return e.accept()
	case key.KeyRune:
		if k.Alt {
			e.handleMeta(k.Rune, wasKill, wasYank)
			break
		}
		e.edit()
		e.InsertText(string(k.Rune))
	case key.KeyPaste:
		e.paste(k.Text)
	case key.KeyBackspace:
		e.deleteBackward()
	case key.KeyDelete:
		e.deleteForward()
	case key.KeyLeft:
		e.SetPoint(e.point - 1)
	case key.KeyRight:
		e.SetPoint(e.point + 1)
	case key.KeyHome:
		e.point = 0
	case key.KeyEnd:
		e.point = len(e.text)
	case key.KeyUp:
		e.historyPrev()
	case key.KeyDown:
		e.historyNext()
	case key.KeyTab:
		e.complete()
	case key.KeyCtrlSpace:
		e.mark = e.point
	case key.KeyCtrl:
		if r, done := e.handleCtrl(k.Rune, wasKill); done {
			return r
		}
	default:
		return Result{}
	}
	e.Redisplay()
	return Result{}
}

func (e *Editor) handleCtrl(r rune, wasKill bool) (Result, bool) {
	switch r {
	case 'a':
		e.point = 0
	case 'e':
		e.point = len(e.text)
	case 'b':
		e.SetPoint(e.point - 1)
	case 'f':
		e.SetPoint(e.point + 1)
	case 'p':
		e.historyPrev()
	case 'n':
		e.historyNext()
	case 'k':
		e.kill(e.point, len(e.text), wasKill)
	case 'u':
		e.kill(0, e.point, wasKill)
	case 'w':
		e.kill(e.wordStart(e.point), e.point, wasKill)
	case 'y':
		e.yank()
	case 'x':
		e.point, e.mark = e.mark, e.point
	case 'z', '_':
		if s, ok := e.undo.pop(); ok {
			e.text = s.text
			e.point = s.point
			e.mark = min(e.mark, len(e.text))
		}
	case 'l':
		if e.installed {
			_, _ = e.term.Write([]byte(clearScreen))
			e.out.pending = ""
		}
	case 'r':
		e.startSearch()
	case 'c':
		return e.interrupt(), true
	case 'd':
		if len(e.text) == 0 {
			return Result{Kind: ResultEOF}, true
		}
		e.deleteForward()
	}
	return Result{}, false
}

func (e *Editor) handleMeta(r rune, wasKill, wasYank bool) {
	switch r {
	case 'b':
		e.point = e.wordStart(e.point)
	case 'f':
		e.point = e.wordEnd(e.point)
	case 'd':
		e.kill(e.point, e.wordEnd(e.point), wasKill)
	case 'y':
		if wasYank {
			e.yankPop()
		}
	}
}

// edit records an undo snapshot before a change.
func (e *Editor) edit() {
	e.undo.push(e.text, e.point)
}

func (e *Editor) accept() Result {
	line := norm.NFC.String(string(e.text))
	e.point = len(e.text)
	e.Redisplay()
	if e.installed {
		_, _ = e.term.Write([]byte("\r\n"))
		e.out.pending = ""
	}
	e.resetLine()
	return Result{Kind: ResultLine, Line: line}
}

func (e *Editor) interrupt() Result {
	if e.installed {
		e.point = len(e.text)
		e.Redisplay()
		_, _ = e.term.Write([]byte("^C\r\n"))
		e.out.pending = ""
	}
	e.resetLine()
	e.Redisplay()
	return Result{Kind: ResultInterrupt}
}

func (e *Editor) resetLine() {
	e.text = e.text[:0]
	e.point, e.mark, e.scroll = 0, 0, 0
	e.undo.reset()
	e.history.Reset()
}

func (e *Editor) paste(s string) {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if s == "" {
		return
	}
	e.edit()
	e.InsertText(s)
}

func (e *Editor) deleteBackward() {
	if e.point == 0 {
		return
	}
	e.edit()
	e.remove(e.point-1, e.point)
}

func (e *Editor) deleteForward() {
	if e.point >= len(e.text) {
		return
	}
	e.edit()
	e.remove(e.point, e.point+1)
}

// remove deletes text[from:to] and leaves point at from.
func (e *Editor) remove(from, to int) string {
	cut := string(e.text[from:to])
	e.text = append(e.text[:from], e.text[to:]...)
	e.point = from
	e.mark = min(e.mark, len(e.text))
	return cut
}

// kill removes text[from:to] into the kill ring. Consecutive kills are
// merged into one entry.
func (e *Editor) kill(from, to int, extend bool) {
	if from >= to {
		e.lastKill = extend
		return
	}
	e.edit()
	backward := to == e.point && from < e.point
	cut := e.remove(from, to)
	if extend {
		e.ring.extend(cut, backward)
	} else {
		e.ring.push(cut)
	}
	e.lastKill = true
}

func (e *Editor) yank() {
	s := e.ring.yank()
	if s == "" {
		return
	}
	e.edit()
	start := e.point
	e.InsertText(s)
	e.yanked = [2]int{start, e.point}
	e.lastYank = true
}

func (e *Editor) yankPop() {
	s := e.ring.yankPop()
	start, end := e.yanked[0], e.yanked[1]
	if end > len(e.text) || start > end {
		return
	}
	e.remove(start, end)
	e.InsertText(s)
	e.yanked = [2]int{start, e.point}
	e.lastYank = true
}

func (e *Editor) wordStart(p int) int {
	for p > 0 && !isWord(e.text[p-1]) {
		p--
	}
	for p > 0 && isWord(e.text[p-1]) {
		p--
	}
	return p
}

func (e *Editor) wordEnd(p int) int {
	for p < len(e.text) && !isWord(e.text[p]) {
		p++
	}
	for p < len(e.text) && isWord(e.text[p]) {
		p++
	}
	return p
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (e *Editor) historyPrev() {
	if s, ok := e.history.Prev(string(e.text)); ok {
		e.text = []rune(s)
		e.point = len(e.text)
		e.mark = min(e.mark, len(e.text))
	}
}

func (e *Editor) historyNext() {
	if s, ok := e.history.Next(); ok {
		e.text = []rune(s)
		e.point = len(e.text)
		e.mark = min(e.mark, len(e.text))
	}
}

// complete replaces the word before point. Candidates starting with the
// word win over scattered matches. A single candidate is taken whole;
// several are narrowed to their common prefix, or listed above the line
// when that does not extend the word.
func (e *Editor) complete() {
	if e.completer == nil {
		return
	}
	start := e.point
	for start > 0 && !unicode.IsSpace(e.text[start-1]) {
		start--
	}
	word := string(e.text[start:e.point])
	candidates := e.completer.Complete(word)
	var prefixed []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			prefixed = append(prefixed, c)
		}
	}
	if len(prefixed) > 0 {
		candidates = prefixed
	}
	switch {
	case len(candidates) == 0:
		return
	case len(candidates) == 1:
		e.edit()
		e.remove(start, e.point)
		e.InsertText(candidates[0] + " ")
		return
	}
	if prefix := fuzzy.CommonPrefix(candidates); len(prefix) > len(word) {
		e.edit()
		e.remove(start, e.point)
		e.InsertText(prefix)
		return
	}
	e.listCandidates(candidates)
}

func (e *Editor) listCandidates(candidates []string) {
	if !e.installed {
		return
	}
	saved := e.point
	e.point = len(e.text)
	e.Redisplay()
	e.point = saved
	_, _ = e.term.Write([]byte("\r\n" + strings.Join(candidates, "  ") + "\r\n"))
	e.out.pending = ""
}
