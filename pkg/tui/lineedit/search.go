// ABOUTME: Incremental reverse history search bound to Ctrl+R.
// ABOUTME: Typing narrows the match, Ctrl+R steps to older matches, Escape or Ctrl+G restores the line.

package lineedit

import "github.com/mauromedda/asyncconsole/pkg/tui/key"

type searchState struct {
	query   []rune
	match   int // index into history, -1 when nothing matches
	orig    []rune
	origPos int
}

func (e *Editor) startSearch() {
	e.search = &searchState{
		match:   -1,
		orig:    append([]rune(nil), e.text...),
		origPos: e.point,
	}
}

// handleSearchKey consumes k while searching. It returns false when the
// search ended and k must still be handled as an ordinary key.
func (e *Editor) handleSearchKey(k key.Key) bool {
	s := e.search
	switch {
	case k.Type == key.KeyRune && !k.Alt:
		s.query = append(s.query, k.Rune)
		s.match = e.history.Search(string(s.query), e.history.Len())
	case k.Type == key.KeyBackspace:
		if len(s.query) > 0 {
			s.query = s.query[:len(s.query)-1]
			s.match = e.history.Search(string(s.query), e.history.Len())
		}
	case k.Is('r'):
		from := e.history.Len()
		if s.match >= 0 {
			from = s.match
		}
		if m := e.history.Search(string(s.query), from); m >= 0 {
			s.match = m
		}
	case k.Type == key.KeyEscape, k.Is('g'):
		e.text = s.orig
		e.point = s.origPos
		e.search = nil
	default:
		e.endSearch()
		return k.Type == key.KeyEnter
	}
	return true
}

// endSearch loads the current match into the buffer.
func (e *Editor) endSearch() {
	s := e.search
	e.search = nil
	if s.match < 0 {
		return
	}
	e.edit()
	e.text = []rune(e.history.At(s.match))
	e.point = len(e.text)
	e.mark = min(e.mark, len(e.text))
}

// view returns what the line shows while searching.
func (s *searchState) view(h *History) (lead string, text []rune) {
	lead = "(reverse-i-search)`" + string(s.query) + "': "
	if s.match >= 0 {
		text = []rune(h.At(s.match))
	}
	return lead, text
}
