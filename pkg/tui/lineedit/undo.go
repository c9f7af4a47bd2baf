// ABOUTME: Bounded undo stack of edit-line snapshots.
// ABOUTME: Oldest snapshots are evicted once the depth limit is reached.

package lineedit

const undoDepth = 100

// snapshot is the buffer and cursor as they were before an edit.
type snapshot struct {
	text  []rune
	point int
}

type undoStack struct {
	states []snapshot
	limit  int
}

func newUndoStack(limit int) *undoStack {
	return &undoStack{limit: limit}
}

func (s *undoStack) push(text []rune, point int) {
	if len(s.states) >= s.limit {
		s.states = s.states[1:]
	}
	s.states = append(s.states, snapshot{text: append([]rune(nil), text...), point: point})
}

func (s *undoStack) pop() (snapshot, bool) {
	if len(s.states) == 0 {
		return snapshot{}, false
	}
	last := s.states[len(s.states)-1]
	s.states = s.states[:len(s.states)-1]
	return last, true
}

func (s *undoStack) reset() {
	s.states = s.states[:0]
}
