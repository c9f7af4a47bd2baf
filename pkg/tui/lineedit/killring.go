// ABOUTME: Emacs-style kill ring for cut and yank on the edit line.
// ABOUTME: Consecutive kills extend the newest entry; yank-pop cycles toward older entries.

package lineedit

const killRingSize = 32

// killRing is a fixed-size circular buffer of killed text.
type killRing struct {
	entries []string
	pos     int
	yankIdx int
}

func newKillRing() *killRing {
	return &killRing{entries: make([]string, 0, killRingSize)}
}

// push records text as a new entry.
func (kr *killRing) push(text string) {
	if len(kr.entries) < killRingSize {
		kr.entries = append(kr.entries, text)
	} else {
		kr.entries[kr.pos] = text
	}
	kr.pos = (kr.pos + 1) % killRingSize
	kr.yankIdx = kr.pos
}

// extend merges text into the newest entry, in front of it when backward
// is set. With an empty ring it behaves like push.
func (kr *killRing) extend(text string, backward bool) {
	if len(kr.entries) == 0 {
		kr.push(text)
		return
	}
	idx := kr.newest()
	if backward {
		kr.entries[idx] = text + kr.entries[idx]
	} else {
		kr.entries[idx] += text
	}
}

// yank returns the newest entry, or "" when the ring is empty.
func (kr *killRing) yank() string {
	if len(kr.entries) == 0 {
		return ""
	}
	kr.yankIdx = kr.newest()
	return kr.entries[kr.yankIdx]
}

// yankPop steps to the next older entry. Only meaningful after yank.
func (kr *killRing) yankPop() string {
	if len(kr.entries) == 0 {
		return ""
	}
	kr.yankIdx = (kr.yankIdx - 1 + len(kr.entries)) % len(kr.entries)
	return kr.entries[kr.yankIdx]
}

func (kr *killRing) newest() int {
	return (kr.pos - 1 + len(kr.entries)) % len(kr.entries)
}
