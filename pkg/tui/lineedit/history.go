// ABOUTME: Line history with up/down navigation, reverse search, and file persistence.
// ABOUTME: Suppresses consecutive duplicates, caps the entry count, and keeps the unsent draft while browsing.

package lineedit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHistoryLimit caps history when no explicit limit is given.
const DefaultHistoryLimit = 1000

// History stores completed lines oldest first.
type History struct {
	entries []string
	limit   int
	pos     int // -1 = editing the draft, 0 = newest entry
	draft   string
}

// NewHistory creates an empty History holding at most limit entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, pos: -1}
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Add appends entry unless it is blank or equal to the newest entry.
// Navigation is reset to the draft.
func (h *History) Add(entry string) {
	h.Reset()
	if strings.TrimSpace(entry) == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return
	}
	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// Reset returns navigation to the draft line.
func (h *History) Reset() {
	h.pos = -1
	h.draft = ""
}

// Prev moves one entry back in time. current is the buffer being edited;
// it is kept as the draft when leaving it. ok is false at the oldest entry.
func (h *History) Prev(current string) (string, bool) {
	if h.pos >= len(h.entries)-1 {
		return "", false
	}
	if h.pos == -1 {
		h.draft = current
	}
	h.pos++
	return h.entries[len(h.entries)-1-h.pos], true
}

// Next moves one entry forward in time; past the newest entry it returns
// the saved draft. ok is false when already on the draft.
func (h *History) Next() (string, bool) {
	if h.pos == -1 {
		return "", false
	}
	h.pos--
	if h.pos == -1 {
		return h.draft, true
	}
	return h.entries[len(h.entries)-1-h.pos], true
}

// Search returns the index of the newest entry older than before that
// contains query, or -1. Pass Len() as before to search from the newest.
func (h *History) Search(query string, before int) int {
	if query == "" {
		return -1
	}
	for i := min(before, len(h.entries)) - 1; i >= 0; i-- {
		if strings.Contains(h.entries[i], query) {
			return i
		}
	}
	return -1
}

// At returns the entry at index i (oldest first).
func (h *History) At(i int) string {
	return h.entries[i]
}

// Save writes the entries to path, one per line, creating the directory.
func (h *History) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}

// Load replaces the entries with those in path. A missing file is not an
// error. The limit is applied to the loaded entries.
func (h *History) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading history file: %w", err)
	}
	h.entries = h.entries[:0]
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			h.Add(line)
		}
	}
	h.Reset()
	return nil
}
