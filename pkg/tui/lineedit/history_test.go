// ABOUTME: Tests for History: dedupe, limit, navigation with a draft, search, and persistence.
// ABOUTME: File tests use t.TempDir.

package lineedit

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		add   []string
		want  []string
	}{
		{name: "keeps order", limit: 10, add: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "consecutive duplicate dropped", limit: 10, add: []string{"a", "a", "b", "a"}, want: []string{"a", "b", "a"}},
		{name: "blank ignored", limit: 10, add: []string{"", "  ", "x"}, want: []string{"x"}},
		{name: "limit evicts oldest", limit: 2, add: []string{"a", "b", "c"}, want: []string{"b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHistory(tt.limit)
			for _, a := range tt.add {
				h.Add(a)
			}
			if got := h.Entries(); !slices.Equal(got, tt.want) {
				t.Errorf("Entries() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistory_Navigation(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	if _, ok := h.Prev("x"); ok {
		t.Fatal("Prev on empty history should fail")
	}
	h.Add("first")
	h.Add("second")

	steps := []struct {
		prev bool
		want string
		ok   bool
	}{
		{prev: true, want: "second", ok: true},
		{prev: true, want: "first", ok: true},
		{prev: true, ok: false},
		{prev: false, want: "second", ok: true},
		{prev: false, want: "draft", ok: true},
		{prev: false, ok: false},
	}
	for i, st := range steps {
		var got string
		var ok bool
		if st.prev {
			got, ok = h.Prev("draft")
		} else {
			got, ok = h.Next()
		}
		if ok != st.ok || (ok && got != st.want) {
			t.Fatalf("step %d: got (%q, %v), want (%q, %v)", i, got, ok, st.want, st.ok)
		}
	}
}

func TestHistory_Search(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	for _, e := range []string{"git status", "ls", "git push"} {
		h.Add(e)
	}
	if i := h.Search("git", h.Len()); i != 2 {
		t.Errorf("Search newest = %d, want 2", i)
	}
	if i := h.Search("git", 2); i != 0 {
		t.Errorf("Search older = %d, want 0", i)
	}
	if i := h.Search("nope", h.Len()); i != -1 {
		t.Errorf("Search miss = %d, want -1", i)
	}
	if i := h.Search("", h.Len()); i != -1 {
		t.Errorf("Search empty = %d, want -1", i)
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "history")
	h := NewHistory(0)
	h.Add("cmd1")
	h.Add("cmd2")
	if err := h.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("history file stat = %v, %v", info, err)
	}

	h2 := NewHistory(1)
	if err := h2.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := h2.Entries(); !slices.Equal(got, []string{"cmd2"}) {
		t.Errorf("loaded entries = %q, want limit applied", got)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	if err := h.Load(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("Load(missing) = %v, want nil", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}
