// ABOUTME: Tests for VisibleWidth, RuneWidth, Offsets, and the width cache.
// ABOUTME: Covers ASCII, wide runes, emoji, combining marks, and styled text.

package width

import (
	"slices"
	"testing"
)

func TestVisibleWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty string", input: "", want: 0},
		{name: "ascii", input: "hello", want: 5},
		{name: "ansi colored", input: "\x1b[31mred\x1b[0m", want: 3},
		{name: "cjk", input: "你好", want: 4},
		{name: "mixed", input: "> \x1b[1m!\x1b[0m", want: 3},
		{name: "emoji", input: "\U0001F44B", want: 2},
		{name: "combining accent", input: "e\u0301", want: 1},
		{name: "only ansi", input: "\x1b[31m\x1b[0m", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := VisibleWidth(tt.input); got != tt.want {
				t.Errorf("VisibleWidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRuneWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'你', 2},
		{'\t', 0},
		{0x7f, 0},
		{'\u0301', 0},
	}
	for _, tt := range tests {
		if got := RuneWidth(tt.r); got != tt.want {
			t.Errorf("RuneWidth(%U) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestOffsets(t *testing.T) {
	t.Parallel()

	got := Offsets([]rune("a你b"))
	want := []int{0, 1, 3, 4}
	if !slices.Equal(got, want) {
		t.Errorf("Offsets = %v, want %v", got, want)
	}
	if got := Offsets(nil); !slices.Equal(got, []int{0}) {
		t.Errorf("Offsets(nil) = %v, want [0]", got)
	}
}

func TestCache_EvictionOrder(t *testing.T) {
	t.Parallel()

	c := newCache(3)
	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3)

	// Touch "a" so "b" becomes least recently used.
	if v, ok := c.get("a"); !ok || v != 1 {
		t.Fatalf("get(a) = %d, %v; want 1, true", v, ok)
	}
	c.put("d", 4)

	if _, ok := c.get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	if v, ok := c.get("d"); !ok || v != 4 {
		t.Errorf("get(d) = %d, %v; want 4, true", v, ok)
	}
}

func BenchmarkVisibleWidth_Unicode(b *testing.B) {
	s := "你好 Hello \U0001F30D"
	for b.Loop() {
		VisibleWidth(s)
	}
}
