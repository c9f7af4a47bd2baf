// ABOUTME: Thin wrapper over sahilm/fuzzy used to rank completion candidates.
// ABOUTME: Adds prefix-first ordering so an exact prefix always beats a scattered match.

package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Match is a single ranked candidate.
type Match struct {
	Str            string
	Index          int
	MatchedIndexes []int
	Score          int
}

// Find matches pattern against items and returns them best first. Items
// that start with pattern are ordered ahead of the rest, then by score.
// An empty pattern matches nothing.
func Find(pattern string, items []string) []Match {
	if pattern == "" {
		return nil
	}
	results := fuzzy.Find(pattern, items)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Str:            r.Str,
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
			Score:          r.Score,
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		pi := strings.HasPrefix(matches[i].Str, pattern)
		pj := strings.HasPrefix(matches[j].Str, pattern)
		if pi != pj {
			return pi
		}
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// CommonPrefix returns the longest prefix shared by every string in items.
func CommonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for !utf8.ValidString(prefix) {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix
}
