// ABOUTME: Tab completion hooks for the line editor.
// ABOUTME: FuzzyCompleter ranks a fixed word list with sahilm/fuzzy, prefix matches first.

package lineedit

import "github.com/mauromedda/asyncconsole/pkg/tui/fuzzy"

// Completer proposes replacements for the word under the cursor.
type Completer interface {
	Complete(word string) []string
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(word string) []string

// Complete calls f.
func (f CompleterFunc) Complete(word string) []string {
	return f(word)
}

// FuzzyCompleter returns a Completer over a fixed set of words.
func FuzzyCompleter(words []string) Completer {
	words = append([]string(nil), words...)
	return CompleterFunc(func(word string) []string {
		matches := fuzzy.Find(word, words)
		out := make([]string, len(matches))
		for i, m := range matches {
			out[i] = m.Str
		}
		return out
	})
}
