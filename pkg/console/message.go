// ABOUTME: Output messages and the policies that decide how they reach the terminal.
// ABOUTME: Text is written verbatim; a prompt message replaces the live prompt instead.

package console

import (
	"fmt"
	"strings"
)

// Kind distinguishes printed text from prompt changes.
type Kind int

const (
	KindText   Kind = iota // written to the terminal as-is
	KindPrompt             // adopted as the edit line's prompt, never written
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPrompt:
		return "prompt"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Message is one unit of queued output.
type Message struct {
	Kind Kind
	Text string
}

// PromptMode selects how a flush decides that queued output is a prompt.
type PromptMode int

const (
	// PromptTagged only treats KindPrompt messages as prompts.
	PromptTagged PromptMode = iota
	// PromptLegacy also treats the last queued text fragment as the new
	// prompt when it is non-empty and does not end in "\n".
	PromptLegacy
)

func (m PromptMode) String() string {
	if m == PromptLegacy {
		return "legacy"
	}
	return "tagged"
}

// ParsePromptMode parses "tagged" or "legacy".
func ParsePromptMode(s string) (PromptMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tagged":
		return PromptTagged, nil
	case "legacy":
		return PromptLegacy, nil
	}
	return 0, fmt.Errorf("unknown prompt mode %q", s)
}

// OverflowPolicy decides what a bounded OutputQueue does when full.
type OverflowPolicy int

const (
	DropNewest OverflowPolicy = iota // reject the incoming message
	DropOldest                       // evict the oldest queued message
	Block                            // wait until the worker makes room
)

func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "drop-newest"
	case DropOldest:
		return "drop-oldest"
	case Block:
		return "block"
	}
	return fmt.Sprintf("OverflowPolicy(%d)", int(p))
}

// ParseOverflowPolicy parses "drop-newest", "drop-oldest" or "block".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop-newest":
		return DropNewest, nil
	case "drop-oldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	}
	return 0, fmt.Errorf("unknown overflow policy %q", s)
}
