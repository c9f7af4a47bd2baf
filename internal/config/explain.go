// ABOUTME: Human-readable rendering of effective configuration
// ABOUTME: Used by "config show" CLI subcommand to show merged settings

package config

import (
	"fmt"
	"strings"
)

// Explain renders the effective settings grouped by section.
func Explain(c Config) string {
	var b strings.Builder

	b.WriteString("=== Console ===\n")
	fmt.Fprintf(&b, "  PollInterval: %s\n", c.PollInterval)
	fmt.Fprintf(&b, "  PromptMode:   %s\n", c.PromptMode)
	fmt.Fprintf(&b, "  KeepPrompt:   %v\n", c.KeepPrompt)
	b.WriteString("\n")

	b.WriteString("=== Output ===\n")
	if c.Output.Capacity == 0 {
		b.WriteString("  Capacity:     unbounded\n")
	} else {
		fmt.Fprintf(&b, "  Capacity:     %d\n", c.Output.Capacity)
		fmt.Fprintf(&b, "  Overflow:     %s\n", c.Output.Overflow)
	}
	b.WriteString("\n")

	b.WriteString("=== History ===\n")
	if c.History.File == "" {
		b.WriteString("  File:         (not persisted)\n")
	} else {
		fmt.Fprintf(&b, "  File:         %s\n", c.History.File)
	}
	fmt.Fprintf(&b, "  Limit:        %d\n", c.History.Limit)
	b.WriteString("\n")

	b.WriteString("=== Log ===\n")
	fmt.Fprintf(&b, "  Level:        %s\n", c.Log.Level)
	if c.Log.File == "" {
		b.WriteString("  File:         (discarded)\n")
	} else {
		fmt.Fprintf(&b, "  File:         %s\n", c.Log.File)
	}
	if c.Log.Structured {
		b.WriteString("  Structured:   true\n")
	}

	return b.String()
}
