// ABOUTME: lipgloss styles for the demo's status lines and prompt
// ABOUTME: Colours degrade to plain text when the output has no colour support

package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	prompt lipgloss.Style
	worker lipgloss.Style
	info   lipgloss.Style
	warn   lipgloss.Style
}

func newStyles() styles {
	return styles{
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		worker: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		info:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}
