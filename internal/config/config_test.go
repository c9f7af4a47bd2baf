// ABOUTME: Tests for config defaults, validation and console option mapping
// ABOUTME: Pure value tests; no filesystem access

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/mauromedda/asyncconsole/pkg/console"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero poll", mutate: func(c *Config) { c.PollInterval = "0s" }, wantErr: "poll_interval"},
		{name: "bad poll", mutate: func(c *Config) { c.PollInterval = "often" }, wantErr: "poll_interval"},
		{name: "bad prompt mode", mutate: func(c *Config) { c.PromptMode = "magic" }, wantErr: "prompt_mode"},
		{name: "negative capacity", mutate: func(c *Config) { c.Output.Capacity = -1 }, wantErr: "output.capacity"},
		{name: "bad overflow", mutate: func(c *Config) { c.Output.Overflow = "spill" }, wantErr: "output.overflow"},
		{name: "zero history", mutate: func(c *Config) { c.History.Limit = 0 }, wantErr: "history.limit"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "legacy accepted", mutate: func(c *Config) { c.PromptMode = "legacy" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestConsoleOptions(t *testing.T) {
	t.Parallel()

	c := DefaultConfig()
	c.PollInterval = "25ms"
	c.PromptMode = "legacy"
	c.KeepPrompt = false
	c.Output = OutputConfig{Capacity: 64, Overflow: "block"}

	opts, err := c.ConsoleOptions()
	if err != nil {
		t.Fatalf("ConsoleOptions() error: %v", err)
	}
	want := console.Options{
		PollInterval:   25 * time.Millisecond,
		PromptMode:     console.PromptLegacy,
		OutputCapacity: 64,
		OverflowPolicy: console.Block,
	}
	if opts != want {
		t.Errorf("ConsoleOptions() = %+v, want %+v", opts, want)
	}

	c.Output.Overflow = "nope"
	if _, err := c.ConsoleOptions(); err == nil {
		t.Error("expected error for invalid config")
	}
}
