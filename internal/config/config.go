// ABOUTME: Config holds the console settings and their defaults
// ABOUTME: Validate checks values against the console and log packages before use

package config

import (
	"fmt"
	"time"

	"github.com/mauromedda/asyncconsole/internal/log"
	"github.com/mauromedda/asyncconsole/pkg/console"
	"github.com/mauromedda/asyncconsole/pkg/tui/lineedit"
)

// Config is the effective configuration.
type Config struct {
	PollInterval string        `mapstructure:"poll_interval" yaml:"poll_interval"`
	PromptMode   string        `mapstructure:"prompt_mode" yaml:"prompt_mode"`
	KeepPrompt   bool          `mapstructure:"keep_prompt" yaml:"keep_prompt"`
	Output       OutputConfig  `mapstructure:"output" yaml:"output"`
	History      HistoryConfig `mapstructure:"history" yaml:"history"`
	Log          LogConfig     `mapstructure:"log" yaml:"log"`
}

// OutputConfig bounds the output queue. Capacity 0 is unbounded.
type OutputConfig struct {
	Capacity int    `mapstructure:"capacity" yaml:"capacity"`
	Overflow string `mapstructure:"overflow" yaml:"overflow"`
}

// HistoryConfig controls line history persistence. An empty File disables it.
type HistoryConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Limit int    `mapstructure:"limit" yaml:"limit"`
}

// LogConfig controls diagnostics. An empty File discards them.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	Structured bool   `mapstructure:"structured" yaml:"structured"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		PollInterval: console.DefaultPollInterval.String(),
		PromptMode:   console.PromptTagged.String(),
		KeepPrompt:   true,
		Output: OutputConfig{
			Capacity: 0,
			Overflow: console.DropNewest.String(),
		},
		History: HistoryConfig{
			File:  "${HOME}/" + globalDirName + "/history",
			Limit: lineedit.DefaultHistoryLimit,
		},
		Log: LogConfig{
			Level: log.LevelInfo,
		},
	}
}

// Poll returns PollInterval as a duration. Validate guarantees it parses.
func (c Config) Poll() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return console.DefaultPollInterval
	}
	return d
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if d, err := time.ParseDuration(c.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration, got %q", c.PollInterval)
	}
	if _, err := console.ParsePromptMode(c.PromptMode); err != nil {
		return fmt.Errorf("prompt_mode: %w", err)
	}
	if c.Output.Capacity < 0 {
		return fmt.Errorf("output.capacity must not be negative, got %d", c.Output.Capacity)
	}
	if _, err := console.ParseOverflowPolicy(c.Output.Overflow); err != nil {
		return fmt.Errorf("output.overflow: %w", err)
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	if !log.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

// ConsoleOptions maps the settings onto console.Options. The caller adds
// Input and Logger.
func (c Config) ConsoleOptions() (console.Options, error) {
	if err := c.Validate(); err != nil {
		return console.Options{}, err
	}
	mode, _ := console.ParsePromptMode(c.PromptMode)
	policy, _ := console.ParseOverflowPolicy(c.Output.Overflow)
	return console.Options{
		PollInterval:   c.Poll(),
		PromptMode:     mode,
		KeepPrompt:     c.KeepPrompt,
		OutputCapacity: c.Output.Capacity,
		OverflowPolicy: policy,
	}, nil
}
