// ABOUTME: "run" subcommand: puts the terminal in raw mode and starts the interactive demo
// ABOUTME: Builds logger, history, line editor and console from the loaded configuration

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/mauromedda/asyncconsole/internal/config"
	"github.com/mauromedda/asyncconsole/internal/log"
	"github.com/mauromedda/asyncconsole/pkg/console"
	"github.com/mauromedda/asyncconsole/pkg/tui/lineedit"
	"github.com/mauromedda/asyncconsole/pkg/tui/terminal"
)

type runFlags struct {
	producers  int
	interval   time.Duration
	logFile    string
	logLevel   string
	promptMode string
	noHistory  bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive console demo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if flags.producers < 0 || flags.interval <= 0 {
				return fmt.Errorf("--producers must be >= 0 and --interval positive")
			}
			return runInteractive(cmd.Context(), cfg, flags)
		},
	}
	cmd.Flags().IntVar(&flags.producers, "producers", 2, "number of background status producers")
	cmd.Flags().DurationVar(&flags.interval, "interval", 3*time.Second, "base period between status lines")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "write diagnostics to this file (overrides log.file)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn or error (overrides log.level)")
	cmd.Flags().StringVar(&flags.promptMode, "prompt-mode", "", "tagged or legacy (overrides prompt_mode)")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not load or save line history")
	return cmd
}

// apply lets explicitly set flags override the file and environment.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if cmd.Flags().Changed("prompt-mode") {
		cfg.PromptMode = f.promptMode
	}
	if f.noHistory {
		cfg.History.File = ""
	}
}

func runInteractive(ctx context.Context, cfg config.Config, flags *runFlags) error {
	t := terminal.NewProcessTerminal()
	if !t.IsTerminal() {
		return errors.New("run needs an interactive terminal on stdin and stdout")
	}
	defer terminal.RestoreOnPanic(t)

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	log.RedirectStdlib(logger)
	ctx = pslog.ContextWithLogger(ctx, logger)

	hist := lineedit.NewHistory(cfg.History.Limit)
	if cfg.History.File != "" {
		if err := hist.Load(cfg.History.File); err != nil {
			logger.Warn("history load failed", "path", cfg.History.File, "err", err)
		}
		defer func() {
			if err := hist.Save(cfg.History.File); err != nil {
				logger.Warn("history save failed", "path", cfg.History.File, "err", err)
			}
		}()
	}

	opts, err := cfg.ConsoleOptions()
	if err != nil {
		return err
	}
	opts.Input = t.Input()
	opts.Logger = logger

	ed := lineedit.New(t, lineedit.Options{History: hist, Completer: lineedit.FuzzyCompleter(commandWords())})
	con := console.New(ed, opts)
	defer t.Close()
	if err := con.Start(); err != nil {
		return err
	}
	defer con.Close()

	d := newDemo(con, t, logger, flags.producers, flags.interval)
	return d.run(ctx)
}

// openLogger returns the diagnostics logger. Without a log file nothing is
// logged: the console owns stdout and stderr shares the same terminal.
func openLogger(lc config.LogConfig) (pslog.Logger, func(), error) {
	if lc.File == "" {
		return log.Discard(), func() {}, nil
	}
	f, err := log.OpenFile(lc.File)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.New(f, log.Options{Level: lc.Level, Structured: lc.Structured, NoColor: true})
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, func() { closeQuietly(f) }, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
