// ABOUTME: CLI entry point for asyncconsole with terminal crash recovery
// ABOUTME: Wires the pslog logger into the context and dispatches cobra subcommands

package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	// Until "run" takes over the terminal, diagnostics may go to stderr.
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("asyncconsole command failed")
		return 1
	}
	return 0
}

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "asyncconsole",
		Short:         "Interactive console that prints from many goroutines without breaking the edit line",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ~/.asyncconsole/config.yaml merged with ./.asyncconsole/config.yaml)")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}
