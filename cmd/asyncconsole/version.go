// ABOUTME: "version" subcommand printing the build version, commit and date
// ABOUTME: Values are injected with -ldflags at release time

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "asyncconsole %s (%s) built %s\n", version, commit, date)
			return err
		},
	}
}
