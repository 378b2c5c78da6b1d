package main

import (
	"context"

	"github.com/aretw0/cado/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <id> [cell-id]",
	Short: "Run a cell, or every cell of the notebook",
	Long: `Runs the given cell after its stale ancestors and refreshes its descendants.
Without a cell id every cell runs in dependency order.
The exit code is non-zero when a cell ends in error.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cellID := ""
		if len(args) > 1 {
			cellID = args[1]
		}

		in := cli.WithInterrupt(context.Background())
		defer in.Stop()

		return in.Wrap(withApp(cmd, func(app *cli.App) error {
			return cli.RunNotebook(in, app, args[0], cellID, cmd.OutOrStdout())
		}))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
