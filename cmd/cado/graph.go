package main

import (
	"github.com/aretw0/cado/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Export the dependency graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the cells, their dependencies and statuses.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showCode, _ := cmd.Flags().GetBool("code")
		return withApp(cmd, func(app *cli.App) error {
			return cli.PrintGraph(cmd.Context(), app, args[0], showCode, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("code", false, "Include the first line of each cell's code")
}
