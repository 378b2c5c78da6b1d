package main

import (
	"github.com/aretw0/cado/internal/cli"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a notebook with one empty cell and print its id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "Untitled"
		if len(args) > 0 {
			name = args[0]
		}
		return withApp(cmd, func(app *cli.App) error {
			return cli.CreateNotebook(cmd.Context(), app, name, cmd.OutOrStdout())
		})
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notebooks, most recently updated first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.ListNotebooks(cmd.Context(), app, cmd.OutOrStdout())
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a notebook with its cells, statuses and outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.ShowNotebook(cmd.Context(), app, args[0], cmd.OutOrStdout())
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a notebook",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return app.Manager.Delete(cmd.Context(), args[0])
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a notebook document (.cado, .json, .yaml) and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.ImportFile(cmd.Context(), app, args[0], cmd.OutOrStdout())
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a stored notebook to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		as, _ := cmd.Flags().GetString("as")
		return withApp(cmd, func(app *cli.App) error {
			return cli.ExportNotebook(cmd.Context(), app, args[0], as, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(newCmd, listCmd, showCmd, deleteCmd, importCmd, exportCmd)
	exportCmd.Flags().String("as", "json", "Output format: json or yaml")
}
