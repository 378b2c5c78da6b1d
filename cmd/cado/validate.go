package main

import (
	"fmt"

	"github.com/aretw0/cado/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a notebook document for consistency",
	Long:  `Decodes a notebook document and reports duplicate output names, unknown inputs and dependency cycles.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := cli.ValidateFile(args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notebook %q is valid! ✅ (%d cells)\n", nb.Name, len(nb.Cells))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
