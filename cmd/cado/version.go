package main

import (
	"fmt"

	"github.com/aretw0/cado"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cado",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cado version %s\n", cado.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
