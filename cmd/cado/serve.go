package main

import (
	"context"

	"github.com/aretw0/cado/internal/cli"
	"github.com/aretw0/cado/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves notebooks over HTTP: JSON commands on /notebooks/{id}/commands,
Server-Sent Events on /notebooks/{id}/events and Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		if tui.IsTerminal() {
			tui.PrintBanner(cmd.ErrOrStderr())
		}

		in := cli.WithInterrupt(context.Background())
		defer in.Stop()

		return cli.Serve(in, options(cmd), port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
