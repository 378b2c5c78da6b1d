package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cado/internal/cli"
	"github.com/aretw0/cado/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cado",
	Short: "cado is a notebook engine whose cells form a dependency graph",
	Long: `cado keeps notebooks of cells that name their output and the outputs they read.
Editing a cell expires everything downstream; running a cell runs its stale
ancestors first and refreshes its descendants.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("store", cli.StoreFile, "Local store backend: file or loam (ignored with --redis-url)")
	flags.String("dir", file.DefaultDir, "Directory holding notebook documents")
	flags.Bool("debug", false, "Enable debug logging on stderr")
	flags.String("redis-url", "", "Store notebooks in Redis (redis://host:port/db) instead of --dir")
	flags.String("evaluators", cli.DefaultEvaluatorsPath, "Evaluator definitions for interpreted languages")
	flags.Duration("timeout", 0, "Deadline for a single cell evaluation (0 disables)")
	flags.String("format", "json", "Document format of stored notebooks: json or yaml")
	flags.String("encryption-key", "", "Hex encoded AES-256 key sealing stored notebooks (or $"+cli.EncryptionKeyEnv+")")
	flags.StringSlice("redact", nil, "Regular expressions of output keys masked before storage")
	flags.Bool("strip-outputs", false, "Store code only, never outputs")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	store, _ := flags.GetString("store")
	dir, _ := flags.GetString("dir")
	debug, _ := flags.GetBool("debug")
	redisURL, _ := flags.GetString("redis-url")
	evaluators, _ := flags.GetString("evaluators")
	timeout, _ := flags.GetDuration("timeout")
	format, _ := flags.GetString("format")
	key, _ := flags.GetString("encryption-key")
	redact, _ := flags.GetStringSlice("redact")
	strip, _ := flags.GetBool("strip-outputs")

	return cli.Options{
		Store:          store,
		Dir:            dir,
		Debug:          debug,
		RedisURL:       redisURL,
		EvaluatorsPath: evaluators,
		Timeout:        timeout,
		Format:         format,
		EncryptionKey:  key,
		Redact:         redact,
		StripOutputs:   strip,
	}
}

// withApp builds the App for a command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(app *cli.App) error) error {
	app, err := cli.Setup(options(cmd))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
