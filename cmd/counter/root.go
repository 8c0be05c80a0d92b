package main

import (
	"os"

	"github.com/spf13/cobra"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "counter",
	Short: "A counter that can be incremented, decremented, reset and incremented by an amount.",
	Long: `counter hosts counter sessions over HTTP (serve) or runs a single ` +
		`counter in the terminal (repl). Configuration is read from COUNTER_ ` +
		`prefixed environment variables and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")
	rootCmd.AddCommand(serveCmd, replCmd)
}

// Execute runs the command selected on the command line and exits non-zero
// when it fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
