// Command treestats replays the leaf estimation of an oblivious-tree model
// on its training pool and writes the per-tree statistics used to estimate
// document importance.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezoic/docimportance/pkg/log"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treestats",
		Short: "tree statistics for document importance",

		// SilenceUsage is an option to silence usage when an error occurs.
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			log.SetupLogger(level)
			return nil
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(newEvaluateCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.LogError(err, "treestats failed")
		os.Exit(1)
	}
}
