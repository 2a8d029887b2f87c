// Package root contains the root command for the application.
package root

import (
	"ledgerline/bankimport/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "bankimport",
		Short: "Import bank and card statement files into canonical transactions.",
		Long: `bankimport reads delimited-text (CSV) and OFX/QFX statement files,
classifies each record through configurable mapping dictionaries and stores
the resulting transactions, skipping records that duplicate what is already
stored.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Log = config.ConfigureLogging()
		},
	}
)

// Init wires the persistent flags of the root command.
func Init() {
	Cmd.PersistentFlags().String("log-level", "", "override the log level (debug, info, warn, error)")
}
