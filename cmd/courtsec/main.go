// Command courtsec runs the courtroom security incident log service and its
// maintenance tasks.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "courtsec",
		Short:        "Courtroom security incident log",
		Version:      config.Version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("courtsec version {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newAPIKeyCmd())
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}

// newLogger returns a JSON logger at the given level. Unknown levels fall back
// to info; config validation rejects them before this point.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
