package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/internal/config"
	"github.com/courtsec/courtsec/internal/db"
	"github.com/courtsec/courtsec/internal/db/migrations"
	"github.com/courtsec/courtsec/internal/dbpool"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dsn, err := config.LoadDatabaseURL()
			if err != nil {
				return err
			}

			log := newLogger(os.Getenv("LOG_LEVEL"))

			pool, err := dbpool.NewPool(ctx, dsn.Value(), 2)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			if !status {
				return db.RunMigrations(ctx, pool, log, migrations.FS)
			}

			states, err := db.MigrationStatus(ctx, pool, migrations.FS)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tFILE\tAPPLIED")
			for _, s := range states {
				fmt.Fprintf(w, "%d\t%s\t%t\n", s.Version, s.Path, s.Applied)
			}

			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print migration state instead of applying")

	return cmd
}
