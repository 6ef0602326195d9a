package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/internal/legacy"
)

func newImportCmd() *cobra.Command {
	var (
		path string
		opts legacy.Options
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import incidents from a legacy SQLite export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return errors.New("--sqlite is required")
			}

			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := legacy.NewImporter(a.incidents, a.coordinator, a.log).Run(ctx, path, opts)
			if report != nil {
				report.Print(cmd.OutOrStdout(), err)
			}

			return err
		},
	}
	cmd.Flags().StringVar(&path, "sqlite", "", "Path to the legacy SQLite export")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Read and convert without writing")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0, "Incidents per transaction (default 100)")
	cmd.Flags().StringVar(&opts.Actor, "actor", legacy.DefaultActor, "Identity recorded on imported audit rows")

	return cmd
}
