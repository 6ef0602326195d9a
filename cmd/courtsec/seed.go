package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/internal/seed"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample incidents into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := seed.New(a.incidents, a.coordinator, a.log).Run(ctx)
			if err != nil {
				return err
			}

			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has incidents; nothing seeded")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d incidents\n", n)

			return nil
		},
	}
}
