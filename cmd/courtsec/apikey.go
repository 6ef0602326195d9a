package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <actor>",
		Short: "Issue an API key for an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			key, err := a.apiKeys.CreateAPIKey(ctx, args[0])
			if err != nil {
				return err
			}

			// The key is shown once; only its hash is stored.
			fmt.Fprintln(cmd.OutOrStdout(), key)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <actor>",
		Short: "Revoke every API key of an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.apiKeys.RevokeAPIKeys(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "revoked %d keys\n", n)

			return nil
		},
	})

	return cmd
}
