package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/internal/config"
	"github.com/courtsec/courtsec/internal/identity"
)

func newTokenCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage signed bearer tokens",
	}

	issue := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Sign a bearer token for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			tok, err := identity.NewTokens(cfg.JWTSecret.Value(), cfg.JWTIssuer).Issue(args[0], email, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)

			return nil
		},
	}
	issue.Flags().StringVar(&email, "email", "", "Email claim")
	issue.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")

	cmd.AddCommand(issue)

	return cmd
}
