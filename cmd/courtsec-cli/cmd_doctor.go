package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.OutOrStdout())
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(w io.Writer) error {
	var results []checkResult

	cfgPath, _, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Detail: cfgPath, Hint: "Run: courtsec-cli init",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true, Detail: cfgPath,
		})
	}

	url, apiKey := resolveSettings(flagURL, flagKey)

	results = append(results, checkResult{Name: "Server URL", Passed: true, Detail: url})

	if apiKey == "" {
		results = append(results, checkResult{
			Name: "API key", Hint: "Set --api-key, COURTSEC_API_KEY, or run courtsec-cli init",
		})
	} else {
		results = append(results, checkResult{Name: "API key", Passed: true, Detail: "configured"})
	}

	results = append(results, doctorChecks(url, apiKey)...)

	allPassed := true
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(w, "       hint: %s\n", r.Hint)
		}
	}

	if !allPassed {
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}

// doctorChecks probes liveness, readiness and authentication.
func doctorChecks(url, apiKey string) []checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := client.New(url, client.WithAPIKey(apiKey), client.WithTimeout(5*time.Second))

	health, err := c.Health(ctx)
	if err != nil {
		return []checkResult{{
			Name: "Server reachable", Detail: url,
			Hint: fmt.Sprintf("Is courtsec serve running? Error: %v", err),
		}}
	}
	results := []checkResult{{
		Name: "Server reachable", Passed: true,
		Detail: fmt.Sprintf("version %s, schema %d", health.Version, health.SchemaVersion),
	}}

	if ready, err := c.Ready(ctx); err != nil {
		results = append(results, checkResult{
			Name: "Server ready", Hint: fmt.Sprintf("Run: courtsec migrate. Error: %v", err),
		})
	} else {
		results = append(results, checkResult{Name: "Server ready", Passed: true, Detail: ready.Status})
	}

	if apiKey == "" {
		return results
	}
	if _, _, err := c.Audit.Query(ctx, &client.AuditQueryOptions{Limit: 1}); err != nil {
		hint := fmt.Sprintf("Error: %v", err)
		if client.IsUnauthorized(err) {
			hint = "The server rejected the credential. Issue a new one with: courtsec apikey create <actor>"
		}
		results = append(results, checkResult{Name: "Authentication", Hint: hint})
	} else {
		results = append(results, checkResult{Name: "Authentication", Passed: true, Detail: "valid"})
	}
	return results
}
