package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/client"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
	}
	cmd.AddCommand(adminHealthCmd())
	cmd.AddCommand(adminReadyCmd())
	cmd.AddCommand(adminIncidentsCmd())
	cmd.AddCommand(adminIncidentCmd())
	return cmd
}

func adminHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("health", err)
			}
			if flagFmt == "table" {
				formatTable(
					[]string{"CHECK", "VALUE"},
					[][]string{
						{"Status", resp.Status},
						{"Version", resp.Version},
						{"Database", resp.Database},
						{"Schema", fmt.Sprintf("%d", resp.SchemaVersion)},
						{"Uptime", (time.Duration(resp.UptimeSeconds) * time.Second).String()},
					},
				)
				return
			}
			output(resp, resp.Status)
		},
	}
}

func adminReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check whether the server accepts traffic",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Ready(context.Background())
			if err != nil {
				fatal("ready", err)
			}
			output(resp, resp.Status)
		},
	}
}

func adminIncidentsCmd() *cobra.Command {
	var opts client.IncidentListOptions
	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "List incidents including deleted ones",
		Run: func(cmd *cobra.Command, args []string) {
			incidents, _, err := apiClient.Admin.ListIncidents(context.Background(), &opts)
			if err != nil {
				fatal("list incidents", err)
			}
			printIncidents(incidents)
		},
	}
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Offset")
	return cmd
}

func adminIncidentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "incident <id>",
		Short: "Get an incident even if it is deleted",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inc, err := apiClient.Admin.GetIncident(context.Background(), args[0])
			if err != nil {
				fatal("get incident", err)
			}
			output(inc, inc.ID)
		},
	}
}

func newAuditCmd() *cobra.Command {
	var (
		opts  client.AuditQueryOptions
		since string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit log",
		Run: func(cmd *cobra.Command, args []string) {
			if since != "" {
				t, err := parseSince(since)
				if err != nil {
					fatal("parse --since", err)
				}
				opts.Since = &t
			}
			records, _, err := apiClient.Audit.Query(context.Background(), &opts)
			if err != nil {
				fatal("audit query", err)
			}
			printAudit(records)
		},
	}
	cmd.Flags().StringVar(&opts.TableName, "table", "", "Filter by table: Incidents|Attachments|Courthouses")
	cmd.Flags().StringVar(&opts.PrimaryKey, "key", "", "Filter by primary key")
	cmd.Flags().StringVar(&opts.Action, "action", "", "Filter by action: Insert|Update|SoftDelete|Delete")
	cmd.Flags().StringVar(&since, "since", "", "RFC3339 time or a duration such as 24h")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Offset")
	return cmd
}

// parseSince accepts an RFC3339 time or a duration counted back from now.
func parseSince(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().UTC().Add(-d), nil
	}
	return time.Parse(time.RFC3339, s)
}
