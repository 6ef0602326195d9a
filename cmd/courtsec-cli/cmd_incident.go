package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/courtsec/courtsec/client"
)

func newIncidentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "incident",
		Aliases: []string{"incidents"},
		Short:   "Manage security incidents",
	}
	cmd.AddCommand(incidentListCmd())
	cmd.AddCommand(incidentGetCmd())
	cmd.AddCommand(incidentCreateCmd())
	cmd.AddCommand(incidentUpdateCmd())
	cmd.AddCommand(incidentDeleteCmd())
	cmd.AddCommand(incidentHistoryCmd())
	return cmd
}

// incidentFlags are the editable incident fields shared by create and update.
type incidentFlags struct {
	date         string
	status       string
	kind         string
	narrative    string
	county       string
	division     string
	courthouse   string
	location     string
	docket       string
	caseName     string
	weapon       bool
	weaponType   string
	contraband   bool
	contraType   string
	suspectFirst string
	suspectLast  string
}

func (f *incidentFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.date, "date", "", "Incident date and time, RFC3339 (default now)")
	fs.StringVar(&f.kind, "type", "", "MedicalEmergency|PhysicalAltercation|VerbalThreat|ContrabandFound|Evacuation|Other")
	fs.StringVar(&f.narrative, "narrative", "", "What happened")
	fs.StringVar(&f.county, "county", "", "County")
	fs.StringVar(&f.division, "division", "", "Court division")
	fs.StringVar(&f.courthouse, "courthouse", "", "Courthouse name")
	fs.StringVar(&f.location, "location", "", "Location within the courthouse")
	fs.StringVar(&f.docket, "docket", "", "Related docket number")
	fs.StringVar(&f.caseName, "case-name", "", "Related case name")
	fs.BoolVar(&f.weapon, "weapon", false, "A weapon was involved")
	fs.StringVar(&f.weaponType, "weapon-type", "", "Weapon description")
	fs.BoolVar(&f.contraband, "contraband", false, "Contraband was seized")
	fs.StringVar(&f.contraType, "contraband-type", "", "Contraband description")
	fs.StringVar(&f.suspectFirst, "suspect-first", "", "Suspect first name")
	fs.StringVar(&f.suspectLast, "suspect-last", "", "Suspect last name")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be RFC3339: %w", err)
	}
	return t, nil
}

// applyUpdate copies the flags the user set onto req.
func (f *incidentFlags) applyUpdate(fs *pflag.FlagSet, req *client.UpdateIncidentRequest) error {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	if fs.Changed("date") {
		t, err := parseDate(f.date)
		if err != nil {
			return err
		}
		req.IncidentDate = &t
	}
	set("status", func() { req.Status = f.status })
	set("type", func() { req.Type = f.kind })
	set("narrative", func() { req.Narrative = f.narrative })
	set("county", func() { req.County = f.county })
	set("division", func() { req.Division = f.division })
	set("courthouse", func() { req.Courthouse = f.courthouse })
	set("location", func() { req.LocationWithinCourthouse = f.location })
	set("docket", func() { req.RelatedDocketNumber = optional(f.docket) })
	set("case-name", func() { req.CaseName = optional(f.caseName) })
	set("weapon", func() { req.WeaponInvolved = f.weapon })
	set("weapon-type", func() { req.WeaponType = optional(f.weaponType) })
	set("contraband", func() { req.ContrabandSeized = f.contraband })
	set("contraband-type", func() { req.ContrabandType = optional(f.contraType) })
	set("suspect-first", func() { req.SuspectFirstName = optional(f.suspectFirst) })
	set("suspect-last", func() { req.SuspectLastName = optional(f.suspectLast) })
	return nil
}

func printIncidents(incidents []client.Incident) {
	switch flagFmt {
	case "table":
		headers := []string{"ID", "DATE", "STATUS", "TYPE", "COURTHOUSE", "NARRATIVE"}
		var rows [][]string
		for _, i := range incidents {
			rows = append(rows, []string{
				i.ID, formatTime(i.IncidentDate), i.Status, i.Type, i.Courthouse, truncate(i.Narrative, 40),
			})
		}
		formatTable(headers, rows)
	case "quiet":
		for _, i := range incidents {
			fmt.Fprintln(stdout, i.ID)
		}
	default:
		formatJSON(incidents)
	}
}

func incidentListCmd() *cobra.Command {
	var opts client.IncidentListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List incidents",
		Run: func(cmd *cobra.Command, args []string) {
			if opts.Limit < 0 || opts.Offset < 0 {
				fmt.Fprintf(os.Stderr, "Error: --limit and --offset must be non-negative\n")
				os.Exit(1)
			}
			incidents, _, err := apiClient.Incidents.List(context.Background(), &opts)
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

func incidentGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get an incident with its attachments",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inc, err := apiClient.Incidents.Get(context.Background(), args[0])
			if err != nil {
				fatal("get incident", err)
			}
			output(inc, inc.ID)
		},
	}
}

func incidentCreateCmd() *cobra.Command {
	var (
		f        incidentFlags
		reporter struct{ first, last, email, title, employeeID string }
		fromFile string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report an incident",
		Run: func(cmd *cobra.Command, args []string) {
			req, err := buildCreateRequest(&f, reporter.first, reporter.last, reporter.email, reporter.title, reporter.employeeID)
			if err != nil {
				fatal("build request", err)
			}
			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					fatal("read file", err)
				}
				if err := json.Unmarshal(data, req); err != nil {
					fatal("parse file", err)
				}
			}
			inc, err := apiClient.Incidents.Create(context.Background(), req)
			if err != nil {
				fatal("create incident", err)
			}
			output(inc, inc.ID)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&reporter.first, "reporter-first", "", "Reporter first name")
	cmd.Flags().StringVar(&reporter.last, "reporter-last", "", "Reporter last name")
	cmd.Flags().StringVar(&reporter.email, "reporter-email", "", "Reporter email")
	cmd.Flags().StringVar(&reporter.title, "reporter-title", "", "Reporter job title")
	cmd.Flags().StringVar(&reporter.employeeID, "reporter-employee-id", "", "Reporter employee ID")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "JSON request body; overrides flags")
	return cmd
}

func buildCreateRequest(f *incidentFlags, first, last, email, title, employeeID string) (*client.CreateIncidentRequest, error) {
	date, err := parseDate(f.date)
	if err != nil {
		return nil, err
	}
	return &client.CreateIncidentRequest{
		IncidentDate:             date,
		ReporterFirstName:        first,
		ReporterLastName:         last,
		ReporterEmail:            email,
		ReporterJobTitle:         title,
		ReporterEmployeeID:       optional(employeeID),
		County:                   f.county,
		Division:                 f.division,
		Courthouse:               f.courthouse,
		LocationWithinCourthouse: f.location,
		RelatedDocketNumber:      optional(f.docket),
		CaseName:                 optional(f.caseName),
		SuspectFirstName:         optional(f.suspectFirst),
		SuspectLastName:          optional(f.suspectLast),
		Type:                     f.kind,
		WeaponInvolved:           f.weapon,
		WeaponType:               optional(f.weaponType),
		ContrabandSeized:         f.contraband,
		ContrabandType:           optional(f.contraType),
		Narrative:                f.narrative,
	}, nil
}

func incidentUpdateCmd() *cobra.Command {
	var f incidentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an incident; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cur, err := apiClient.Incidents.Get(ctx, args[0])
			if err != nil {
				fatal("get incident", err)
			}
			req := client.UpdateFrom(cur)
			if err := f.applyUpdate(cmd.Flags(), req); err != nil {
				fatal("build request", err)
			}
			inc, err := apiClient.Incidents.Update(ctx, args[0], req)
			if err != nil {
				fatal("update incident", err)
			}
			output(inc, inc.ID)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&f.status, "status", "", "Open|UnderReview|Escalated|Closed")
	return cmd
}

func incidentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an incident and its attachments (kept as deleted)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Incidents.Delete(context.Background(), args[0]); err != nil {
				fatal("delete incident", err)
			}
			fmt.Fprintln(stdout, "deleted")
		},
	}
}

func printAudit(records []client.AuditRecord) {
	if flagFmt != "table" {
		output(records, "")
		return
	}
	headers := []string{"TIMESTAMP", "TABLE", "KEY", "ACTION", "USER"}
	var rows [][]string
	for _, r := range records {
		rows = append(rows, []string{formatTime(r.Timestamp), r.TableName, r.PrimaryKey, r.Action, r.UserID})
	}
	formatTable(headers, rows)
}

func incidentHistoryCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show the audit trail of an incident",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			records, _, err := apiClient.Incidents.History(context.Background(), args[0], limit, offset)
			if err != nil {
				fatal("get history", err)
			}
			printAudit(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}
