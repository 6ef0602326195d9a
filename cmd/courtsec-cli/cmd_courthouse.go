package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/client"
)

func newCourthouseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "courthouse",
		Aliases: []string{"courthouses"},
		Short:   "Manage the courthouse directory",
	}
	cmd.AddCommand(courthouseListCmd())
	cmd.AddCommand(courthouseCreateCmd())
	cmd.AddCommand(courthouseDeleteCmd())
	return cmd
}

func courthouseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List courthouses",
		Run: func(cmd *cobra.Command, args []string) {
			list, err := apiClient.Courthouses.List(context.Background())
			if err != nil {
				fatal("list courthouses", err)
			}
			switch flagFmt {
			case "table":
				headers := []string{"ID", "COUNTY", "DIVISION", "NAME"}
				var rows [][]string
				for _, c := range list {
					rows = append(rows, []string{c.ID, c.County, c.Division, c.Name})
				}
				formatTable(headers, rows)
			case "quiet":
				for _, c := range list {
					fmt.Fprintln(stdout, c.ID)
				}
			default:
				formatJSON(list)
			}
		},
	}
}

func courthouseCreateCmd() *cobra.Command {
	var req client.CreateCourthouseRequest
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Add a courthouse",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req.Name = args[0]
			ch, err := apiClient.Courthouses.Create(context.Background(), &req)
			if err != nil {
				fatal("create courthouse", err)
			}
			output(ch, ch.ID)
		},
	}
	cmd.Flags().StringVar(&req.County, "county", "", "County")
	cmd.Flags().StringVar(&req.Division, "division", "", "Court division")
	return cmd
}

func courthouseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a courthouse",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Courthouses.Delete(context.Background(), args[0]); err != nil {
				fatal("delete courthouse", err)
			}
			fmt.Fprintln(stdout, "deleted")
		},
	}
}
