package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courtsec/courtsec/client"
)

func newAttachmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attachment",
		Short: "Manage incident attachments",
	}
	cmd.AddCommand(attachmentAddCmd())
	cmd.AddCommand(attachmentDeleteCmd())
	return cmd
}

func attachmentAddCmd() *cobra.Command {
	var req client.CreateAttachmentRequest
	cmd := &cobra.Command{
		Use:   "add <incident-id> <file-name>",
		Short: "Record a stored file against an incident",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			req.FileName = args[1]
			att, err := apiClient.Attachments.Add(context.Background(), args[0], &req)
			if err != nil {
				fatal("add attachment", err)
			}
			output(att, att.ID)
		},
	}
	cmd.Flags().StringVar(&req.StoragePath, "path", "", "Storage path of the uploaded file")
	cmd.Flags().StringVar(&req.ContentType, "content-type", "", "MIME type")
	cmd.Flags().Int64Var(&req.SizeInBytes, "size", 0, "File size in bytes")
	return cmd
}

func attachmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an attachment (kept as deleted)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Attachments.Delete(context.Background(), args[0]); err != nil {
				fatal("delete attachment", err)
			}
			fmt.Fprintln(stdout, "deleted")
		},
	}
}
