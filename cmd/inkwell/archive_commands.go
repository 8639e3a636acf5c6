package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inkwell/internal/store"
)

// newArchiveCommand records that a draft was confirmed live on the publish
// target. Publication itself happens out of band; this appends the permanent
// published record the incubator scores against.
func newArchiveCommand(ctx *commandContext) *cobra.Command {
	var accountID string
	var title string
	var url string
	var draftID string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Record a published article",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := ctx.openStore()
			if err != nil {
				return err
			}
			rec := store.PublishedRecord{
				AccountID: accountID,
				Title:     title,
			}
			if url != "" {
				rec.Target = map[string]string{"url": url}
			}
			if draftID != "" {
				rec.Source = map[string]string{"draft_id": draftID}
			}
			saved, err := records.AddPublished(rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s (%s)\n", saved.ID, saved.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account id")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Published article title")
	cmd.Flags().StringVar(&url, "url", "", "Live article URL")
	cmd.Flags().StringVar(&draftID, "draft", "", "Originating draft record id")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newInspireCommand(ctx *commandContext) *cobra.Command {
	var accountID string
	var tags []string

	cmd := &cobra.Command{
		Use:   "inspire <text>",
		Short: "Capture a free-form inspiration note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := ctx.openStore()
			if err != nil {
				return err
			}
			source := map[string]string{"channel": "cli"}
			if accountID != "" {
				source["account_id"] = accountID
			}
			saved, err := records.AddInspiration(strings.Join(args, " "), source, tags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved inspiration %s\n", saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account id")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tags for later retrieval")
	return cmd
}
