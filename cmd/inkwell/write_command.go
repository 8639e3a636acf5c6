package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/queue"
)

func newWriteCommand(ctx *commandContext) *cobra.Command {
	var taskID string
	var accountID string
	var keyword string
	var push bool

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Run the generation pipeline for a task",
		Long: "Runs one task through the full pipeline: article text, cover and inline\n" +
			"images, upload, rendering, and an optional draft push. Pass --task for a\n" +
			"queued task, or --account and --keyword to enqueue and run immediately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID == "" && (accountID == "" || keyword == "") {
				return fmt.Errorf("either --task or both --account and --keyword are required")
			}
			orchestrator, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			if taskID == "" {
				tasks, err := ctx.openQueue()
				if err != nil {
					return err
				}
				task, err := tasks.Add(queue.Task{AccountID: accountID, Keyword: keyword, PushToDraft: push})
				if err != nil {
					return err
				}
				taskID = task.TaskID
			}

			result, err := orchestrator.Execute(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:    %s\n", result.Article.Title)
			fmt.Fprintf(out, "Output:   %s\n", result.OutputDir)
			fmt.Fprintf(out, "Preview:  %s\n", result.PreviewURL)
			if len(result.Degraded) > 0 {
				fmt.Fprintln(out, "Degradations:")
				for _, d := range result.Degraded {
					fmt.Fprintf(out, "  - %s\n", d)
				}
			}
			switch {
			case result.Publish.Success:
				fmt.Fprintln(out, "Draft pushed to the publish target")
			case result.Publish.Message != "":
				fmt.Fprintf(out, "Publish: %s\n", result.Publish.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&taskID, "task", "t", "", "Queued task id")
	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account id (with --keyword)")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Topic title (with --account)")
	cmd.Flags().BoolVar(&push, "push", false, "Push the finished article to the draft box")
	return cmd
}
