package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/dispatch"
	"inkwell/internal/notifications"
	"inkwell/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Task queue management",
	}
	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueSweepCommand(ctx))
	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var accountID string
	var keyword string
	var topicID string
	var theme string
	var inlineCount int
	var push bool
	var webSearch bool
	var hotTitle string
	var hotURL string
	var hotSource string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Enqueue a generation task",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := ctx.openQueue()
			if err != nil {
				return err
			}
			task, err := tasks.Add(queue.Task{
				AccountID:   accountID,
				Keyword:     keyword,
				TopicID:     topicID,
				Theme:       theme,
				InlineCount: inlineCount,
				PushToDraft: push,
				DoWebSearch: webSearch,
				HotTitle:    hotTitle,
				HotURL:      hotURL,
				HotSource:   hotSource,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s (%s)\n", task.TaskID, task.Keyword)
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account id")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Chosen topic title")
	cmd.Flags().StringVar(&topicID, "topic", "", "Originating topic candidate id")
	cmd.Flags().StringVar(&theme, "theme", "", "Render theme")
	cmd.Flags().IntVar(&inlineCount, "inline", 0, "Inline image count (default from config)")
	cmd.Flags().BoolVar(&push, "push", false, "Push the finished article to the draft box")
	cmd.Flags().BoolVar(&webSearch, "web-search", false, "Enrich the prompt from the hot URL")
	cmd.Flags().StringVar(&hotTitle, "hot-title", "", "Hot topic headline")
	cmd.Flags().StringVar(&hotURL, "hot-url", "", "Hot topic URL")
	cmd.Flags().StringVar(&hotSource, "hot-source", "", "Hot topic source platform")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("keyword")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := ctx.openQueue()
			if err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, task := range tasks.List() {
				if statusFilter != "" && string(task.Status) != statusFilter {
					continue
				}
				rows = append(rows, []string{
					task.TaskID,
					task.AccountID,
					task.Keyword,
					string(task.Status),
					fmt.Sprintf("%d", task.NotifyCount),
					formatTime(task.CreatedAt),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Task", "Account", "Keyword", "Status", "Notified", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by status")
	return cmd
}

func newQueueSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one dispatcher sweep without the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tasks, err := ctx.openQueue()
			if err != nil {
				return err
			}
			d := dispatch.New(tasks, notifications.NewService(cfg.Notify), cfg.Dispatcher, nil)
			d.Sweep(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Sweep complete")
			return nil
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
