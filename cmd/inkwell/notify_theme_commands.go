package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"inkwell/internal/notifications"
	"inkwell/internal/render"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc := notifications.NewService(cfg.Notify)
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			if cfg.Notify.WebhookURL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No webhook configured; nothing was sent")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}

func newThemesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "themes",
		Short:       "List available render themes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			all := render.Themes()
			keys := make([]string, 0, len(all))
			for key := range all {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				name := key
				if key == render.DefaultTheme {
					name += " (default)"
				}
				rows = append(rows, []string{name, all[key]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Theme", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
