package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"inkwell/internal/accounts"
	"inkwell/internal/services/textgen"
	"inkwell/internal/topics"
	"inkwell/internal/trends"
)

func newTopicsCommand(ctx *commandContext) *cobra.Command {
	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Topic incubation and candidate listing",
	}
	topicsCmd.AddCommand(newTopicsIncubateCommand(ctx))
	topicsCmd.AddCommand(newTopicsListCommand(ctx))
	return topicsCmd
}

func newTopicsIncubateCommand(ctx *commandContext) *cobra.Command {
	var accountID string
	var hotCount int
	var regularCount int

	cmd := &cobra.Command{
		Use:   "incubate",
		Short: "Generate scored topic candidates for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			profile, err := accounts.Find(cfg.Paths.AccountsDir, accountID)
			if err != nil {
				return fmt.Errorf("load account %q: %w", accountID, err)
			}
			records, err := ctx.openStore()
			if err != nil {
				return err
			}

			hot := topics.NewTrendSupply(trends.NewReader(cfg.Paths.TrendsDir), cfg.Incubator)
			var bank topics.BankSupply = topics.ProfileBankSupply{}
			if completer, err := textgen.NewClient(cfg.TextGen); err == nil {
				bank = topics.NewGeneratedBankSupply(completer)
			}

			counts := topics.Counts{Hot: cfg.Incubator.HotCount, Regular: cfg.Incubator.RegularCount}
			if hotCount >= 0 {
				counts.Hot = hotCount
			}
			if regularCount >= 0 {
				counts.Regular = regularCount
			}

			incubator := topics.NewIncubator(records, cfg.Incubator.SimilarityThreshold, nil)
			created, err := incubator.Incubate(cmd.Context(), profile, hot, bank, counts)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No new candidates (supplies empty or every title already open)")
				return nil
			}

			rows := make([][]string, 0, len(created))
			for _, c := range created {
				rows = append(rows, []string{
					c.ID,
					c.Category,
					c.Title,
					fmt.Sprintf("%.3f", c.Dedup.MaxSimilarity),
					boolMark(c.Dedup.Hit),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Category", "Title", "Similarity", "Dup?"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account id")
	cmd.Flags().IntVar(&hotCount, "hot", -1, "Hot candidate count (default from config)")
	cmd.Flags().IntVar(&regularCount, "regular", -1, "Regular candidate count (default from config)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newTopicsListCommand(ctx *commandContext) *cobra.Command {
	var accountID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent topic candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := ctx.openStore()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, limit)
			for _, c := range records.RecentTopics(2000) {
				if accountID != "" && c.AccountID != accountID {
					continue
				}
				rows = append(rows, []string{
					c.ID,
					c.AccountID,
					c.Category,
					c.Title,
					strconv.FormatFloat(c.Dedup.MaxSimilarity, 'f', 3, 64),
					boolMark(c.Dedup.Hit),
				})
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[len(rows)-limit:]
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No topic candidates recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Account", "Category", "Title", "Similarity", "Dup?"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Filter by account id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show")
	return cmd
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return ""
}
