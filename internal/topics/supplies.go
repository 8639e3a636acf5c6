package topics

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/accounts"
	"inkwell/internal/config"
	"inkwell/internal/services/textgen"
	"inkwell/internal/trends"
)

// TrendSupply sources hot candidates from the daily trend snapshots, scored
// against the account's interest words.
type TrendSupply struct {
	reader  *trends.Reader
	sources []string
	include []string
	exclude []string
}

// NewTrendSupply builds a hot supply over the configured trends directory.
func NewTrendSupply(reader *trends.Reader, cfg config.Incubator) *TrendSupply {
	return &TrendSupply{
		reader:  reader,
		sources: cfg.HotSources,
		include: cfg.FilterKeywords,
		exclude: cfg.ExcludeKeywords,
	}
}

// Hot implements HotSupply.
func (s *TrendSupply) Hot(ctx context.Context, profile *accounts.Profile, count int) ([]HotTopic, error) {
	items, err := s.reader.Load(ctx, "", s.sources)
	if err != nil {
		return nil, err
	}
	items = trends.Deduplicate(trends.Filter(items, s.include, s.exclude))
	scored := trends.MatchForAccount(items, profile.MatchWords(), count)
	out := make([]HotTopic, 0, len(scored))
	for _, item := range scored {
		out = append(out, HotTopic{
			Title:         item.Title,
			OriginalTitle: item.Title,
			Source:        item.Platform,
			URL:           item.URL,
			Rank:          item.Rank,
		})
	}
	return out, nil
}

// ProfileBankSupply serves evergreen titles straight from the account's
// configured topic bank.
type ProfileBankSupply struct{}

// Bank implements BankSupply.
func (ProfileBankSupply) Bank(_ context.Context, profile *accounts.Profile, count int) ([]string, error) {
	titles := profile.BankTitles()
	if count > 0 && len(titles) > count {
		titles = titles[:count]
	}
	return titles, nil
}

// GeneratedBankSupply asks the text model for fresh evergreen titles seeded
// by the account's bank material. A model failure falls back to the stored
// bank titles so incubation still produces candidates offline.
type GeneratedBankSupply struct {
	completer textgen.Completer
	fallback  ProfileBankSupply
}

// NewGeneratedBankSupply builds the model-backed bank supply.
func NewGeneratedBankSupply(completer textgen.Completer) *GeneratedBankSupply {
	return &GeneratedBankSupply{completer: completer}
}

// Bank implements BankSupply.
func (s *GeneratedBankSupply) Bank(ctx context.Context, profile *accounts.Profile, count int) ([]string, error) {
	if s.completer == nil || count <= 0 {
		return s.fallback.Bank(ctx, profile, count)
	}
	raw, err := s.completer.Complete(ctx, buildBankPrompt(profile, count))
	if err != nil {
		return s.fallback.Bank(ctx, profile, count)
	}
	titles := parseTitleLines(raw, count)
	if len(titles) == 0 {
		return s.fallback.Bank(ctx, profile, count)
	}
	return titles, nil
}

// buildBankPrompt seeds title generation with the account's bank atoms:
// audience problems, scenes, conflicts, and suggested actions.
func buildBankPrompt(profile *accounts.Profile, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你在为公众号「%s」策划选题。\n", profile.Name)
	if profile.Style.Domain != "" {
		fmt.Fprintf(&b, "领域：%s\n", profile.Style.Domain)
	}
	if profile.Style.Audience != "" {
		fmt.Fprintf(&b, "读者：%s\n", profile.Style.Audience)
	}
	for _, group := range profile.Bank {
		if group.Theme != "" {
			fmt.Fprintf(&b, "\n主题：%s\n", group.Theme)
		}
		writeAtoms(&b, "痛点", group.Problems)
		writeAtoms(&b, "场景", group.Scenes)
		writeAtoms(&b, "冲突", group.Conflicts)
		writeAtoms(&b, "行动", group.Actions)
	}
	fmt.Fprintf(&b, "\n请给出 %d 个文章标题，每行一个，不要编号，不要解释。", count)
	return b.String()
}

func writeAtoms(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s：%s\n", label, strings.Join(values, "；"))
}

// parseTitleLines extracts one title per output line, dropping list markers
// and anything too short to be a headline.
func parseTitleLines(raw string, limit int) []string {
	var titles []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.、-*） )")
		line = strings.Trim(line, "\"“”")
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 5 {
			continue
		}
		titles = append(titles, line)
		if limit > 0 && len(titles) >= limit {
			break
		}
	}
	return titles
}
