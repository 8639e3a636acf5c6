package topics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inkwell/internal/accounts"
	"inkwell/internal/store"
)

type stubHot struct {
	topics []HotTopic
	err    error
}

func (s stubHot) Hot(context.Context, *accounts.Profile, int) ([]HotTopic, error) {
	return s.topics, s.err
}

type stubBank struct {
	titles []string
}

func (s stubBank) Bank(_ context.Context, _ *accounts.Profile, count int) ([]string, error) {
	titles := s.titles
	if len(titles) > count {
		titles = titles[:count]
	}
	return titles, nil
}

func newTestIncubator(t *testing.T) (*Incubator, *store.Store) {
	t.Helper()
	st, err := store.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	return NewIncubator(st, 0.82, nil), st
}

func manyBankTitles(n int) []string {
	titles := make([]string, n)
	for i := range titles {
		titles[i] = fmt.Sprintf("长期选题库第%d条完全不同的标题", i)
	}
	return titles
}

func TestIncubateBankFillsHotShortfall(t *testing.T) {
	inc, _ := newTestIncubator(t)
	profile := &accounts.Profile{AccountID: "acct"}
	hot := stubHot{topics: []HotTopic{
		{Title: "热点一：某地暴雪预警", Source: "weibo"},
		{Title: "热点二：睡眠研究新发现", Source: "zhihu"},
	}}
	bank := stubBank{titles: manyBankTitles(20)}

	created, err := inc.Incubate(context.Background(), profile, hot, bank, Counts{Hot: 5, Regular: 7})
	if err != nil {
		t.Fatalf("Incubate: %v", err)
	}
	var hotCount, regularCount int
	for _, c := range created {
		switch c.Category {
		case "hot":
			hotCount++
		case "regular":
			regularCount++
		default:
			t.Errorf("unexpected category %q", c.Category)
		}
	}
	if hotCount != 2 {
		t.Errorf("hot candidates = %d, want 2", hotCount)
	}
	if regularCount != 10 {
		t.Errorf("regular candidates = %d, want 10 (bank fills shortfall)", regularCount)
	}
	if len(created) > 12 {
		t.Errorf("total candidates = %d, want at most 12", len(created))
	}
}

func TestIncubateHotSupplyFailureDegrades(t *testing.T) {
	inc, _ := newTestIncubator(t)
	profile := &accounts.Profile{AccountID: "acct"}
	created, err := inc.Incubate(context.Background(), profile,
		stubHot{err: errors.New("trend db unavailable")},
		stubBank{titles: manyBankTitles(12)},
		Counts{Hot: 5, Regular: 7})
	if err != nil {
		t.Fatalf("Incubate: %v", err)
	}
	if len(created) != 12 {
		t.Fatalf("expected full slate from bank, got %d", len(created))
	}
	for _, c := range created {
		if c.Category != "regular" {
			t.Errorf("unexpected category %q", c.Category)
		}
	}
}

func TestIncubateSkipsExactOpenDuplicates(t *testing.T) {
	inc, st := newTestIncubator(t)
	profile := &accounts.Profile{AccountID: "acct"}
	if _, err := st.AddTopicCandidate(store.TopicCandidate{AccountID: "acct", Title: "已有选题"}); err != nil {
		t.Fatalf("seed topic: %v", err)
	}

	created, err := inc.Incubate(context.Background(), profile,
		stubHot{topics: []HotTopic{{Title: "已有选题"}, {Title: "新选题"}}},
		stubBank{}, Counts{Hot: 2})
	if err != nil {
		t.Fatalf("Incubate: %v", err)
	}
	if len(created) != 1 || created[0].Title != "新选题" {
		t.Fatalf("expected only the new title, got %+v", created)
	}
}

func TestIncubateMarksNearDuplicates(t *testing.T) {
	inc, st := newTestIncubator(t)
	profile := &accounts.Profile{AccountID: "acct"}
	published := store.PublishedRecord{AccountID: "acct", Title: "别再被碎片化信息裹挟你的注意力的三个明显信号与应对"}
	saved, err := st.AddPublished(published)
	if err != nil {
		t.Fatalf("seed published: %v", err)
	}

	created, err := inc.Incubate(context.Background(), profile,
		stubHot{topics: []HotTopic{{Title: "别再被碎片化信息裹挟你的注意力的3个明显信号与应对"}}},
		stubBank{}, Counts{Hot: 1})
	if err != nil {
		t.Fatalf("Incubate: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected candidate stored despite hit, got %d", len(created))
	}
	dedup := created[0].Dedup
	if !dedup.Hit {
		t.Errorf("expected dedup hit, got %+v", dedup)
	}
	if dedup.NearestID != saved.ID || dedup.NearestKind != "published" {
		t.Errorf("unexpected nearest: %+v", dedup)
	}
	if dedup.MaxSimilarity < 0.82 {
		t.Errorf("MaxSimilarity = %v", dedup.MaxSimilarity)
	}
}

func TestIncubatePublishedWinsTies(t *testing.T) {
	inc, st := newTestIncubator(t)
	profile := &accounts.Profile{AccountID: "acct"}
	pub, err := st.AddPublished(store.PublishedRecord{AccountID: "acct", Title: "同一个标题"})
	if err != nil {
		t.Fatalf("seed published: %v", err)
	}
	if _, err := st.AddDraft(store.DraftRecord{AccountID: "acct", TopicTitle: "同一个标题"}); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	created, err := inc.Incubate(context.Background(), profile,
		stubHot{topics: []HotTopic{{Title: "同一个标题！"}}},
		stubBank{}, Counts{Hot: 1})
	if err != nil {
		t.Fatalf("Incubate: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected one candidate, got %d", len(created))
	}
	if created[0].Dedup.NearestKind != "published" || created[0].Dedup.NearestID != pub.ID {
		t.Fatalf("published pool should win ties, got %+v", created[0].Dedup)
	}
}

func TestIncubatePersistsOpenCandidateState(t *testing.T) {
	inc, st := newTestIncubator(t)
	profile := &accounts.Profile{AccountID: "acct"}

	_, err := inc.Incubate(context.Background(), profile,
		stubHot{topics: []HotTopic{{Title: "第一次跑出的选题标题"}}},
		stubBank{}, Counts{Hot: 1})
	if err != nil {
		t.Fatalf("Incubate: %v", err)
	}

	var state incubationState
	ok, err := st.ReadState(stateFileName, &state)
	if err != nil || !ok {
		t.Fatalf("state snapshot not written: ok=%v err=%v", ok, err)
	}
	if len(state.OpenTitles["acct"]) == 0 {
		t.Fatal("state snapshot missing the open title")
	}

	// A rerun against a fresh topic log but the same state file must still
	// treat the title as open.
	created, err := inc.Incubate(context.Background(), profile,
		stubHot{topics: []HotTopic{{Title: "第一次跑出的选题标题"}}},
		stubBank{}, Counts{Hot: 1})
	if err != nil {
		t.Fatalf("second Incubate: %v", err)
	}
	for _, c := range created {
		if c.Title == "第一次跑出的选题标题" {
			t.Fatal("open title from the state file was re-accepted")
		}
	}
}
