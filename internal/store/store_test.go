package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	return s
}

func TestNewIDShapeAndUniqueness(t *testing.T) {
	a := NewID("topic", "same content")
	b := NewID("topic", "same content")
	if !strings.HasPrefix(a, "topic_") {
		t.Fatalf("expected topic_ prefix, got %q", a)
	}
	if len(a) != len("topic_")+12 {
		t.Fatalf("expected 12 hex chars after prefix, got %q", a)
	}
	if a == b {
		t.Fatalf("expected differing ids for repeated calls, got %q twice", a)
	}
}

func TestAppendAndRecentTopics(t *testing.T) {
	s := newTestStore(t)
	titles := []string{"冬天喝水的三个误区", "情绪稳定不是忍耐", "早起一小时能改变什么"}
	for i, title := range titles {
		if _, err := s.AddTopicCandidate(TopicCandidate{AccountID: "acct-main", Title: title, Category: "health", Rank: i + 1}); err != nil {
			t.Fatalf("AddTopicCandidate: %v", err)
		}
	}

	got := s.RecentTopics(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Title != titles[1] || got[1].Title != titles[2] {
		t.Fatalf("expected most recent last, got %q then %q", got[0].Title, got[1].Title)
	}
	for _, rec := range got {
		if rec.ID == "" || rec.CreatedAt.IsZero() || rec.Date == "" {
			t.Fatalf("record missing assigned fields: %+v", rec)
		}
	}
}

func TestRecentSkipsCorruptLines(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddTopicCandidate(TopicCandidate{AccountID: "a", Title: "first"}); err != nil {
		t.Fatalf("AddTopicCandidate: %v", err)
	}
	path, err := s.Path(KindTopics)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("{\"id\": \"torn\n\nnot json at all\n"); err != nil {
		t.Fatalf("write corrupt lines: %v", err)
	}
	f.Close()
	if _, err := s.AddTopicCandidate(TopicCandidate{AccountID: "a", Title: "second"}); err != nil {
		t.Fatalf("AddTopicCandidate: %v", err)
	}

	got := s.RecentTopics(0)
	if len(got) != 2 {
		t.Fatalf("expected corrupt lines skipped, got %d records", len(got))
	}
	if got[0].Title != "first" || got[1].Title != "second" {
		t.Fatalf("unexpected surviving records: %+v", got)
	}
}

func TestRecentMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	if got := s.RecentDrafts(10); len(got) != 0 {
		t.Fatalf("expected empty result for missing log, got %d", len(got))
	}
}

func TestDraftDefaultsStatus(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.AddDraft(DraftRecord{AccountID: "a", TopicTitle: "被低估的午睡", Article: Article{Title: "被低估的午睡"}})
	if err != nil {
		t.Fatalf("AddDraft: %v", err)
	}
	if rec.Status != DraftStatusDraft {
		t.Fatalf("expected default status %q, got %q", DraftStatusDraft, rec.Status)
	}
}

func TestAtomicWriteReplacesWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := AtomicWrite(path, []byte("first")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	if err := AtomicWrite(path, []byte("second")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected replacement content, got %q", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, dir has %d entries", len(entries))
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	type doc struct {
		Open []string `json:"open"`
	}
	var missing doc
	ok, err := s.ReadState("open_topics.json", &missing)
	if err != nil {
		t.Fatalf("ReadState missing: %v", err)
	}
	if ok {
		t.Fatal("expected missing state to report not found")
	}
	if err := s.WriteState("open_topics.json", doc{Open: []string{"topic_a", "topic_b"}}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	var got doc
	ok, err = s.ReadState("open_topics.json", &got)
	if err != nil || !ok {
		t.Fatalf("ReadState: ok=%v err=%v", ok, err)
	}
	if len(got.Open) != 2 || got.Open[0] != "topic_a" {
		t.Fatalf("unexpected state document: %+v", got)
	}
}
