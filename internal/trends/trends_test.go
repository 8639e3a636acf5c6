package trends

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func seedDB(t *testing.T, dir, date string, rows [][4]any) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, date+".db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE news_items (title TEXT, platform_id TEXT, rank INTEGER, url TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, row := range rows {
		if _, err := db.Exec(`INSERT INTO news_items (title, platform_id, rank, url) VALUES (?, ?, ?, ?)`,
			row[0], row[1], row[2], row[3]); err != nil {
			t.Fatalf("insert row: %v", err)
		}
	}
}

func TestLoadFallsBackToLatest(t *testing.T) {
	dir := t.TempDir()
	seedDB(t, dir, "2026-08-30", [][4]any{
		{"冬季睡眠质量调查引热议", "weibo", 1, "https://example.com/a"},
		{"某地暴雪预警", "baidu", 2, "https://example.com/b"},
	})
	seedDB(t, dir, "2026-08-29", [][4]any{
		{"旧闻", "weibo", 1, ""},
	})

	r := NewReader(dir)
	if got := r.LatestDate(); got != "2026-08-30" {
		t.Fatalf("LatestDate = %q", got)
	}

	items, err := r.Load(context.Background(), "2026-09-01", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected fallback to latest snapshot, got %d items", len(items))
	}
	if items[0].PlatformName != "百度热搜" {
		t.Errorf("platform name = %q", items[0].PlatformName)
	}
}

func TestLoadFiltersSources(t *testing.T) {
	dir := t.TempDir()
	seedDB(t, dir, "2026-08-30", [][4]any{
		{"微博热搜条目", "weibo", 1, ""},
		{"知乎热榜条目", "zhihu", 1, ""},
	})
	items, err := NewReader(dir).Load(context.Background(), "2026-08-30", []string{"zhihu"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].Platform != "zhihu" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	items, err := NewReader(t.TempDir()).Load(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if items != nil {
		t.Fatalf("expected nil for missing snapshots, got %v", items)
	}
}

func TestFilterAndDeduplicate(t *testing.T) {
	items := []Item{
		{Title: "冬季养生的五个习惯"},
		{Title: "股市大涨"},
		{Title: "冬季养生的五个习惯"},
		{Title: "冬季彩票中奖new"},
	}
	got := Filter(items, []string{"冬季"}, []string{"彩票"})
	if len(got) != 2 {
		t.Fatalf("Filter = %+v", got)
	}
	got = Deduplicate(got)
	if len(got) != 1 {
		t.Fatalf("Deduplicate = %+v", got)
	}
}

func TestMatchForAccount(t *testing.T) {
	items := []Item{
		{Title: "晚间新闻速览", Platform: "ifeng", Rank: 20},
		{Title: "睡眠研究新发现", Platform: "zhihu", Rank: 10},
		{Title: "头条置顶新闻", Platform: "toutiao", Rank: 1},
	}
	scored := MatchForAccount(items, []string{"睡眠"}, 2)
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
	if scored[0].Title != "睡眠研究新发现" {
		t.Fatalf("keyword match should rank first, got %q", scored[0].Title)
	}
	if scored[1].Title != "头条置顶新闻" {
		t.Fatalf("top rank should rank second, got %q", scored[1].Title)
	}
}
