// Package trends reads daily hot-topic snapshots from per-day SQLite
// databases and ranks them for an account's interests.
//
// Each day's crawl lands in <trends_dir>/YYYY-MM-DD.db with a news_items
// table (title, platform_id, rank, url). When today's database is absent the
// reader falls back to the newest available one, so a late crawl never stalls
// topic incubation.
package trends

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// platformNames maps crawler platform ids to display names.
var platformNames = map[string]string{
	"toutiao":           "今日头条",
	"baidu":             "百度热搜",
	"weibo":             "微博",
	"zhihu":             "知乎",
	"bilibili-hot-search": "B站",
	"douyin":            "抖音",
	"thepaper":          "澎湃新闻",
	"wallstreetcn-hot":  "华尔街见闻",
	"cls-hot":           "财联社",
	"ifeng":             "凤凰网",
	"tieba":             "贴吧",
}

// Item is one crawled hot entry.
type Item struct {
	Title        string
	Platform     string
	PlatformName string
	Rank         int
	URL          string
}

// Reader loads hot items from the trends directory.
type Reader struct {
	dir string
}

// NewReader returns a reader over the given trends directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// LatestDate returns the newest available snapshot date (YYYY-MM-DD), or ""
// when the directory holds none.
func (r *Reader) LatestDate() string {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return ""
	}
	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".db"))
	}
	if len(dates) == 0 {
		return ""
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates[0]
}

// Load returns hot items for the given date, filtered to sources when the
// list is non-empty. An empty date means today, falling back to the latest
// snapshot; no snapshot at all yields an empty slice, not an error.
func (r *Reader) Load(ctx context.Context, date string, sources []string) ([]Item, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	path := filepath.Join(r.dir, date+".db")
	if _, err := os.Stat(path); err != nil {
		latest := r.LatestDate()
		if latest == "" {
			return nil, nil
		}
		path = filepath.Join(r.dir, latest+".db")
		if _, err := os.Stat(path); err != nil {
			return nil, nil
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trends db %s: %w", path, err)
	}
	defer db.Close()

	builder := sq.Select("title", "platform_id", "rank", "url").
		From("news_items").
		OrderBy("platform_id", "rank")
	if len(sources) > 0 {
		builder = builder.Where(sq.Eq{"platform_id": sources})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build trends query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var url sql.NullString
		if err := rows.Scan(&item.Title, &item.Platform, &item.Rank, &url); err != nil {
			return nil, fmt.Errorf("scan news item: %w", err)
		}
		item.URL = url.String
		item.PlatformName = platformNames[item.Platform]
		if item.PlatformName == "" {
			item.PlatformName = item.Platform
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Filter keeps items whose titles match any include keyword (when provided)
// and drops items matching any exclude keyword.
func Filter(items []Item, include, exclude []string) []Item {
	out := items
	if len(include) > 0 {
		filtered := make([]Item, 0, len(out))
		for _, item := range out {
			for _, kw := range include {
				if kw != "" && strings.Contains(item.Title, kw) {
					filtered = append(filtered, item)
					break
				}
			}
		}
		out = filtered
	}
	if len(exclude) > 0 {
		filtered := make([]Item, 0, len(out))
		for _, item := range out {
			hit := false
			for _, kw := range exclude {
				if kw != "" && strings.Contains(item.Title, kw) {
					hit = true
					break
				}
			}
			if !hit {
				filtered = append(filtered, item)
			}
		}
		out = filtered
	}
	return out
}

// Deduplicate drops exact-title repeats, keeping first occurrence order.
func Deduplicate(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, item)
	}
	return out
}
