package trends

import (
	"sort"
	"strings"
)

// majorPlatforms get a small diversity bonus during scoring.
var majorPlatforms = map[string]struct{}{
	"weibo":    {},
	"baidu":    {},
	"toutiao":  {},
	"zhihu":    {},
	"thepaper": {},
}

// Scored pairs an item with its relevance score for one account.
type Scored struct {
	Item
	Score float64
}

// MatchForAccount ranks hot items for an account: top ranks get a base score,
// every matched interest word adds a fixed bonus, and major platforms add a
// small tiebreaker. Returns the best count items, highest score first, rank
// ascending on ties.
func MatchForAccount(items []Item, matchWords []string, count int) []Scored {
	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		score := 0.0
		rank := item.Rank
		if rank <= 0 {
			rank = 50
		}
		if rank < 30 {
			score += float64(30-rank) * 0.5
		}
		titleLower := strings.ToLower(item.Title)
		for _, kw := range matchWords {
			if kw != "" && strings.Contains(titleLower, strings.ToLower(kw)) {
				score += 10
			}
		}
		if _, ok := majorPlatforms[item.Platform]; ok {
			score += 3
		}
		scored = append(scored, Scored{Item: item, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Rank < scored[j].Rank
	})
	if count > 0 && len(scored) > count {
		scored = scored[:count]
	}
	return scored
}
