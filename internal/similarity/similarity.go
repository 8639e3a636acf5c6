package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// shingleSize is the character n-gram length used for comparison. Two works
// well for short CJK titles where single characters carry little signal.
const shingleSize = 2

// strippedPunct lists punctuation removed during normalization, covering both
// ASCII and the full-width forms common in Chinese titles.
const strippedPunct = "[]（）()【】《》<>“”\"‘’'：:，,。.!！？?；;—-_·"

// Normalize folds width variants, lowercases, and strips whitespace and
// punctuation so that cosmetic differences never affect the score.
func Normalize(text string) string {
	folded := width.Fold.String(text)
	folded = strings.ToLower(folded)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) {
			continue
		}
		if strings.ContainsRune(strippedPunct, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Shingles returns the set of overlapping character bigrams of the normalized
// text. Text at or below the shingle size yields the whole string as a single
// shingle; empty text yields an empty set.
func Shingles(text string) map[string]struct{} {
	normalized := Normalize(text)
	runes := []rune(normalized)
	set := make(map[string]struct{})
	if len(runes) == 0 {
		return set
	}
	if len(runes) <= shingleSize {
		set[normalized] = struct{}{}
		return set
	}
	for i := 0; i+shingleSize <= len(runes); i++ {
		set[string(runes[i:i+shingleSize])] = struct{}{}
	}
	return set
}

// Score computes the Jaccard index of the two titles' shingle sets.
// Returns 0 when either side normalizes to nothing.
func Score(a, b string) float64 {
	return scoreSets(Shingles(a), Shingles(b))
}

func scoreSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var intersection int
	for shingle := range small {
		if _, ok := large[shingle]; ok {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
