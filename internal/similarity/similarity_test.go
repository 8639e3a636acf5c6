package similarity

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Morning Pages", "morningpages"},
		{"strips whitespace", " 冬天 喝水 ", "冬天喝水"},
		{"strips cjk punctuation", "别慌：先看这【三】点。", "别慌先看这三点"},
		{"strips ascii punctuation", "why-not_now?!", "whynotnow"},
		{"folds full width", "ＡＢＣ１２３", "abc123"},
		{"empty", "", ""},
		{"only punctuation", "：，。！？", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShinglesShortText(t *testing.T) {
	set := Shingles("水")
	if len(set) != 1 {
		t.Fatalf("expected single whole-string shingle, got %d", len(set))
	}
	if _, ok := set["水"]; !ok {
		t.Fatalf("expected shingle %q in set", "水")
	}
	if len(Shingles("：，")) != 0 {
		t.Error("expected empty set for punctuation-only text")
	}
}

func TestScoreEdges(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 0},
		{"one empty", "冬天喝水", "", 0},
		{"identical", "情绪稳定不是忍耐", "情绪稳定不是忍耐", 1},
		{"identical after normalize", "情绪稳定，不是忍耐！", "情绪稳定不是忍耐", 1},
		{"disjoint", "早起一小时", "晚睡两刻钟", 0},
		{"short identical", "水", "水", 1},
		{"short disjoint", "水", "火", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a, tt.b); got != tt.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreSymmetric(t *testing.T) {
	a := "别再被信息裹挟：三个信号"
	b := "别再被信息裹挟：3个信号"
	ab := Score(a, b)
	ba := Score(b, a)
	if ab != ba {
		t.Errorf("Score not symmetric: %v vs %v", ab, ba)
	}
	// 8 shared bigrams out of 12: high partial overlap, below the default
	// rejection threshold.
	if ab <= 0.6 || ab >= 0.82 {
		t.Errorf("Score(digit variant) = %v, want high partial overlap below 0.82", ab)
	}
}

func TestScoreDigitVariantOfLongTitle(t *testing.T) {
	// A one-character numeral swap in a long title keeps nearly every
	// bigram intact, so it lands above the default 0.82 rejection line.
	a := "别再被碎片化信息裹挟你的注意力的三个明显信号与应对"
	b := "别再被碎片化信息裹挟你的注意力的3个明显信号与应对"
	got := Score(a, b)
	want := 22.0 / 26.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
	if got < 0.82 {
		t.Errorf("Score = %v, expected at or above 0.82", got)
	}
}

func TestNearest(t *testing.T) {
	refs := []Reference{
		{ID: "pub_1", Kind: "published", Title: "冬天喝水的三个误区"},
		{ID: "draft_1", Kind: "draft", Title: "冬天喝水的三个误区"},
		{ID: "topic_1", Kind: "topic", Title: "完全无关的一条标题"},
	}
	match := Nearest("冬天喝水的三个误区", refs)
	if match.ID != "pub_1" || match.Kind != "published" {
		t.Fatalf("expected earlier reference to win the tie, got %+v", match)
	}
	if match.Score != 1 {
		t.Fatalf("expected exact match score 1, got %v", match.Score)
	}
}

func TestNearestEmpty(t *testing.T) {
	match := Nearest("任何标题", nil)
	if match.Score != 0 || match.ID != "" {
		t.Fatalf("expected zero match for empty references, got %+v", match)
	}
}
