package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"passthrough", "morning notes", "morning notes"},
		{"slashes to dash", "a/b\\c", "a-b-c"},
		{"colon to dash", "标题：副题", "标题-副题"},
		{"removed characters", "what? \"why\" <now>|", "what why now"},
		{"full-width punctuation", "《断舍离》有用吗？别急！", "断舍离有用吗别急"},
		{"whitespace collapse", "晨间  笔记 \t 三则", "晨间 笔记 三则"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Daily-Wellness", "daily-wellness"},
		{"acct 01", "acct_01"},
		{"", "unknown"},
		{"___", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.input); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitParagraphShortPassthrough(t *testing.T) {
	got := SplitParagraph("短句。", 60)
	if len(got) != 1 || got[0] != "短句。" {
		t.Fatalf("SplitParagraph = %v", got)
	}
	if got := SplitParagraph("   ", 60); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestSplitParagraphAtSentences(t *testing.T) {
	first := strings.Repeat("一", 30) + "。"
	second := strings.Repeat("二", 30) + "！"
	third := strings.Repeat("三", 10) + "？"
	got := SplitParagraph(first+second+third, 60)
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %v", len(got), got)
	}
	if got[0] != first {
		t.Errorf("first piece = %q", got[0])
	}
	if got[1] != second+third {
		t.Errorf("second piece should pack remaining sentences, got %q", got[1])
	}
}

func TestSplitParagraphHardCut(t *testing.T) {
	long := strings.Repeat("连", 130)
	got := SplitParagraph(long, 60)
	if len(got) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(got))
	}
	for i, piece := range got {
		if n := len([]rune(piece)); n > 60 {
			t.Errorf("piece %d has %d runes", i, n)
		}
	}
	if got[2] != strings.Repeat("连", 10) {
		t.Errorf("tail piece = %q", got[2])
	}
}
