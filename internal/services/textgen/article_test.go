package textgen

import (
	"errors"
	"strings"
	"testing"
)

const fencedOutput = "好的，文章如下：\n```json\n" +
	`{"title":"冬天喝水的三个误区","digest":"别等渴了才喝","subtitle":"",
  "sections":[{"title":"误区一","paragraphs":["早起一杯水并不适合所有人。"]}]}` +
	"\n```\n希望对你有帮助。"

func TestExtractArticleFencedBlock(t *testing.T) {
	article, err := ExtractArticle(fencedOutput, "fallback")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}
	if article.Title != "冬天喝水的三个误区" {
		t.Errorf("Title = %q", article.Title)
	}
	if len(article.Sections) != 1 || len(article.Sections[0].Paragraphs) != 1 {
		t.Fatalf("unexpected sections: %+v", article.Sections)
	}
}

func TestExtractArticleBareObject(t *testing.T) {
	raw := `前言 {"title":"","digest":"d","sections":[]} 后记`
	article, err := ExtractArticle(raw, "备用标题")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}
	if article.Title != "备用标题" {
		t.Errorf("expected fallback title, got %q", article.Title)
	}
	if article.Digest != "d" {
		t.Errorf("Digest = %q", article.Digest)
	}
}

func TestExtractArticleSanitizesControlChars(t *testing.T) {
	raw := "{\"title\":\"带\x08控制符\",\"sections\":[]}"
	article, err := ExtractArticle(raw, "")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}
	if strings.ContainsRune(article.Title, '\x08') {
		t.Errorf("control char survived: %q", article.Title)
	}
}

func TestExtractArticleUnparsable(t *testing.T) {
	for _, raw := range []string{"抱歉，我无法完成。", "```json\nnot json\n```", ""} {
		if _, err := ExtractArticle(raw, ""); !errors.Is(err, ErrUnparsable) {
			t.Errorf("ExtractArticle(%q) err = %v, want ErrUnparsable", raw, err)
		}
	}
}

func TestExtractArticleSplitsLongParagraphs(t *testing.T) {
	long := strings.Repeat("这是一个很长的句子。", 10)
	raw := `{"title":"t","sections":[{"title":"s","paragraphs":["` + long + `"]}]}`
	article, err := ExtractArticle(raw, "")
	if err != nil {
		t.Fatalf("ExtractArticle: %v", err)
	}
	paras := article.Sections[0].Paragraphs
	if len(paras) < 2 {
		t.Fatalf("expected long paragraph to split, got %d pieces", len(paras))
	}
	for i, p := range paras {
		if n := len([]rune(p)); n > 60 {
			t.Errorf("paragraph %d has %d runes", i, n)
		}
	}
}

func TestBuildArticlePromptContainsSchema(t *testing.T) {
	prompt := BuildArticlePrompt(nil, "被低估的午睡", "")
	if !strings.Contains(prompt, "被低估的午睡") {
		t.Error("prompt missing keyword")
	}
	if !strings.Contains(prompt, "```json") || !strings.Contains(prompt, "sections") {
		t.Error("prompt missing output schema")
	}
}
