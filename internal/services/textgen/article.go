package textgen

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"inkwell/internal/store"
	"inkwell/internal/textutil"
)

// maxParagraphRunes caps paragraph length in rendered documents; longer
// paragraphs are reflowed at sentence boundaries.
const maxParagraphRunes = 60

// ErrUnparsable reports model output with no recoverable JSON document.
var ErrUnparsable = errors.New("textgen: unparsable model output")

var (
	fencedJSONPattern = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")
	bareJSONPattern   = regexp.MustCompile(`(?s)\{.*\}`)
	controlCharPattern = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
)

// ExtractArticle locates the JSON document inside raw model output and
// decodes it into an article. A fenced ```json block wins over a bare object.
// Models occasionally emit raw control characters inside JSON strings; those
// are stripped and the parse retried once before giving up.
func ExtractArticle(raw, fallbackTitle string) (store.Article, error) {
	jsonText := ""
	if m := fencedJSONPattern.FindStringSubmatch(raw); m != nil {
		jsonText = m[1]
	} else if m := bareJSONPattern.FindString(raw); m != "" {
		jsonText = m
	} else {
		return store.Article{}, ErrUnparsable
	}

	if !gjson.Valid(jsonText) {
		jsonText = controlCharPattern.ReplaceAllString(jsonText, "")
		if !gjson.Valid(jsonText) {
			return store.Article{}, ErrUnparsable
		}
	}

	doc := gjson.Parse(jsonText)
	article := store.Article{
		Title:    strings.TrimSpace(doc.Get("title").String()),
		Digest:   strings.TrimSpace(doc.Get("digest").String()),
		Subtitle: strings.TrimSpace(doc.Get("subtitle").String()),
	}
	if article.Title == "" {
		article.Title = fallbackTitle
	}
	doc.Get("sections").ForEach(func(_, section gjson.Result) bool {
		out := store.Section{Title: strings.TrimSpace(section.Get("title").String())}
		section.Get("paragraphs").ForEach(func(_, para gjson.Result) bool {
			out.Paragraphs = append(out.Paragraphs, textutil.SplitParagraph(para.String(), maxParagraphRunes)...)
			return true
		})
		article.Sections = append(article.Sections, out)
		return true
	})
	return article, nil
}
