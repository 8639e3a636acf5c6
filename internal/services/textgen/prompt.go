package textgen

import (
	"fmt"
	"strings"

	"inkwell/internal/accounts"
)

// articleSchema is the output contract appended to every article prompt.
// Extraction depends on the model honoring this shape.
const articleSchema = "```json\n" +
	`{
  "title": "文章标题",
  "digest": "一句话摘要",
  "subtitle": "副标题",
  "sections": [
    {"title": "小节标题", "paragraphs": ["段落一", "段落二"]}
  ]
}` + "\n```"

// BuildArticlePrompt assembles the article prompt for a topic, weaving in the
// account's voice and optional reference context from a hot source.
func BuildArticlePrompt(profile *accounts.Profile, keyword, referenceContext string) string {
	var b strings.Builder
	b.WriteString("你是一位长期运营个人公众号的写作者。\n")
	if profile != nil {
		if profile.Style.Domain != "" {
			fmt.Fprintf(&b, "领域：%s\n", profile.Style.Domain)
		}
		if profile.Style.Persona != "" {
			fmt.Fprintf(&b, "人设：%s\n", profile.Style.Persona)
		}
		if profile.Style.Tone != "" {
			fmt.Fprintf(&b, "语气：%s\n", profile.Style.Tone)
		}
		if profile.Style.Audience != "" {
			fmt.Fprintf(&b, "读者：%s\n", profile.Style.Audience)
		}
	}
	fmt.Fprintf(&b, "\n请围绕选题「%s」写一篇完整文章。\n", keyword)
	if referenceContext = strings.TrimSpace(referenceContext); referenceContext != "" {
		b.WriteString("\n")
		b.WriteString(referenceContext)
		b.WriteString("\n")
	}
	b.WriteString("\n只输出以下 JSON 结构，不要输出其他内容：\n")
	b.WriteString(articleSchema)
	return b.String()
}

// BuildCoverPrompt describes the cover illustration for an article.
func BuildCoverPrompt(stylePrefix, title, digest string) string {
	var b strings.Builder
	if stylePrefix = strings.TrimSpace(stylePrefix); stylePrefix != "" {
		b.WriteString(stylePrefix)
		b.WriteString("，")
	}
	fmt.Fprintf(&b, "为文章《%s》设计封面插图", title)
	if digest = strings.TrimSpace(digest); digest != "" {
		fmt.Fprintf(&b, "，主题：%s", digest)
	}
	b.WriteString("，无文字，构图简洁")
	return b.String()
}

// BuildInlinePrompt describes an in-article illustration for one section.
func BuildInlinePrompt(stylePrefix, title, sectionTitle string) string {
	var b strings.Builder
	if stylePrefix = strings.TrimSpace(stylePrefix); stylePrefix != "" {
		b.WriteString(stylePrefix)
		b.WriteString("，")
	}
	fmt.Fprintf(&b, "为《%s》的小节「%s」配一张插图，氛围贴合正文，无文字", title, sectionTitle)
	return b.String()
}
