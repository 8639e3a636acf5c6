// Package render turns structured articles into publish-ready HTML with all
// styling inlined, across a small set of visual themes.
package render

import (
	"fmt"
	"html"
	"strings"

	"inkwell/internal/store"
)

// ImageInsert places an image inside the document body. AfterSection -1 pins
// the image directly under the header, before the first section.
type ImageInsert struct {
	AfterSection int
	URL          string
	Caption      string
}

// Document is everything the renderer needs for one article.
type Document struct {
	Title    string
	Subtitle string
	Sections []store.Section
	Images   []ImageInsert
	CoverURL string
	Theme    string
}

// Render produces the complete HTML string for a document.
func Render(doc Document) string {
	t := lookupTheme(doc.Theme)
	var b strings.Builder

	font := "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif"
	if t.SerifFont {
		font = "'Noto Serif SC', 'Source Han Serif CN', Georgia, serif"
	}
	gap := "40px"
	if t.Layout == "minimal" {
		gap = "24px"
	}
	fmt.Fprintf(&b, `<div style="background-color: %s; padding: 40px 10px; font-family: %s; font-size: 16px; line-height: 1.75; letter-spacing: 0.5px; display: flex; flex-direction: column; align-items: center; gap: %s;">`,
		t.Background, font, gap)
	b.WriteString("\n")

	writeHeader(&b, doc, t)

	if doc.CoverURL != "" {
		writeImageBlock(&b, doc.CoverURL, "")
	}

	inserts := make(map[int][]ImageInsert)
	for _, img := range doc.Images {
		inserts[img.AfterSection] = append(inserts[img.AfterSection], img)
	}
	for _, img := range inserts[-1] {
		writeImageBlock(&b, img.URL, img.Caption)
	}

	for i, section := range doc.Sections {
		writeSection(&b, section, t)
		for _, img := range inserts[i] {
			writeImageBlock(&b, img.URL, img.Caption)
		}
	}

	endColor := "rgba(0,0,0,0.2)"
	if t.Layout == "magazine" {
		endColor = "rgba(255,255,255,0.3)"
	}
	fmt.Fprintf(&b, `<section style="max-width: 800px; width: 100%%; text-align: center; padding: 15px;">
<p style="color: %s; font-size: 12px; margin: 0;">— END —</p>
</section>
</div>`, endColor)
	return b.String()
}

func writeHeader(b *strings.Builder, doc Document, t Theme) {
	title := html.EscapeString(doc.Title)
	subtitle := html.EscapeString(doc.Subtitle)
	switch t.Layout {
	case "magazine":
		titleSize := t.TitleSize
		if titleSize == "" {
			titleSize = "30px"
		}
		fmt.Fprintf(b, `<section style="max-width: 800px; width: 100%%; border-left: 6px solid %s; padding: 30px 35px; background: %s; border-radius: 0 18px 18px 0; box-shadow: 0 8px 30px %s;">
<h1 style="font-size: %s; font-weight: 900; color: %s; margin: 0 0 16px 0; line-height: 1.3; letter-spacing: 1px;">%s</h1>`,
			t.BorderLeft, t.CardBG, t.Shadow, titleSize, t.Primary, title)
		if subtitle != "" {
			fmt.Fprintf(b, "\n"+`<p style="color: %s; font-size: 16px; margin: 0; font-style: italic;">%s</p>`, t.Accent, subtitle)
		}
		b.WriteString("\n</section>\n")
	case "minimal":
		fmt.Fprintf(b, `<section style="max-width: 720px; width: 100%%; padding: 20px 0;">
<h1 style="font-size: 26px; font-weight: 700; color: %s; text-align: center; margin: 0 0 12px 0; line-height: 1.4;">%s</h1>`,
			t.Primary, title)
		if subtitle != "" {
			fmt.Fprintf(b, "\n"+`<p style="color: %s; text-align: center; font-size: 15px; margin: 0 0 20px 0; font-style: italic;">%s</p>`, t.Accent, subtitle)
		}
		fmt.Fprintf(b, "\n"+`<hr style="border: none; border-top: %s; margin: 0;">`+"\n</section>\n", t.Divider)
	default:
		var content strings.Builder
		fmt.Fprintf(&content, `<h1 style="font-size: 24px; font-weight: 700; color: %s; text-align: center; margin-bottom: 20px; line-height: 1.4;">%s</h1>`, t.Primary, title)
		if subtitle != "" {
			fmt.Fprintf(&content, "\n"+`<blockquote style="background-color: %s; border-left: 5px solid %s; padding: 15px 20px; margin: 20px 0; border-radius: 0 12px 12px 0;">
<p style="color: %s; margin: 0; font-style: italic;">%s</p>
</blockquote>`, t.QuoteBG, t.Primary, t.Text, subtitle)
		}
		content.WriteString("\n" + `<hr style="border: none; height: 1px; background-color: rgba(0,0,0,0.08); margin: 30px 0;">`)
		writeCard(b, content.String(), t)
	}
}

func writeSection(b *strings.Builder, section store.Section, t Theme) {
	var content strings.Builder
	title := html.EscapeString(section.Title)
	if title != "" {
		switch t.Layout {
		case "magazine":
			fmt.Fprintf(&content, `<h2 style="font-size: 20px; font-weight: 800; color: %s; margin-bottom: 14px; letter-spacing: 0.5px;">%s</h2>`+"\n", t.Primary, title)
		case "minimal":
			fmt.Fprintf(&content, `<h2 style="font-size: 19px; font-weight: 600; color: %s; margin-bottom: 12px; margin-top: 8px;">%s</h2>`+"\n", t.Primary, title)
		default:
			fmt.Fprintf(&content, `<h2 style="font-size: 20px; font-weight: 700; margin-bottom: 18px; padding-bottom: 10px; border-bottom: 1px dashed rgba(0,0,0,0.15);"><span style="color: %s;">▶ </span><span style="color: %s;">%s</span></h2>`+"\n", t.Primary, t.Primary, title)
		}
	}

	for i, para := range section.Paragraphs {
		marginBottom := "16px"
		if i == len(section.Paragraphs)-1 {
			marginBottom = "0"
		}
		switch {
		case strings.HasPrefix(para, "**") && strings.HasSuffix(para, "**") && len(para) > 4:
			text := html.EscapeString(strings.Trim(para, "*"))
			fmt.Fprintf(&content, `<p style="color: %s; margin-bottom: %s; text-align: center; font-size: 18px;"><strong style="color: %s;">%s</strong></p>`+"\n",
				t.Text, marginBottom, t.Accent, text)
		case strings.HasPrefix(para, "- ") || strings.HasPrefix(para, "• "):
			item := html.EscapeString(strings.TrimSpace(strings.TrimLeft(para, "-• ")))
			fmt.Fprintf(&content, `<ul style="color: %s; margin-bottom: %s; padding-left: 20px;">`+"\n"+
				`<li style="margin-bottom: 8px;">%s</li>`+"\n</ul>\n", t.Text, marginBottom, item)
		default:
			fmt.Fprintf(&content, `<p style="color: %s; margin-bottom: %s;">%s</p>`+"\n", t.Text, marginBottom, html.EscapeString(para))
		}
	}

	switch t.Layout {
	case "minimal":
		fmt.Fprintf(b, `<section style="max-width: 720px; width: 100%%;">%s</section>`+"\n", content.String())
	case "magazine":
		fmt.Fprintf(b, `<section style="max-width: 800px; width: 100%%; border-left: 6px solid %s; padding: 20px 35px; background: %s; border-radius: 0 18px 18px 0; box-shadow: 0 4px 15px %s;">%s</section>`+"\n",
			t.BorderLeft, t.CardBG, t.Shadow, content.String())
	default:
		writeCard(b, content.String(), t)
	}
}

func writeCard(b *strings.Builder, content string, t Theme) {
	fmt.Fprintf(b, `<section style="max-width: 800px; width: 100%%; background: %s; border-radius: 18px; padding: 30px 35px; box-shadow: 0 8px 30px %s;">%s</section>`+"\n",
		t.CardBG, t.Shadow, content)
}

func writeImageBlock(b *strings.Builder, url, caption string) {
	fmt.Fprintf(b, `<section style="max-width: 800px; width: 100%%; text-align: center;">
<img src="%s" style="max-width: 100%%; border-radius: 12px; display: block; margin: 0 auto;" alt="">`,
		html.EscapeString(url))
	if caption != "" {
		fmt.Fprintf(b, "\n"+`<p style="color: rgba(0,0,0,0.45); font-size: 13px; margin: 8px 0 0 0;">%s</p>`, html.EscapeString(caption))
	}
	b.WriteString("\n</section>\n")
}
