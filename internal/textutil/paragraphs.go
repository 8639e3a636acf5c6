package textutil

import "strings"

// sentenceEnd reports runes that terminate a Chinese or Latin sentence.
func sentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?':
		return true
	}
	return false
}

// SplitParagraph breaks a long paragraph into pieces of at most maxRunes
// runes. It prefers sentence boundaries, greedily packing whole sentences
// into each piece, and falls back to hard cuts for any sentence that is
// itself longer than the limit. Short paragraphs pass through unchanged.
func SplitParagraph(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 || len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	var sentences []string
	var current []rune
	for _, r := range text {
		current = append(current, r)
		if sentenceEnd(r) {
			if s := strings.TrimSpace(string(current)); s != "" {
				sentences = append(sentences, s)
			}
			current = current[:0]
		}
	}
	if s := strings.TrimSpace(string(current)); s != "" {
		sentences = append(sentences, s)
	}

	var packed []string
	var buf string
	for _, sentence := range sentences {
		if len([]rune(buf))+len([]rune(sentence)) <= maxRunes {
			buf = strings.TrimSpace(buf + sentence)
			continue
		}
		if buf != "" {
			packed = append(packed, buf)
		}
		buf = sentence
	}
	if buf != "" {
		packed = append(packed, buf)
	}

	var out []string
	for _, piece := range packed {
		runes := []rune(strings.TrimSpace(piece))
		for len(runes) > maxRunes {
			out = append(out, string(runes[:maxRunes]))
			runes = runes[maxRunes:]
		}
		if len(runes) > 0 {
			out = append(out, string(runes))
		}
	}
	return out
}
