package textutil

import "strings"

// fileNameReplacer maps characters that are unsafe or noisy in file names to
// safe alternatives. Article titles are mostly Chinese, so the full-width
// punctuation forms are handled alongside their ASCII counterparts.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"／", "-",
	"\\", "-",
	":", "-",
	"：", "-",
	"*", "-",
	"＊", "-",
	"?", "",
	"？", "",
	"!", "",
	"！", "",
	"\"", "",
	"“", "",
	"”", "",
	"<", "",
	">", "",
	"《", "",
	"》", "",
	"|", "",
	"｜", "",
)

// SanitizeFileName makes a title safe to use as a file or directory name.
// CJK characters pass through untouched, separator-like punctuation becomes a
// dash, quote-like punctuation is dropped, and whitespace runs collapse to a
// single space.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	cleaned := strings.Join(strings.Fields(fileNameReplacer.Replace(name)), " ")
	return strings.Trim(cleaned, "- ")
}

// SanitizeToken converts an account or platform identifier to a lowercase
// filesystem-safe token. Letters are lowercased, digits and hyphens and
// underscores are kept, everything else (CJK included) becomes an underscore.
// Returns "unknown" when nothing survives.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
