package render

// Theme controls the visual treatment of a rendered article. All styling is
// inlined because the publish target strips <style> blocks.
type Theme struct {
	Name       string
	Layout     string // card, minimal, magazine
	Background string
	CardBG     string
	Primary    string
	Accent     string
	Text       string
	Shadow     string
	QuoteBG    string
	BorderLeft string
	Divider    string
	TitleSize  string
	SerifFont  bool
}

// DefaultTheme is used when a requested theme is unknown.
const DefaultTheme = "snow-cold"

var themes = map[string]Theme{
	"snow-cold": {
		Name:       "雪日冷调",
		Layout:     "card",
		Background: "#f5f7fa",
		CardBG:     "#ffffff",
		Primary:    "#4a6fa5",
		Accent:     "#3a5a8c",
		Text:       "#3a4a5c",
		Shadow:     "rgba(100,130,180,0.3)",
		QuoteBG:    "#eef3fa",
	},
	"autumn-warm": {
		Name:       "秋日暖光",
		Layout:     "card",
		Background: "#faf9f5",
		CardBG:     "#ffffff",
		Primary:    "#d97758",
		Accent:     "#c06b4d",
		Text:       "#4a413d",
		Shadow:     "rgba(217,119,88,0.4)",
		QuoteBG:    "#fef4e7",
	},
	"spring-fresh": {
		Name:       "春日清新",
		Layout:     "card",
		Background: "#f5faf5",
		CardBG:     "#ffffff",
		Primary:    "#5a9e6f",
		Accent:     "#4a8a5f",
		Text:       "#3a4a3d",
		Shadow:     "rgba(90,158,111,0.3)",
		QuoteBG:    "#eef7f0",
	},
	"deep-ocean": {
		Name:       "深海静谧",
		Layout:     "card",
		Background: "#f0f4f8",
		CardBG:     "#ffffff",
		Primary:    "#2c5282",
		Accent:     "#1a365d",
		Text:       "#2d3748",
		Shadow:     "rgba(44,82,130,0.3)",
		QuoteBG:    "#ebf4ff",
	},
	"magazine-noir": {
		Name:       "杂志·黑金",
		Layout:     "magazine",
		Background: "#1a1a2e",
		CardBG:     "#16213e",
		Primary:    "#e2b714",
		Accent:     "#f0c040",
		Text:       "#e0e0e0",
		Shadow:     "rgba(226,183,20,0.15)",
		QuoteBG:    "#1a1a2e",
		BorderLeft: "#e2b714",
		TitleSize:  "32px",
	},
	"minimal-ink": {
		Name:       "极简·水墨",
		Layout:     "minimal",
		Background: "#fafafa",
		CardBG:     "transparent",
		Primary:    "#333333",
		Accent:     "#666666",
		Text:       "#333333",
		Shadow:     "none",
		QuoteBG:    "#f5f5f5",
		Divider:    "1px solid #e0e0e0",
		SerifFont:  true,
	},
}

// Themes lists the available theme keys and display names.
func Themes() map[string]string {
	out := make(map[string]string, len(themes))
	for key, theme := range themes {
		out[key] = theme.Name
	}
	return out
}

func lookupTheme(key string) Theme {
	if theme, ok := themes[key]; ok {
		return theme
	}
	return themes[DefaultTheme]
}
