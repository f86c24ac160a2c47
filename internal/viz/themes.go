package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the monitor colors. Arterial and Venous color the pressure
// channels, Rate the heart rate.
type Theme struct {
	Name     string
	Arterial lipgloss.Color
	Venous   lipgloss.Color
	Rate     lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Active   lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
}

// Available themes
var (
	ThemeBedside = Theme{
		Name:     "bedside",
		Arterial: lipgloss.Color("#ff4444"),
		Venous:   lipgloss.Color("#4da6ff"),
		Rate:     lipgloss.Color("#00ff66"),
		Text:     lipgloss.Color("#e0e0e0"),
		Muted:    lipgloss.Color("#666666"),
		Active:   lipgloss.Color("#ffff00"),
		Warning:  lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemePhosphor = Theme{
		Name:     "phosphor",
		Arterial: lipgloss.Color("#00ff00"),
		Venous:   lipgloss.Color("#00cc00"),
		Rate:     lipgloss.Color("#88ff88"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Active:   lipgloss.Color("#ccffcc"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemePaper = Theme{
		Name:     "paper",
		Arterial: lipgloss.Color("#aa0000"),
		Venous:   lipgloss.Color("#0044aa"),
		Rate:     lipgloss.Color("#006600"),
		Text:     lipgloss.Color("#222222"),
		Muted:    lipgloss.Color("#888888"),
		Active:   lipgloss.Color("#aa00aa"),
		Warning:  lipgloss.Color("#aa6600"),
		Error:    lipgloss.Color("#cc0000"),
	}

	// All available themes
	Themes = []Theme{
		ThemeBedside,
		ThemePhosphor,
		ThemePaper,
	}
)

// GetTheme returns a theme by name, falling back to the bedside theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeBedside
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme returns the theme after name in Themes.
func nextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
