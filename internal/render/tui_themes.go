package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme shared by the TUI and the HTML widget
type Theme struct {
	Name        string
	Description string

	// Base colors
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in themes
var (
	// CosmicTheme matches the portrait: deep navy fur, crimson outline, glowing eyes
	CosmicTheme = Theme{
		Name:        "cosmic",
		Description: "Cosmic - Navy void with crimson and starlight accents",

		Background: lipgloss.Color("#0b1120"),
		Surface:    lipgloss.Color("#101829"),
		Border:     lipgloss.Color("#2a3550"),

		Primary:   lipgloss.Color("#e94560"),
		Secondary: lipgloss.Color("#53d8fb"),
		Accent:    lipgloss.Color("#f9d56e"),
		Warning:   lipgloss.Color("#f3a712"),
		Error:     lipgloss.Color("#ff5c7a"),

		Text:     lipgloss.Color("#e6e9f5"),
		TextDim:  lipgloss.Color("#8a93b8"),
		TextMute: lipgloss.Color("#4a5275"),
	}

	TokyoNightTheme = Theme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	NordTheme = Theme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",

		Background: lipgloss.Color("#2e3440"),
		Surface:    lipgloss.Color("#3b4252"),
		Border:     lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),
	}

	DraculaTheme = Theme{
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",

		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),

		Primary:   lipgloss.Color("#8be9fd"),
		Secondary: lipgloss.Color("#50fa7b"),
		Accent:    lipgloss.Color("#ff79c6"),
		Warning:   lipgloss.Color("#f1fa8c"),
		Error:     lipgloss.Color("#ff5555"),

		Text:     lipgloss.Color("#f8f8f2"),
		TextDim:  lipgloss.Color("#6272a4"),
		TextMute: lipgloss.Color("#44475a"),
	}
)

var currentTheme = CosmicTheme

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetTheme activates a theme by name and reports whether it exists
func SetTheme(name string) bool {
	theme, ok := ThemeByName(name)
	if ok {
		currentTheme = theme
	}
	return ok
}

// ThemeByName looks up a built-in theme
func ThemeByName(name string) (Theme, bool) {
	for _, t := range AvailableThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// AvailableThemes returns every built-in theme, default first
func AvailableThemes() []Theme {
	return []Theme{
		CosmicTheme,
		TokyoNightTheme,
		NordTheme,
		DraculaTheme,
	}
}

// ThemeNames returns just the theme names for selection
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// CSSVariables renders the theme as CSS custom properties for the widget
func (t Theme) CSSVariables() string {
	return fmt.Sprintf(":root{--bg:%s;--surface:%s;--border:%s;--primary:%s;--secondary:%s;"+
		"--accent:%s;--error:%s;--text:%s;--text-dim:%s;--text-mute:%s}",
		t.Background, t.Surface, t.Border, t.Primary, t.Secondary,
		t.Accent, t.Error, t.Text, t.TextDim, t.TextMute)
}
