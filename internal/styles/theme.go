package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color scheme for the application
type Theme struct {
	// Core colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Text colors
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Semantic colors
	Error lipgloss.Color
	Info  lipgloss.Color

	Border lipgloss.Color

	// Chat bubbles
	UserBubble  lipgloss.Color
	ModelBubble lipgloss.Color
}

var DarkTheme = Theme{
	Primary:   lipgloss.Color("#8B5CF6"), // Violet 500
	Secondary: lipgloss.Color("#C4B5FD"), // Violet 300
	Accent:    lipgloss.Color("#F472B6"), // Pink 400

	TextPrimary:   lipgloss.Color("#F1F5F9"),
	TextSecondary: lipgloss.Color("#CBD5E1"),
	TextMuted:     lipgloss.Color("#64748B"),

	Error: lipgloss.Color("#FB7185"),
	Info:  lipgloss.Color("#60A5FA"),

	Border: lipgloss.Color("#3F3F46"),

	UserBubble:  lipgloss.Color("#8B5CF6"),
	ModelBubble: lipgloss.Color("#22D3EE"),
}

var LightTheme = Theme{
	Primary:   lipgloss.Color("#6D28D9"),
	Secondary: lipgloss.Color("#7C3AED"),
	Accent:    lipgloss.Color("#DB2777"),

	TextPrimary:   lipgloss.Color("#18181B"),
	TextSecondary: lipgloss.Color("#52525B"),
	TextMuted:     lipgloss.Color("#A1A1AA"),

	Error: lipgloss.Color("#EF4444"),
	Info:  lipgloss.Color("#3B82F6"),

	Border: lipgloss.Color("#E4E4E7"),

	UserBubble:  lipgloss.Color("#6D28D9"),
	ModelBubble: lipgloss.Color("#0891B2"),
}

// CurrentTheme holds the active theme (set at runtime based on terminal)
var CurrentTheme = DarkTheme

type Adaptive = lipgloss.AdaptiveColor

func adaptive(light, dark lipgloss.Color) Adaptive {
	return Adaptive{Light: string(light), Dark: string(dark)}
}

var (
	FgPrimary   = adaptive(LightTheme.Primary, DarkTheme.Primary)
	FgSecondary = adaptive(LightTheme.TextSecondary, DarkTheme.TextSecondary)
	FgText      = adaptive(LightTheme.TextPrimary, DarkTheme.TextPrimary)
	FgMuted     = adaptive(LightTheme.TextMuted, DarkTheme.TextMuted)
	FgError     = adaptive(LightTheme.Error, DarkTheme.Error)
	Accent      = adaptive(LightTheme.Accent, DarkTheme.Accent)
	BorderColor = adaptive(LightTheme.Border, DarkTheme.Border)
	UserColor   = adaptive(LightTheme.UserBubble, DarkTheme.UserBubble)
	ModelColor  = adaptive(LightTheme.ModelBubble, DarkTheme.ModelBubble)
)

// InitTheme sets the current theme based on terminal background
func InitTheme() {
	if lipgloss.HasDarkBackground() {
		CurrentTheme = DarkTheme
	} else {
		CurrentTheme = LightTheme
	}
}

// GlamourStyle names the glamour style matching the terminal background.
func GlamourStyle() string {
	if CurrentTheme == LightTheme {
		return "light"
	}
	return "dark"
}
