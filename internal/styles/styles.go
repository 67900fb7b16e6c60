package styles

import "github.com/charmbracelet/lipgloss"

var (
	ContentWidth = 72
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(FgPrimary).
			Padding(0, 1)

	TaglineStyle = lipgloss.NewStyle().
			Foreground(FgSecondary).
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(FgText)

	SubheaderStyle = lipgloss.NewStyle().
			Foreground(FgSecondary)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(UserColor).
			Bold(true).
			Padding(0, 1).
			MarginRight(1)

	UserMsgStyle = lipgloss.NewStyle().
			Foreground(FgText).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(UserColor)

	AiLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ModelColor).
			Bold(true).
			Padding(0, 1).
			MarginRight(1)

	AiMsgStyle = lipgloss.NewStyle().
			Foreground(FgText).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(ModelColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(FgError).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ToolActionStyle = lipgloss.NewStyle().
			Foreground(FgMuted).
			PaddingLeft(2)

	ToolIconStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ToolNameStyle = lipgloss.NewStyle().
			Foreground(FgSecondary).
			Bold(true)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(FgPrimary).
			Padding(0, 1)

	WelcomeArtStyle = lipgloss.NewStyle().
			Foreground(FgPrimary).
			Bold(true)

	ListItemStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Width(ContentWidth)

	ListSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Width(ContentWidth).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(Accent)

	FieldLabelStyle = lipgloss.NewStyle().
			Foreground(FgMuted).
			Width(14)

	FieldValueStyle = lipgloss.NewStyle().
			Foreground(FgText)

	FieldFocusedStyle = lipgloss.NewStyle().
				Foreground(FgPrimary).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(FgSecondary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 3)

	ButtonFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(FgPrimary).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FgPrimary).
				Padding(0, 3)

	ChipSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(FgPrimary).
				Bold(true)

	HintColor = FgMuted

	HintStyle = lipgloss.NewStyle().
			Foreground(HintColor)
)
