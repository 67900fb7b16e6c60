package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"personachat/internal/app"
	"personachat/internal/styles"
)

func newTextarea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.SetWidth(60)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(styles.FgPrimary).Bold(true)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(styles.FgMuted)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(styles.FgMuted)
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(styles.FgMuted)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	return ta
}

func InitialModel(ctl *app.Controller) Model {
	styles.InitTheme()

	in := newTextarea("Type your message...", 1)
	in.Prompt = "❯ "
	in.MaxHeight = 6

	character := newTextarea(CharacterPlaceholder, 5)
	character.Prompt = "│ "
	character.SetValue(ctl.State().Settings.Character)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.FgPrimary)

	return Model{
		Ctl:         ctl,
		Viewport:    viewport.New(60, 15),
		Input:       in,
		Character:   character,
		Spinner:     sp,
		ToolActions: map[string][]string{},
		rendered:    map[string]string{},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.Spinner.Tick,
	)
}

func NewProgram(ctl *app.Controller) *tea.Program {
	m := InitialModel(ctl)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	m.Program = p
	return p
}
