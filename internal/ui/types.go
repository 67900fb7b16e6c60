package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"personachat/internal/app"
)

const (
	MaxChatWidth = 100

	// RecentListLimit caps how many sessions the landing screen lists at once.
	RecentListLimit = 8

	CharacterPlaceholder = "e.g., A strict mother who values discipline. She wakes up at 6 AM, insists on a clean bed, and forbids wasting time."
)

// setupField is the focused control on the setup screen.
type setupField int

const (
	fieldPersona setupField = iota
	fieldCharacter
	fieldLanguage
	fieldScript
	fieldStart
	setupFieldCount
)

// StreamDeltaMsg carries the accumulated reply text for a session.
type StreamDeltaMsg struct {
	SessionID string
	Content   string
}

// StreamDoneMsg ends a reply. Err is non-nil when the stream failed.
type StreamDoneMsg struct {
	SessionID string
	Content   string
	Err       error
}

type ToolResultMsg struct {
	SessionID string
	Name      string
	Summary   string
}

type Model struct {
	Ctl     *app.Controller
	Program *tea.Program

	Viewport  viewport.Model
	Input     textarea.Model
	Character textarea.Model
	Spinner   spinner.Model
	Renderer  *glamour.TermRenderer

	WindowWidth  int
	WindowHeight int

	LandingIdx   int
	ConfirmClear bool
	SetupFocus   setupField

	// ToolActions are summaries of tools used for the reply in progress,
	// keyed by session.
	ToolActions map[string][]string

	rendered map[string]string
}
