package ui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"personachat/internal/app"
	"personachat/internal/chat"
	"personachat/internal/history"
	"personachat/internal/models"
	"personachat/internal/styles"
	"personachat/internal/tools"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var spCmd tea.Cmd
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Ctl.State().Loading {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case StreamDeltaMsg:
		m.Ctl.ApplyDelta(msg.SessionID, msg.Content)
		m.refreshIfCurrent(msg.SessionID)
		return m, nil

	case ToolResultMsg:
		m.ToolActions[msg.SessionID] = append(m.ToolActions[msg.SessionID], msg.Summary)
		m.refreshIfCurrent(msg.SessionID)
		return m, nil

	case StreamDoneMsg:
		m.Ctl.FinishSend(msg.SessionID, msg.Content, msg.Err)
		m.refreshIfCurrent(msg.SessionID)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.Ctl.State().View {
		case app.ViewLanding:
			return m.updateLanding(msg)
		case app.ViewSetup:
			return m.updateSetup(msg)
		case app.ViewChat:
			return m.updateChat(msg)
		}
	}

	var (
		tiCmd tea.Cmd
		chCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.Input, tiCmd = m.Input.Update(msg)
	m.Character, chCmd = m.Character.Update(msg)
	m.Viewport, vpCmd = m.Viewport.Update(msg)
	return m, tea.Batch(tiCmd, chCmd, vpCmd)
}

func (m *Model) dispatch(ev app.Event) {
	if err := m.Ctl.Dispatch(context.Background(), ev); err != nil {
		slog.Warn("action failed", "event", eventName(ev), "error", err)
	}
}

func (m *Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.Ctl.History.Sessions()
	key := msg.String()
	if key != "ctrl+x" {
		m.ConfirmClear = false
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "n":
		m.dispatch(app.GetStarted{})
		return m, m.enterSetup()
	case "up", "k":
		if len(sessions) > 0 {
			m.LandingIdx = (m.LandingIdx - 1 + len(sessions)) % len(sessions)
		}
	case "down", "j":
		if len(sessions) > 0 {
			m.LandingIdx = (m.LandingIdx + 1) % len(sessions)
		}
	case "enter":
		if len(sessions) == 0 {
			return m, nil
		}
		m.LandingIdx = clampIndex(m.LandingIdx, len(sessions))
		m.dispatch(app.SelectSession{ID: sessions[m.LandingIdx].ID})
		if m.Ctl.State().View == app.ViewChat {
			return m, m.enterChat()
		}
	case "ctrl+x":
		if len(sessions) == 0 {
			return m, nil
		}
		if !m.ConfirmClear {
			m.ConfirmClear = true
			return m, nil
		}
		m.ConfirmClear = false
		m.dispatch(app.ClearHistory{})
		m.LandingIdx = 0
		m.ToolActions = map[string][]string{}
	}
	return m, nil
}

func (m *Model) enterSetup() tea.Cmd {
	m.Input.Blur()
	m.Character.SetValue(m.Ctl.State().Settings.Character)
	return m.focusSetup(fieldPersona)
}

func (m *Model) focusSetup(f setupField) tea.Cmd {
	m.SetupFocus = (f + setupFieldCount) % setupFieldCount
	if m.SetupFocus == fieldCharacter {
		return m.Character.Focus()
	}
	m.Character.Blur()
	return nil
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	settings := m.Ctl.State().Settings

	if m.SetupFocus == fieldCharacter && isNewlineShortcut(msg) {
		m.Character.InsertString("\n")
		return m, m.syncCharacter()
	}

	switch msg.String() {
	case "esc":
		m.Character.Blur()
		m.dispatch(app.GoBack{})
		return m, nil
	case "ctrl+r":
		m.dispatch(app.ResetSettings{})
		m.Character.SetValue(m.Ctl.State().Settings.Character)
		return m, nil
	case "ctrl+s":
		return m, m.startChat()
	case "tab", "down":
		return m, m.focusSetup(m.SetupFocus + 1)
	case "shift+tab", "up":
		return m, m.focusSetup(m.SetupFocus - 1)
	case "enter":
		if m.SetupFocus == fieldStart {
			return m, m.startChat()
		}
		return m, m.focusSetup(m.SetupFocus + 1)
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch m.SetupFocus {
		case fieldPersona:
			settings.Persona = cycle(models.Personas, settings.Persona, delta)
		case fieldLanguage:
			settings.Language = cycle(models.Languages, settings.Language, delta)
		case fieldScript:
			settings.ScriptMode = cycle(models.ScriptModes, settings.ScriptMode, delta)
		case fieldCharacter:
			var cmd tea.Cmd
			m.Character, cmd = m.Character.Update(msg)
			return m, cmd
		default:
			return m, nil
		}
		m.dispatch(app.SettingsChanged{Settings: settings})
		return m, nil
	}

	if m.SetupFocus != fieldCharacter {
		return m, nil
	}
	var cmd tea.Cmd
	m.Character, cmd = m.Character.Update(msg)
	return m, tea.Batch(cmd, m.syncCharacter())
}

// syncCharacter pushes the character text into the settings when it
// changed.
func (m *Model) syncCharacter() tea.Cmd {
	settings := m.Ctl.State().Settings
	if v := m.Character.Value(); v != settings.Character {
		settings.Character = v
		m.dispatch(app.SettingsChanged{Settings: settings})
	}
	return nil
}

func (m *Model) startChat() tea.Cmd {
	settings := m.Ctl.State().Settings
	settings.Character = m.Character.Value()
	m.dispatch(app.StartChat{Settings: settings})
	if m.Ctl.State().View != app.ViewChat {
		if m.Ctl.State().Validation != "" {
			return m.focusSetup(fieldCharacter)
		}
		return nil
	}
	return m.enterChat()
}

func (m *Model) enterChat() tea.Cmd {
	m.Character.Blur()
	m.Input.Reset()
	m.updateInputLayout()
	m.UpdateViewport()
	return m.Input.Focus()
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isNewlineShortcut(msg) {
		m.Input.InsertString("\n")
		m.updateInputLayout()
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.Input.Blur()
		m.dispatch(app.GoBack{})
		return m, nil

	case tea.KeyEnter:
		return m, m.send()

	case tea.KeyPgUp, tea.KeyPgDown:
		var vpCmd tea.Cmd
		m.Viewport, vpCmd = m.Viewport.Update(msg)
		return m, vpCmd
	}

	var tiCmd tea.Cmd
	m.Input, tiCmd = m.Input.Update(msg)

	// terminal background color queries and cursor reports can leak into the input
	if containsTerminalNoise(m.Input.Value()) {
		m.Input.Reset()
	}
	m.updateInputLayout()
	return m, tiCmd
}

func (m *Model) send() tea.Cmd {
	if m.Ctl.State().Loading {
		return nil
	}
	turn, err := m.Ctl.BeginSend(m.Input.Value())
	if err != nil {
		if !errors.Is(err, app.ErrEmptyMessage) && !errors.Is(err, history.ErrSendInFlight) {
			slog.Warn("send rejected", "error", err)
		}
		return nil
	}

	delete(m.ToolActions, turn.SessionID)
	m.Input.Reset()
	m.updateInputLayout()
	m.UpdateViewport()
	return tea.Batch(m.streamReply(turn), m.Spinner.Tick)
}

// streamReply runs the turn off the event loop. Progress is posted back
// with Program.Send so that all state changes happen in Update.
func (m *Model) streamReply(turn app.Turn) tea.Cmd {
	program := m.Program
	return func() tea.Msg {
		hooks := chat.Hooks{}
		if program != nil {
			hooks.OnUpdate = func(content string) {
				program.Send(StreamDeltaMsg{SessionID: turn.SessionID, Content: content})
			}
			hooks.OnToolResult = func(name string, result map[string]any) {
				program.Send(ToolResultMsg{
					SessionID: turn.SessionID,
					Name:      name,
					Summary:   tools.GenerateToolSummary(name, result),
				})
			}
		}
		content, err := turn.Run(context.Background(), hooks)
		return StreamDoneMsg{SessionID: turn.SessionID, Content: content, Err: err}
	}
}

func (m *Model) refreshIfCurrent(sessionID string) {
	if m.Ctl.State().View == app.ViewChat && m.Ctl.State().CurrentSessionID == sessionID {
		m.UpdateViewport()
	}
}

func (m *Model) resize(width, height int) {
	m.WindowWidth = width
	m.WindowHeight = height

	chatWidth := width - 4
	if chatWidth > MaxChatWidth {
		chatWidth = MaxChatWidth
	}
	if chatWidth < 20 {
		chatWidth = 20
	}
	m.Viewport.Width = chatWidth
	styles.ContentWidth = chatWidth - 4
	m.Character.SetWidth(chatWidth - 6)

	m.Renderer, _ = glamour.NewTermRenderer(
		glamour.WithStylePath(styles.GlamourStyle()),
		glamour.WithWordWrap(chatWidth-6),
	)
	m.rendered = map[string]string{}

	m.updateInputLayout()
	m.UpdateViewport()
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.Viewport.Width - 4
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	maxInputHeight := 6
	lineCount := WrappedLineCount(m.Input.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > maxInputHeight {
		lineCount = maxInputHeight
	}

	m.Input.MaxHeight = maxInputHeight
	m.Input.SetWidth(inputWidth)
	m.Input.SetHeight(lineCount)

	// header, blank lines and key hints around the transcript
	inputBoxHeight := m.Input.Height() + 2
	reserved := inputBoxHeight + 6
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}
