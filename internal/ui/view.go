package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"personachat/internal/app"
	"personachat/internal/models"
	"personachat/internal/styles"
)

func (m *Model) View() string {
	switch m.Ctl.State().View {
	case app.ViewSetup:
		return m.viewSetup()
	case app.ViewChat:
		return m.viewChat()
	default:
		return m.viewLanding()
	}
}

func (m *Model) viewLanding() string {
	state := m.Ctl.State()
	width := m.contentWidth()

	parts := []string{
		Logo(),
		"",
		styles.HeaderStyle.Render("Welcome to Persona Chat AI"),
		styles.TaglineStyle.Render("Craft unique AI personalities and bring your conversations to life. Ready to start?"),
		"",
		styles.ButtonFocusedStyle.Render("n  Get Started"),
	}

	if state.Notice != "" {
		parts = append(parts, "", styles.NoticeStyle.Render(state.Notice))
	}

	sessions := m.Ctl.History.Sessions()
	if len(sessions) > 0 {
		parts = append(parts, "", m.renderRecentChats(sessions, width))
	}

	hint := "n: new chat • ↑/↓: select • enter: resume • ctrl+x: clear history • q: quit"
	if m.ConfirmClear {
		hint = styles.ErrorStyle.Render("Press ctrl+x again to delete all chats, any other key to cancel.")
	} else {
		hint = styles.HintStyle.Render(hint)
	}
	parts = append(parts, "", hint)

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderRecentChats(sessions []models.ChatSession, width int) string {
	header := styles.HeaderStyle.Render(fmt.Sprintf("Recent Chats (%d)", len(sessions)))

	idx := clampIndex(m.LandingIdx, len(sessions))
	start, end := visibleWindow(idx, len(sessions), RecentListLimit)

	items := []string{header}
	for i := start; i < end; i++ {
		items = append(items, renderSessionItem(sessions[i], i == idx, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func renderSessionItem(s models.ChatSession, selected bool, width int) string {
	inner := width - 4
	timeStr := RelativeTime(s.Timestamp)
	persona := styles.HeaderStyle.Render(string(s.Persona))
	gap := inner - lipgloss.Width(persona) - lipgloss.Width(timeStr)
	if gap < 1 {
		gap = 1
	}
	lines := []string{
		persona + strings.Repeat(" ", gap) + styles.HintStyle.Render(timeStr),
		styles.SubheaderStyle.Render(TruncateRunes(PromptPreview(s.Character), inner)),
	}
	if last, ok := s.LastMessage(); ok && last.Content != "" {
		lines = append(lines, styles.HintStyle.Italic(true).Render(TruncateRunes(PromptPreview(last.Content), inner)))
	}

	body := strings.Join(lines, "\n")
	if selected {
		return styles.ListSelectedStyle.Width(width).Render(body)
	}
	return styles.ListItemStyle.Width(width).Render(body)
}

func (m *Model) viewSetup() string {
	state := m.Ctl.State()
	s := state.Settings

	selector := func(f setupField, label, value string) string {
		valueStyle := styles.FieldValueStyle
		arrows := "  %s  "
		if m.SetupFocus == f {
			valueStyle = styles.FieldFocusedStyle
			arrows = "‹ %s ›"
		}
		return styles.FieldLabelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(arrows, value))
	}

	scriptOpts := make([]string, 0, len(models.ScriptModes))
	for _, mode := range models.ScriptModes {
		label := " " + mode.Label() + " "
		if mode == s.ScriptMode {
			if m.SetupFocus == fieldScript {
				label = styles.ChipSelectedStyle.Render(label)
			} else {
				label = styles.FieldFocusedStyle.Render("[" + mode.Label() + "]")
			}
		} else {
			label = styles.HintStyle.Render(label)
		}
		scriptOpts = append(scriptOpts, label)
	}
	scriptLabel := styles.FieldLabelStyle.Render("Script")
	if m.SetupFocus == fieldScript {
		scriptLabel = styles.FieldLabelStyle.Foreground(styles.FgPrimary).Render("Script")
	}

	charLabel := styles.FieldLabelStyle.Render("Character")
	if m.SetupFocus == fieldCharacter {
		charLabel = styles.FieldLabelStyle.Foreground(styles.FgPrimary).Render("Character")
	}

	button := styles.ButtonStyle.Render("Start Chatting")
	if m.SetupFocus == fieldStart {
		button = styles.ButtonFocusedStyle.Render("Start Chatting")
	}

	parts := []string{
		Logo(),
		"",
		styles.HeaderStyle.Render("Bring Your Persona to Life"),
		styles.TaglineStyle.Render("Describe their personality below to begin the conversation."),
		"",
		lipgloss.JoinVertical(lipgloss.Left,
			selector(fieldPersona, "Persona", string(s.Persona)),
			"",
			charLabel,
			styles.InputBoxStyle.Render(m.Character.View()),
			"",
			selector(fieldLanguage, "Language", string(s.Language)),
			scriptLabel+strings.Join(scriptOpts, " "),
		),
		"",
		button,
	}

	if state.Validation != "" {
		parts = append(parts, "", styles.ErrorStyle.Render(state.Validation))
	}
	if state.Notice != "" {
		parts = append(parts, "", styles.NoticeStyle.Render(state.Notice))
	}
	parts = append(parts, "", styles.HintStyle.Render(
		"tab/↑/↓: move • ←/→: change • alt+enter: newline • ctrl+s: start • ctrl+r: reset • esc: back"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewChat() string {
	sess, ok := m.Ctl.CurrentSession()
	if !ok {
		return ""
	}
	width := m.Viewport.Width

	header := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(string(sess.Persona)),
		styles.SubheaderStyle.PaddingLeft(1).Render(TruncateRunes(PromptPreview(sess.Character), width-2)),
	)

	inputBox := styles.InputBoxStyle.Width(width).Render(m.Input.View())

	hint := "enter: send • alt+enter: newline • pgup/pgdn: scroll • esc: back"
	if m.Ctl.State().Loading {
		hint = m.Spinner.View() + " " + string(sess.Persona) + " is replying • " + hint
	}

	parts := []string{header, "", m.Viewport.View(), inputBox, styles.HintStyle.Render(hint)}
	if notice := m.Ctl.State().Notice; notice != "" {
		parts = append(parts, styles.NoticeStyle.Render(notice))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return center(m.WindowWidth, content)
}

// UpdateViewport re-renders the transcript of the open session.
func (m *Model) UpdateViewport() {
	sess, ok := m.Ctl.CurrentSession()
	if !ok {
		m.Viewport.SetContent("")
		return
	}
	if len(sess.Messages) == 0 {
		greeting := styles.HintStyle.Italic(true).Render(
			fmt.Sprintf("Say hello to your %s.", strings.ToLower(string(sess.Persona))))
		m.Viewport.SetContent(lipgloss.Place(m.Viewport.Width, m.Viewport.Height, lipgloss.Center, lipgloss.Center, greeting))
		return
	}

	loading := m.Ctl.State().Loading
	label := strings.ToUpper(string(sess.Persona))
	parts := make([]string, 0, len(sess.Messages))
	for i, msg := range sess.Messages {
		if msg.Role == models.RoleUser {
			parts = append(parts, FormatUserMessage(msg.Content, m.Viewport.Width))
			continue
		}

		streaming := loading && i == len(sess.Messages)-1
		if !streaming {
			if msg.Content == "" {
				continue
			}
			parts = append(parts, FormatAIMessage(label, m.renderMarkdown(msg.Content, true)))
			continue
		}

		var body []string
		if actions := m.ToolActions[sess.ID]; len(actions) > 0 {
			body = append(body, FormatToolActions(actions))
		}
		if msg.Content == "" {
			body = append(body, " "+m.Spinner.View()+" typing...")
		} else {
			body = append(body, m.renderMarkdown(msg.Content, false))
		}
		parts = append(parts, FormatAIMessage(label, strings.Join(body, "\n")))
	}

	m.Viewport.SetContent(strings.Join(parts, "\n\n"))
	m.Viewport.GotoBottom()
}

// renderMarkdown renders a model reply with glamour. Only finished
// replies are cached.
func (m *Model) renderMarkdown(content string, cache bool) string {
	if m.Renderer == nil {
		return content
	}
	if out, ok := m.rendered[content]; ok {
		return out
	}
	out, err := m.Renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.TrimSpace(out)
	if cache {
		if m.rendered == nil {
			m.rendered = map[string]string{}
		}
		m.rendered[content] = out
	}
	return out
}

func (m *Model) contentWidth() int {
	if m.Viewport.Width > 0 {
		return m.Viewport.Width
	}
	return styles.ContentWidth
}
