package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"personachat/internal/styles"
)

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func containsTerminalNoise(val string) bool {
	return strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R")
}

// cycle steps through opts from cur, wrapping at both ends. An unknown
// cur starts at the first option.
func cycle[T comparable](opts []T, cur T, delta int) T {
	if len(opts) == 0 {
		return cur
	}
	i := slices.Index(opts, cur)
	if i < 0 {
		return opts[0]
	}
	n := len(opts)
	return opts[((i+delta)%n+n)%n]
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func eventName(ev any) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", ev), "app.")
}

// visibleWindow returns the [start, end) slice of n items of at most size
// entries that keeps selected in view.
func visibleWindow(selected, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := selected - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	if len(lines) == 0 {
		return 1
	}
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

func PromptPreview(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Join(strings.Fields(s), " ")
	const maxRunes = 500
	r := []rune(s)
	if len(r) > maxRunes {
		return string(r[:maxRunes])
	}
	return s
}

// TruncateRunes cuts s to at most max display columns, marking the cut
// with an ellipsis.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, max, "…")
}

func RelativeTime(t time.Time) string {
	return relativeTimeFrom(time.Now(), t)
}

func relativeTimeFrom(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	}
	if d < 24*time.Hour {
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1 hr ago"
		}
		return fmt.Sprintf("%d hrs ago", hrs)
	}
	days := int(d.Hours() / 24)
	if days < 14 {
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	weeks := days / 7
	if weeks == 1 {
		return "1 week ago"
	}
	return fmt.Sprintf("%d weeks ago", weeks)
}

func FormatUserMessage(content string, width int) string {
	label := styles.UserLabelStyle.Render("YOU")
	msg := styles.UserMsgStyle.Width(width - 4).Render(content)
	return fmt.Sprintf("%s\n%s", label, msg)
}

func FormatAIMessage(label, content string) string {
	return fmt.Sprintf("%s\n%s", styles.AiLabelStyle.Render(label), styles.AiMsgStyle.Render(content))
}

func FormatToolActions(summaries []string) string {
	var lines []string
	for _, summary := range summaries {
		icon := styles.ToolIconStyle.Render("→")
		name := styles.ToolNameStyle.Render(summary)
		lines = append(lines, styles.ToolActionStyle.Render(fmt.Sprintf("%s %s", icon, name)))
	}
	return strings.Join(lines, "\n")
}

const logoArt = `
 ╭────────────────────────────────────────╮
 │   ┌─┐┌─┐┬─┐┌─┐┌─┐┌┐┌┌─┐  ┌─┐┬ ┬┌─┐┌┬┐  │
 │   ├─┘├┤ ├┬┘└─┐│ ││││├─┤  │  ├─┤├─┤ │   │
 │   ┴  └─┘┴└─└─┘└─┘┘└┘┴ ┴  └─┘┴ ┴┴ ┴ ┴   │
 ╰────────────────────────────────────────╯`

// Logo is the banner shown above the landing and setup screens.
func Logo() string {
	return styles.WelcomeArtStyle.Render(logoArt)
}

func center(width int, s string) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
