package log

import (
	"fmt"
	"strings"

	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/ui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m Model) View() string {
	var content string
	switch {
	case len(m.entries) > 0:
		content = m.viewport.View()
	case m.state == controller.Subscribed:
		content = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, "No entries match "+m.pattern)
	default:
		content = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, "Waiting for hosts")
	}

	var bottom string
	if m.editing {
		bottom = m.filter.View()
	} else {
		bottom = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.HelpBarStyle.Render(m.help.View(m.keyMap)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, bottom)
}

// StatusBar implements the StatusBar interface
func (m Model) StatusBar() string {
	parts := []string{m.state.String()}
	if m.host != "" {
		parts = append(parts, m.host, fmt.Sprintf("/%s/", m.pattern))
	}
	parts = append(parts, humanize.Comma(int64(len(m.entries)))+" entries")
	if m.state == controller.Subscribed {
		if m.following {
			parts = append(parts, styles.GreenStyle.Render("following"))
		} else {
			parts = append(parts, "paused")
		}
	}
	if !m.lastEntry.IsZero() {
		parts = append(parts, "last entry "+humanize.RelTime(m.lastEntry, m.now(), "ago", "from now"))
	}
	left := strings.Join(parts, " | ")

	right := m.status.Message
	if m.status.Error {
		right = styles.RedStyle.Render(right)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).Render(" " + left + strings.Repeat(" ", gap) + right + " ")
}
