package hosts

import (
	"fmt"

	"github.com/amir20/logview/internal/ui/styles"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if len(m.hosts) == 0 {
		spinner := fmt.Sprintf("%s Waiting for hosts", m.spinner.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, spinner)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left, m.table.View(),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.HelpBarStyle.Render(m.help.View(m.keyMap))),
	)
}
