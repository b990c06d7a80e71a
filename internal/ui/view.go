package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func (a App) View() string {
	content := a.activePage().View()
	if statusBarPage, ok := a.activePage().(StatusBar); ok {
		return lipgloss.JoinVertical(lipgloss.Left, content, statusBarPage.StatusBar())
	}

	// pages without their own status bar show the log page's
	return lipgloss.JoinVertical(lipgloss.Left, content, a.logPage.StatusBar())
}
