package styles

import "github.com/charmbracelet/lipgloss"

var RedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
var GreenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
var HelpBarStyle = lipgloss.NewStyle().Padding(0, 1)
var StatusBarStyle = lipgloss.NewStyle().Reverse(true)
