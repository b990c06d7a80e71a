package log

import (
	"fmt"
	"regexp"

	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/ui/messages"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-1, 1)
		m.filter.Width = max(m.width-2, 1)
		m.help.Width = m.width
		m.render()
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateFilter(msg)
		}

		switch {
		case key.Matches(msg, m.keyMap.Filter):
			m.editing = true
			m.filter.SetValue(m.pattern)
			m.filter.CursorEnd()
			return m, m.filter.Focus()
		case key.Matches(msg, m.keyMap.Hosts):
			return m, func() tea.Msg { return messages.ShowHostsMsg{} }
		case key.Matches(msg, m.keyMap.Bottom):
			m.viewport.GotoBottom()
			return m, m.scrolled(false)
		}

		km := m.viewport.KeyMap
		if key.Matches(msg, km.Up, km.Down, km.PageUp, km.PageDown, km.HalfPageUp, km.HalfPageDown) {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			up := key.Matches(msg, km.Up, km.PageUp, km.HalfPageUp)
			return m, tea.Batch(cmd, m.scrolled(up))
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.scrolled(msg.Button == tea.MouseButtonWheelUp))
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.editing = false
		m.filter.Blur()
		return m, nil

	case key.Matches(msg, m.keyMap.Apply):
		pattern := m.filter.Value()
		if _, err := regexp.Compile(pattern); err != nil {
			m.status = controller.Status{Message: fmt.Sprintf("invalid filter: %v", err), Error: true}
			return m, nil
		}
		m.editing = false
		m.filter.Blur()
		return m, func() tea.Msg { return messages.FilterMsg{Filter: pattern} }
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// scrolled reports every scroll input, also the ones that could not move the
// viewport: pushing down at the bottom still asks for newer entries, pushing
// up at the top for older ones.
func (m Model) scrolled(up bool) tea.Cmd {
	vp := m.Observation()
	vp.Up = up
	return func() tea.Msg {
		return messages.ScrolledMsg{Viewport: vp}
	}
}
