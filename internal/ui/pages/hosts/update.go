package hosts

import (
	"slices"

	"github.com/amir20/logview/internal/ui/messages"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pkg/browser"
)

var flexibleColumns = []string{"NAME", "IP"}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.table.SetWidth(msg.Width)
		m.table.SetHeight(msg.Height - 1)
		m.help.Width = msg.Width

		total := msg.Width
		cols := m.table.Columns()
		for _, col := range cols {
			if !slices.Contains(flexibleColumns, col.Title) {
				total -= col.Width
			}
		}
		// cell padding
		total -= 2 * len(cols)
		for i, col := range cols {
			if slices.Contains(flexibleColumns, col.Title) {
				cols[i].Width = max(total/len(flexibleColumns), 4)
			}
		}
		m.table.SetColumns(cols)

		return m, nil

	case spinner.TickMsg:
		if len(m.hosts) > 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.LineUp):
			m.table.MoveUp(1)
			return m, nil
		case key.Matches(msg, m.keyMap.LineDown):
			m.table.MoveDown(1)
			return m, nil
		case key.Matches(msg, m.keyMap.Select):
			host, ok := m.current()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg { return messages.SelectHostMsg{HostID: host.ID} }
		case key.Matches(msg, m.keyMap.Open):
			web := m.web
			return m, func() tea.Msg {
				if err := browser.OpenURL(web); err != nil {
					return messages.StatusMsg{Message: "open web UI: " + err.Error(), Error: true}
				}
				return nil
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
