package hosts

import (
	"strconv"

	"github.com/amir20/logview/internal/stream"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
)

func NewModel(web string) Model {
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 1},
			{Title: "ID", Width: 6},
			{Title: "NAME", Width: 30},
			{Title: "IP", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tbl.SetStyles(table.DefaultStyles())

	keys := defaultKeyMap()
	keys.Open.SetEnabled(web != "")

	return Model{
		table:   tbl,
		web:     web,
		keyMap:  keys,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	if len(m.hosts) == 0 {
		return m.spinner.Tick
	}
	return nil
}

// SetHosts refreshes the rows. The cursor stays on the same host when it is
// still listed.
func (m Model) SetHosts(hosts []stream.Host, selected int64) Model {
	var cursorID int64
	if m.table.Cursor() >= 0 && m.table.Cursor() < len(m.hosts) {
		cursorID = m.hosts[m.table.Cursor()].ID
	}

	m.hosts = hosts
	m.selected = selected
	m.table.SetRows(lo.Map(hosts, func(h stream.Host, _ int) table.Row {
		marker := ""
		if h.ID == selected {
			marker = "●"
		}
		return table.Row{marker, strconv.FormatInt(h.ID, 10), h.Name, h.IP}
	}))

	if _, idx, ok := lo.FindIndexOf(hosts, func(h stream.Host) bool { return h.ID == cursorID }); ok {
		m.table.SetCursor(idx)
	} else if len(hosts) > 0 {
		m.table.SetCursor(min(m.table.Cursor(), len(hosts)-1))
	}
	return m
}

// Focus moves the cursor onto the selected host.
func (m Model) Focus() Model {
	if _, idx, ok := lo.FindIndexOf(m.hosts, func(h stream.Host) bool { return h.ID == m.selected }); ok {
		m.table.SetCursor(idx)
	}
	return m
}

func (m Model) current() (stream.Host, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.hosts) {
		return stream.Host{}, false
	}
	return m.hosts[cursor], true
}
