package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func (a App) connect() tea.Cmd {
	dial, ctx := a.dial, a.ctx
	return func() tea.Msg {
		conn, err := dial(ctx)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{conn: conn}
	}
}

func waitForEvent(conn Conn) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-conn.Events()
		if !ok {
			return streamEndedMsg{conn: conn}
		}
		return eventMsg{conn: conn, event: ev}
	}
}

func (a App) scheduleRefresh() tea.Cmd {
	if a.opts.HostRefresh <= 0 {
		return nil
	}
	return tea.Tick(a.opts.HostRefresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}
