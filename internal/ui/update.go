package ui

import (
	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/ui/messages"
	"github.com/amir20/logview/internal/ui/pages/hosts"
	logpage "github.com/amir20/logview/internal/ui/pages/log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectedMsg:
		a.conn = msg.conn
		a.dispatch(controller.Opened{})
		return a, waitForEvent(msg.conn)

	case connectFailedMsg:
		a.dispatch(stream.ConnectionFailed{Err: msg.err})
		return a, nil

	case eventMsg:
		if msg.conn != a.conn {
			return a, nil
		}
		a.dispatch(msg.event)
		return a, waitForEvent(msg.conn)

	case streamEndedMsg:
		msg.conn.Close()
		if msg.conn == a.conn {
			a.conn = nil
		}
		return a, nil

	case refreshMsg:
		a.dispatch(controller.RefreshHosts{})
		return a, a.scheduleRefresh()

	case messages.ScrolledMsg:
		a.dispatch(controller.Scrolled{Viewport: msg.Viewport})
		return a, nil

	case messages.FilterMsg:
		host, _ := a.ctrl.SelectedHost()
		a.dispatch(controller.CriteriaChanged{HostID: host.ID, Filter: msg.Filter})
		return a, nil

	case messages.SelectHostMsg:
		a.currentPage = Log
		if sub := a.ctrl.Subscription(); a.ctrl.State() != controller.Subscribed || sub.HostID != msg.HostID {
			filter := sub.Filter
			if filter == "" {
				filter = a.opts.Controller.DefaultFilter
			}
			a.dispatch(controller.CriteriaChanged{HostID: msg.HostID, Filter: filter})
		}
		return a, nil

	case messages.ShowHostsMsg:
		a.currentPage = Hosts
		a.hostsPage = a.hostsPage.Focus()
		return a, a.hostsPage.Init()

	case messages.StatusMsg:
		a.logPage = a.logPage.SetStatus(controller.Status{Message: msg.Message, Error: msg.Error})
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Both pages share the status bar row
		msg.Height--

		model, _ := a.logPage.Update(msg)
		a.logPage = model.(logpage.Model)
		model, _ = a.hostsPage.Update(msg)
		a.hostsPage = model.(hosts.Model)
		return a, nil

	case tea.KeyMsg:
		if a.capturing() {
			break
		}
		switch {
		case key.Matches(msg, a.quitKey):
			if a.conn != nil {
				a.conn.Close()
			}
			return a, tea.Quit
		case key.Matches(msg, a.backKey) && a.currentPage == Hosts:
			a.currentPage = Log
			return a, nil
		case key.Matches(msg, a.connectKey):
			if a.conn != nil || a.ctrl.State() != controller.Idle {
				a.logPage = a.logPage.SetStatus(controller.Status{Message: "already connected"})
				return a, nil
			}
			a.logPage = a.logPage.SetStatus(controller.Status{Message: "reconnecting"})
			return a, a.connect()
		}
	}

	// Delegate to current page
	var cmd tea.Cmd
	switch a.currentPage {
	case Log:
		var model tea.Model
		model, cmd = a.logPage.Update(msg)
		a.logPage = model.(logpage.Model)
	case Hosts:
		var model tea.Model
		model, cmd = a.hostsPage.Update(msg)
		a.hostsPage = model.(hosts.Model)
	}

	return a, cmd
}

// dispatch runs one event through the controller, sends the requested
// messages in order and hands the window changes to the log page.
func (a *App) dispatch(ev any) {
	fx := a.ctrl.Dispatch(ev)

	for _, req := range fx.Requests {
		if a.conn == nil {
			log.WithField("cmd", req.Command()).Warn("no connection, request dropped")
			break
		}
		if err := a.conn.Send(req); err != nil {
			log.WithError(err).WithField("cmd", req.Command()).Error("send failed")
			fx.Status = &controller.Status{Message: err.Error(), Error: true}
			break
		}
	}

	if len(fx.Changes) > 0 {
		a.logPage = a.logPage.Apply(fx.Changes)
		if lo.SomeBy(fx.Changes, func(c controller.Change) bool { return c.Follow }) {
			// the jump to the bottom is the new baseline for scroll direction
			a.dispatch(controller.Scrolled{Viewport: a.logPage.Observation()})
		}
	}
	if fx.Status != nil {
		a.logPage = a.logPage.SetStatus(*fx.Status)
	}

	name := ""
	host, ok := a.ctrl.SelectedHost()
	if ok {
		name = host.DisplayName()
	}
	a.logPage = a.logPage.SetSubscription(name, a.ctrl.State(), a.ctrl.Subscription())
	a.hostsPage = a.hostsPage.SetHosts(a.ctrl.Hosts(), host.ID)
}
