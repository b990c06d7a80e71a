package log

import (
	"time"

	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/stream"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

type keyMap struct {
	Filter key.Binding
	Apply  key.Binding
	Cancel key.Binding
	Bottom key.Binding
	Hosts  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Filter")),
		Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Apply")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Cancel")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "Follow")),
		Hosts:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Hosts")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Bottom, k.Hosts}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Apply, k.Cancel}}
}

type Model struct {
	viewport viewport.Model
	filter   textinput.Model
	editing  bool
	keyMap   keyMap
	help     help.Model

	// copy of the controller window, one row per entry
	entries []stream.Entry

	host      string
	pattern   string
	state     controller.State
	following bool
	status    controller.Status
	lastEntry time.Time
	now       func() time.Time

	width  int
	height int
}
