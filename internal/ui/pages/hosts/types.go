package hosts

import (
	"github.com/amir20/logview/internal/stream"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
)

type keyMap struct {
	LineUp   key.Binding
	LineDown key.Binding
	Select   key.Binding
	Open     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		LineUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "Up")),
		LineDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "Down")),
		Select:   key.NewBinding(key.WithKeys("enter", "right"), key.WithHelp("enter", "Follow host")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "Open web UI")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.LineUp, k.LineDown, k.Select, k.Open}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type Model struct {
	table    table.Model
	hosts    []stream.Host
	selected int64
	web      string
	keyMap   keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
}
