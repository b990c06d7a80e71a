package ui

import (
	"context"
	"time"

	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/ui/pages/hosts"
	logpage "github.com/amir20/logview/internal/ui/pages/log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type PageType int

const (
	Log PageType = iota
	Hosts
)

// Conn is the part of *stream.Client the app uses.
type Conn interface {
	Send(req stream.Request) error
	Events() <-chan stream.Event
	Close() error
}

type Dialer func(ctx context.Context) (Conn, error)

type Options struct {
	Controller  controller.Options
	Web         string
	HostRefresh time.Duration
}

type App struct {
	ctx         context.Context
	dial        Dialer
	opts        Options
	ctrl        *controller.Controller
	conn        Conn
	currentPage PageType
	logPage     logpage.Model
	hostsPage   hosts.Model
	quitKey     key.Binding
	backKey     key.Binding
	connectKey  key.Binding
	width       int
	height      int
}

var (
	defaultQuitKey = key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "Quit"),
	)
	defaultBackKey = key.NewBinding(
		key.WithKeys("esc", "left", "tab"),
		key.WithHelp("esc/left", "Go back"),
	)
	defaultConnectKey = key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "Reconnect"),
	)
)

func NewApp(ctx context.Context, dial Dialer, opts Options) App {
	return App{
		ctx:         ctx,
		dial:        dial,
		opts:        opts,
		ctrl:        controller.New(opts.Controller),
		currentPage: Log,
		logPage:     logpage.NewModel(opts.Controller.DefaultFilter),
		hostsPage:   hosts.NewModel(opts.Web),
		quitKey:     defaultQuitKey,
		backKey:     defaultBackKey,
		connectKey:  defaultConnectKey,
	}
}

func (a App) activePage() tea.Model {
	switch a.currentPage {
	case Log:
		return a.logPage
	case Hosts:
		return a.hostsPage
	}
	return nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.connect(), a.activePage().Init(), a.scheduleRefresh())
}

func (a App) capturing() bool {
	capture, ok := a.activePage().(InputCapture)
	return ok && capture.Capturing()
}
