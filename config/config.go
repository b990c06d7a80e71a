package config

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
)

type Cli struct {
	URL     string   `help:"Websocket endpoint of the log receiver." name:"url" default:"ws://localhost:8081/logreceiver/websocket/api"`
	Cookie  string   `help:"Session cookie sent with the handshake, e.g. JSESSIONID=..." name:"cookie"`
	Headers []Header `help:"Extra handshake header as 'Name: value'." name:"header" short:"H" sep:"none"`
	Web     string   `help:"Web UI address, opened from the host list." name:"web"`

	Filter         string        `help:"Filter regex of the first subscription." name:"filter" default:".*"`
	InitialFetch   int           `help:"Entries requested when subscribing." name:"initial-fetch" default:"70"`
	ScrollFetch    int           `help:"Entries requested per history load." name:"scroll-fetch" default:"30"`
	Threshold      int           `help:"Rows from the window edge that trigger a history load." name:"threshold" default:"10"`
	MaxLiveEntries int           `help:"Trim the window to this many entries while following, 0 keeps all." name:"max-live-entries" default:"0"`
	PendingTimeout time.Duration `help:"Give up waiting for a history response after this long." name:"pending-timeout" default:"10s"`
	HostRefresh    time.Duration `help:"Host list refresh interval, 0 disables." name:"host-refresh" default:"30s"`

	HandshakeTimeout time.Duration `help:"Websocket handshake timeout." name:"handshake-timeout" default:"5s"`
	WriteTimeout     time.Duration `help:"Websocket write timeout." name:"write-timeout" default:"5s"`

	LogFile  string `help:"Write logs to this file, they are discarded otherwise." name:"log-file" type:"path"`
	LogLevel string `help:"Log level." name:"log-level" enum:"trace,debug,info,warn,error" default:"info"`
	Version  bool   `help:"Show version information." default:"false" name:"version" short:"v"`
}

// Validate is called by kong after parsing.
func (c *Cli) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrap(err, "--url")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.Errorf("--url: scheme must be ws or wss, got %q", u.Scheme)
	}
	if _, err := regexp.Compile(c.Filter); err != nil {
		return errors.Wrap(err, "--filter")
	}
	if c.InitialFetch <= 0 || c.ScrollFetch <= 0 {
		return errors.New("--initial-fetch and --scroll-fetch must be positive")
	}
	if c.Threshold < 0 || c.MaxLiveEntries < 0 {
		return errors.New("--threshold and --max-live-entries must not be negative")
	}
	return nil
}

type Header struct {
	Name  string
	Value string
}

func (h *Header) Decode(ctx *kong.DecodeContext) error {
	token, err := ctx.Scan.PopValue("header")
	if err != nil {
		return err
	}
	name, value, ok := strings.Cut(token.String(), ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return errors.Errorf("header %q: expected 'Name: value'", token.String())
	}
	h.Name = name
	h.Value = strings.TrimSpace(value)
	return nil
}
