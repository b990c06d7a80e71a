package config

import (
	"net/http"

	"github.com/amir20/logview/internal/controller"
	"github.com/amir20/logview/internal/stream"
)

// StreamSettings builds the websocket settings, including the session cookie
// and extra headers for the handshake.
func (c Cli) StreamSettings() stream.Settings {
	settings := stream.DefaultSettings()
	settings.HandshakeTimeout = c.HandshakeTimeout
	settings.WriteTimeout = c.WriteTimeout

	header := http.Header{}
	header.Set("User-Agent", "logview")
	for _, h := range c.Headers {
		header.Add(h.Name, h.Value)
	}
	if c.Cookie != "" {
		header.Add("Cookie", c.Cookie)
	}
	settings.Header = header

	return settings
}

func (c Cli) ControllerOptions() controller.Options {
	opts := controller.DefaultOptions()
	opts.DefaultFilter = c.Filter
	opts.InitialFetch = c.InitialFetch
	opts.ScrollFetch = c.ScrollFetch
	opts.Threshold = c.Threshold
	opts.MaxLiveEntries = c.MaxLiveEntries
	opts.PendingTimeout = c.PendingTimeout
	return opts
}
