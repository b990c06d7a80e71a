package messages

import (
	"github.com/amir20/logview/internal/window"
)

// SelectHostMsg is sent when the user picks a host from the host list
type SelectHostMsg struct {
	HostID int64
}

// FilterMsg carries a filter pattern the user confirmed. It already compiled.
type FilterMsg struct {
	Filter string
}

// ScrolledMsg reports the log viewport after the user scrolled it
type ScrolledMsg struct {
	Viewport window.Viewport
}

type ShowHostsMsg struct{}

type StatusMsg struct {
	Message string
	Error   bool
}
