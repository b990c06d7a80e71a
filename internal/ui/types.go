package ui

import (
	"time"

	"github.com/amir20/logview/internal/stream"
)

type connectedMsg struct {
	conn Conn
}

type connectFailedMsg struct {
	err error
}

// eventMsg is one stream event, tagged with the connection it came from so
// events of a replaced connection can be told apart.
type eventMsg struct {
	conn  Conn
	event stream.Event
}

type streamEndedMsg struct {
	conn Conn
}

type refreshMsg time.Time
