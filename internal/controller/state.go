package controller

import (
	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/window"
)

type State int

const (
	Idle State = iota
	AwaitingHosts
	Subscribed
)

func (s State) String() string {
	switch s {
	case AwaitingHosts:
		return "awaiting-hosts"
	case Subscribed:
		return "subscribed"
	default:
		return "idle"
	}
}

type Subscription struct {
	HostID       int64
	Filter       string
	FollowBottom bool
}

// Events accepted by Dispatch besides the stream events HostsUpdated,
// LiveBatch, HistoryBatch, ServerError, ConnectionClosed and ConnectionFailed.
type (
	// Opened reports a freshly established connection.
	Opened struct{}

	// Scrolled carries a viewport observation for the scroll monitor.
	Scrolled struct {
		Viewport window.Viewport
	}

	// CriteriaChanged is a user initiated host or filter change.
	CriteriaChanged struct {
		HostID int64
		Filter string
	}

	RefreshHosts struct{}
)

type ChangeOp int

const (
	OpReset ChangeOp = iota
	OpPrepend
	OpAppend
	OpEvict
)

func (op ChangeOp) String() string {
	switch op {
	case OpPrepend:
		return "prepend"
	case OpAppend:
		return "append"
	case OpEvict:
		return "evict"
	default:
		return "reset"
	}
}

// Change is one step the renderer applies to its copy of the window, in order.
// Follow asks the renderer to scroll to the new bottom.
type Change struct {
	Op      ChangeOp
	Entries []stream.Entry
	Evicted int
	FromTop bool
	Follow  bool
}

type Status struct {
	Message string
	Error   bool
}

// Effects is everything a Dispatch wants done outside the controller.
type Effects struct {
	Requests []stream.Request
	Changes  []Change
	Status   *Status
}

func (e *Effects) request(req stream.Request) {
	e.Requests = append(e.Requests, req)
}

func (e *Effects) change(c Change) {
	e.Changes = append(e.Changes, c)
}

func (e *Effects) status(msg string, isErr bool) {
	e.Status = &Status{Message: msg, Error: isErr}
}
