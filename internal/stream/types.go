package stream

import (
	"fmt"
	"strings"
)

// Entry is a single log record as delivered by the receiver.
type Entry struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	HostID int64  `json:"hostId,omitempty"`
}

type Host struct {
	ID   int64  `json:"id"`
	IP   string `json:"ip,omitempty"`
	Name string `json:"name,omitempty"`
}

// DisplayName returns the label shown in the host picker.
func (h Host) DisplayName() string {
	name := strings.TrimSpace(h.Name)
	switch {
	case name != "" && h.IP != "":
		return fmt.Sprintf("%s (%s)", name, h.IP)
	case name != "":
		return name
	case h.IP != "":
		return h.IP
	}
	return fmt.Sprintf("#%d", h.ID)
}

type Command string

const (
	CmdGetAllHosts Command = "get_all_hosts"
	CmdSubscribe   Command = "subscribe"
	CmdLazyLoad    Command = "lazy_load"
)

// Event is anything the client reports back from the connection.
type Event interface {
	event()
}

type HostsUpdated struct {
	Hosts []Host
}

// HistoryBatch answers a lazy_load request. Top is the wire flag: true when the
// batch satisfies a forwards request, so the caller evicts from the top.
type HistoryBatch struct {
	Entries []Entry
	Top     bool
}

type LiveBatch struct {
	Entries []Entry
}

type ServerError struct {
	Cmd     Command
	Code    string
	Message string
}

type ConnectionClosed struct {
	Clean  bool
	Code   int
	Reason string
}

type ConnectionFailed struct {
	Err error
}

func (HostsUpdated) event()     {}
func (HistoryBatch) event()     {}
func (LiveBatch) event()        {}
func (ServerError) event()      {}
func (ConnectionClosed) event() {}
func (ConnectionFailed) event() {}

// Request is an outbound message. The concrete types are HostsRequest,
// SubscribeRequest and HistoryRequest.
type Request interface {
	Command() Command
}

type HostsRequest struct{}

type SubscribeRequest struct {
	HostID   int64
	Filter   string
	MaxCount int
}

// HistoryRequest asks for up to MaxCount entries older (Forwards=false) or
// newer (Forwards=true) than RefEntryID.
type HistoryRequest struct {
	RefEntryID int64
	Forwards   bool
	MaxCount   int
}

func (HostsRequest) Command() Command     { return CmdGetAllHosts }
func (SubscribeRequest) Command() Command { return CmdSubscribe }
func (HistoryRequest) Command() Command   { return CmdLazyLoad }
