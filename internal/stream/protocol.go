package stream

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

const responseOK = "ok"

// ProtocolDecodeError is returned for inbound messages that cannot be parsed
// or carry an unknown command. The message is dropped by the caller.
type ProtocolDecodeError struct {
	Raw string
	Err error
}

func (e *ProtocolDecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", truncate(e.Raw, 80), e.Err)
}

func (e *ProtocolDecodeError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the underlying error.
func (e *ProtocolDecodeError) Cause() error { return e.Err }

type response struct {
	Cmd          Command         `json:"cmd"`
	ResponseCode string          `json:"responseCode"`
	ErrorMessage string          `json:"errorMessage"`
	Payload      json.RawMessage `json:"payload"`
	Top          bool            `json:"top"`
}

type hostsMessage struct {
	Cmd Command `json:"cmd"`
}

type subscribeMessage struct {
	Cmd      Command `json:"cmd"`
	HostID   int64   `json:"hostId"`
	MaxCount int     `json:"maxCount"`
	Regex    string  `json:"regex"`
}

type lazyLoadMessage struct {
	Cmd        Command `json:"cmd"`
	RefEntryID int64   `json:"refEntryId"`
	Forwards   bool    `json:"forwards"`
	MaxCount   int     `json:"maxCount"`
}

// Encode renders an outbound request as a JSON text frame.
func Encode(req Request) ([]byte, error) {
	var msg any
	switch r := req.(type) {
	case HostsRequest:
		msg = hostsMessage{Cmd: CmdGetAllHosts}
	case SubscribeRequest:
		msg = subscribeMessage{Cmd: CmdSubscribe, HostID: r.HostID, MaxCount: r.MaxCount, Regex: r.Filter}
	case HistoryRequest:
		msg = lazyLoadMessage{Cmd: CmdLazyLoad, RefEntryID: r.RefEntryID, Forwards: r.Forwards, MaxCount: r.MaxCount}
	default:
		return nil, errors.Errorf("unsupported request %T", req)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", req.Command())
	}
	return data, nil
}

// Decode turns one inbound frame into an Event. Entries are passed through in
// the order the server sent them; the server sorts them ascending by id.
func Decode(data []byte) (Event, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ProtocolDecodeError{Raw: string(data), Err: err}
	}

	switch resp.Cmd {
	case CmdGetAllHosts, CmdSubscribe, CmdLazyLoad:
	default:
		return nil, &ProtocolDecodeError{Raw: string(data), Err: errors.Errorf("unknown command %q", resp.Cmd)}
	}

	if resp.ResponseCode != "" && resp.ResponseCode != responseOK {
		return ServerError{Cmd: resp.Cmd, Code: resp.ResponseCode, Message: resp.ErrorMessage}, nil
	}

	switch resp.Cmd {
	case CmdGetAllHosts:
		var hosts []Host
		if err := decodePayload(resp.Payload, &hosts); err != nil {
			return nil, &ProtocolDecodeError{Raw: string(data), Err: err}
		}
		return HostsUpdated{Hosts: hosts}, nil

	case CmdSubscribe:
		var entries []Entry
		if err := decodePayload(resp.Payload, &entries); err != nil {
			return nil, &ProtocolDecodeError{Raw: string(data), Err: err}
		}
		return LiveBatch{Entries: entries}, nil

	default:
		var entries []Entry
		if err := decodePayload(resp.Payload, &entries); err != nil {
			return nil, &ProtocolDecodeError{Raw: string(data), Err: err}
		}
		return HistoryBatch{Entries: entries, Top: resp.Top}, nil
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, v), "payload")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
