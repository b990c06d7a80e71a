package stream

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/pkg/errors"
)

func TestEncodeRequests(t *testing.T) {
	data, err := Encode(HostsRequest{})
	assert.Equal(t, err, nil)
	assert.Equal(t, string(data), `{"cmd":"get_all_hosts"}`)

	data, err = Encode(SubscribeRequest{HostID: 3, Filter: ".*error.*", MaxCount: 70})
	assert.Equal(t, err, nil)
	assert.Equal(t, string(data), `{"cmd":"subscribe","hostId":3,"maxCount":70,"regex":".*error.*"}`)

	data, err = Encode(HistoryRequest{RefEntryID: 42, Forwards: false, MaxCount: 30})
	assert.Equal(t, err, nil)
	assert.Equal(t, string(data), `{"cmd":"lazy_load","refEntryId":42,"forwards":false,"maxCount":30}`)
}

func TestDecodeHosts(t *testing.T) {
	ev, err := Decode([]byte(`{"cmd":"get_all_hosts","responseCode":"ok","errorMessage":"","payload":[{"id":1,"ip":"10.0.0.1","name":"web"},{"id":2,"name":"db"}]}`))
	assert.Equal(t, err, nil)

	hosts, ok := ev.(HostsUpdated)
	assert.Equal(t, ok, true)
	assert.Equal(t, len(hosts.Hosts), 2)
	assert.Equal(t, hosts.Hosts[0], Host{ID: 1, IP: "10.0.0.1", Name: "web"})
	assert.Equal(t, hosts.Hosts[1].DisplayName(), "db")
}

func TestDecodeLiveAndHistory(t *testing.T) {
	ev, err := Decode([]byte(`{"cmd":"subscribe","payload":[{"id":8,"text":"a"},{"id":9,"text":"b","hostId":2}]}`))
	assert.Equal(t, err, nil)
	live := ev.(LiveBatch)
	assert.Equal(t, live.Entries, []Entry{{ID: 8, Text: "a"}, {ID: 9, Text: "b", HostID: 2}})

	ev, err = Decode([]byte(`{"cmd":"lazy_load","payload":[{"id":7,"text":"x"}],"top":true}`))
	assert.Equal(t, err, nil)
	history := ev.(HistoryBatch)
	assert.Equal(t, history.Top, true)
	assert.Equal(t, len(history.Entries), 1)

	ev, err = Decode([]byte(`{"cmd":"lazy_load","payload":null}`))
	assert.Equal(t, err, nil)
	assert.Equal(t, len(ev.(HistoryBatch).Entries), 0)
}

func TestDecodeServerError(t *testing.T) {
	ev, err := Decode([]byte(`{"cmd":"subscribe","responseCode":"error","errorMessage":"bad regex"}`))
	assert.Equal(t, err, nil)
	assert.Equal(t, ev, ServerError{Cmd: CmdSubscribe, Code: "error", Message: "bad regex"})
}

func TestDecodeErrors(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"cmd":"unsubscribe","payload":[]}`,
		`{"cmd":"lazy_load","payload":{"id":1}}`,
		`{"cmd":"get_all_hosts","payload":"hosts"}`,
	} {
		ev, err := Decode([]byte(raw))
		assert.Equal(t, ev, nil)

		var decodeErr *ProtocolDecodeError
		assert.Equal(t, errors.As(err, &decodeErr), true)
		assert.Equal(t, decodeErr.Raw, raw)
	}
}

func TestDecodeErrorCause(t *testing.T) {
	_, err := Decode([]byte(`{`))
	var syntaxErr *json.SyntaxError
	assert.Equal(t, errors.As(err, &syntaxErr), true)
}

func TestHostDisplayName(t *testing.T) {
	assert.Equal(t, Host{ID: 1, Name: "web", IP: "10.0.0.1"}.DisplayName(), "web (10.0.0.1)")
	assert.Equal(t, Host{ID: 1, IP: "10.0.0.1"}.DisplayName(), "10.0.0.1")
	assert.Equal(t, Host{ID: 5, Name: "  "}.DisplayName(), "#5")
}
