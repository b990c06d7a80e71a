package controller

import (
	"testing"
	"time"

	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/window"

	"github.com/go-playground/assert/v2"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func span(from, to int64) []stream.Entry {
	var out []stream.Entry
	for id := from; id <= to; id++ {
		out = append(out, stream.Entry{ID: id})
	}
	return out
}

func newController() (*Controller, *clock) {
	clk := &clock{now: time.Unix(1700000000, 0)}
	opts := DefaultOptions()
	opts.Now = clk.Now
	opts.Threshold = 2
	return New(opts), clk
}

// subscribed returns a controller following host 1 with the given initial entries.
func subscribed(t *testing.T, initial []stream.Entry) (*Controller, *clock) {
	t.Helper()
	c, clk := newController()
	c.Dispatch(Opened{})
	c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1, Name: "A"}}})
	c.Dispatch(stream.LiveBatch{Entries: initial})
	assert.Equal(t, c.State(), Subscribed)
	assert.Equal(t, c.Len(), len(initial))
	return c, clk
}

// observe scrolls through the given offsets, one row per entry in a five row
// viewport, and returns the effects of the last observation.
func observe(c *Controller, offsets ...int) Effects {
	var fx Effects
	for _, offset := range offsets {
		vp := window.Viewport{Offset: offset, Height: 5, FirstBottom: 1, LastBottom: c.Len()}
		fx = c.Dispatch(Scrolled{Viewport: vp})
	}
	return fx
}

func TestOpenRequestsHosts(t *testing.T) {
	c, _ := newController()
	assert.Equal(t, c.State(), Idle)

	fx := c.Dispatch(Opened{})
	assert.Equal(t, c.State(), AwaitingHosts)
	assert.Equal(t, fx.Requests, []stream.Request{stream.HostsRequest{}})
}

func TestFirstHostsSubscribe(t *testing.T) {
	c, _ := newController()
	c.Dispatch(Opened{})

	fx := c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}})
	assert.Equal(t, c.State(), Subscribed)
	assert.Equal(t, fx.Requests, []stream.Request{stream.SubscribeRequest{HostID: 1, Filter: ".*", MaxCount: 70}})
	assert.Equal(t, fx.Changes, []Change{{Op: OpReset}})
	assert.Equal(t, c.Subscription(), Subscription{HostID: 1, Filter: ".*", FollowBottom: true})
}

func TestInitialBatchFillsEmptyWindow(t *testing.T) {
	c, _ := subscribed(t, nil)

	fx := c.Dispatch(stream.LiveBatch{Entries: span(1, 3)})
	assert.Equal(t, len(fx.Changes), 1)
	assert.Equal(t, fx.Changes[0].Op, OpAppend)
	assert.Equal(t, fx.Changes[0].Follow, true)

	b, _ := c.Bounds()
	assert.Equal(t, b, window.Bounds{Min: 1, Max: 3})
}

func TestLiveBatchAppendsWithoutEviction(t *testing.T) {
	c, _ := subscribed(t, span(5, 7))

	fx := c.Dispatch(stream.LiveBatch{Entries: span(8, 9)})
	assert.Equal(t, fx.Changes, []Change{{Op: OpAppend, Entries: span(8, 9), Follow: true}})
	assert.Equal(t, c.Len(), 5)
	b, _ := c.Bounds()
	assert.Equal(t, b, window.Bounds{Min: 5, Max: 9})
}

func TestLiveBatchDiscardedAwayFromTail(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))

	fx := observe(c, 6, 4)
	assert.Equal(t, c.Subscription().FollowBottom, false)
	assert.Equal(t, len(fx.Requests), 0)

	fx = c.Dispatch(stream.LiveBatch{Entries: span(21, 22)})
	assert.Equal(t, len(fx.Changes), 0)
	assert.Equal(t, c.Len(), 11)
}

func TestLiveBatchOfOtherHostDropped(t *testing.T) {
	c, _ := subscribed(t, span(1, 3))

	fx := c.Dispatch(stream.LiveBatch{Entries: []stream.Entry{{ID: 4, HostID: 2}, {ID: 5, HostID: 1}}})
	assert.Equal(t, len(fx.Changes), 1)
	assert.Equal(t, fx.Changes[0].Entries, []stream.Entry{{ID: 5, HostID: 1}})
}

func TestLiveBatchCap(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	opts := DefaultOptions()
	opts.Now = clk.Now
	opts.MaxLiveEntries = 4
	c := New(opts)
	c.Dispatch(Opened{})
	c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1}}})
	c.Dispatch(stream.LiveBatch{Entries: span(1, 3)})

	fx := c.Dispatch(stream.LiveBatch{Entries: span(4, 6)})
	assert.Equal(t, fx.Changes, []Change{
		{Op: OpAppend, Entries: span(4, 6)},
		{Op: OpEvict, Evicted: 2, FromTop: true, Follow: true},
	})
	b, _ := c.Bounds()
	assert.Equal(t, b, window.Bounds{Min: 3, Max: 6})
}

func TestHistoryOlderPrependsAndEvictsBottom(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))

	fx := observe(c, 6, 0)
	assert.Equal(t, fx.Requests, []stream.Request{stream.HistoryRequest{RefEntryID: 10, Forwards: false, MaxCount: 30}})
	assert.Equal(t, c.InFlight(), true)

	fx = c.Dispatch(stream.HistoryBatch{Entries: span(7, 9), Top: false})
	assert.Equal(t, fx.Changes, []Change{
		{Op: OpPrepend, Entries: span(7, 9)},
		{Op: OpEvict, Evicted: 3, FromTop: false},
	})
	assert.Equal(t, c.Len(), 11)
	b, _ := c.Bounds()
	assert.Equal(t, b, window.Bounds{Min: 7, Max: 17})
	assert.Equal(t, c.InFlight(), false)
}

func TestHistoryNewerAppendsEvictsTopAndFollows(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))
	observe(c, 6, 2)
	assert.Equal(t, c.Subscription().FollowBottom, false)
	c.Dispatch(stream.HistoryBatch{Entries: span(8, 9)})

	fx := observe(c, 6)
	assert.Equal(t, fx.Requests, []stream.Request{stream.HistoryRequest{RefEntryID: 18, Forwards: true, MaxCount: 30}})

	fx = c.Dispatch(stream.HistoryBatch{Entries: span(19, 22), Top: true})
	assert.Equal(t, fx.Changes, []Change{
		{Op: OpAppend, Entries: span(19, 22)},
		{Op: OpEvict, Evicted: 4, FromTop: true},
	})
	b, _ := c.Bounds()
	assert.Equal(t, b, window.Bounds{Min: 12, Max: 22})
	assert.Equal(t, c.Subscription().FollowBottom, true)
}

func TestSubsetHistoryBatchDropped(t *testing.T) {
	c, _ := subscribed(t, span(10, 12))
	observe(c, 3, 0)

	fx := c.Dispatch(stream.HistoryBatch{Entries: span(11, 12)})
	assert.Equal(t, len(fx.Changes), 0)
	assert.Equal(t, c.Len(), 3)
	assert.Equal(t, c.InFlight(), false)
}

func TestSingleFlight(t *testing.T) {
	c, clk := subscribed(t, span(10, 20))

	fx := observe(c, 6, 0)
	assert.Equal(t, len(fx.Requests), 1)

	// monitor still wants older data but the first request is outstanding
	fx = observe(c, 3, 0)
	assert.Equal(t, len(fx.Requests), 0)

	clk.Advance(11 * time.Second)
	fx = observe(c, 3, 0)
	assert.Equal(t, len(fx.Requests), 1)
}

func TestStaleHistoryAfterResubscribe(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))
	observe(c, 6, 0)
	epoch := c.Epoch()

	c.Dispatch(CriteriaChanged{HostID: 1, Filter: "error"})
	assert.Equal(t, c.Epoch(), epoch+1)
	c.Dispatch(stream.LiveBatch{Entries: span(100, 105)})

	// the new subscription may lazy load right away
	fx := observe(c, 3, 0)
	assert.Equal(t, fx.Requests, []stream.Request{stream.HistoryRequest{RefEntryID: 100, MaxCount: 30}})

	// answer to the request of the previous epoch
	fx = c.Dispatch(stream.HistoryBatch{Entries: span(7, 9)})
	assert.Equal(t, len(fx.Changes), 0)
	assert.Equal(t, c.Len(), 6)

	fx = c.Dispatch(stream.HistoryBatch{Entries: span(97, 99)})
	assert.Equal(t, len(fx.Changes), 2)
	assert.Equal(t, c.Len(), 6)
}

func TestUnsolicitedHistoryDropped(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))
	fx := c.Dispatch(stream.HistoryBatch{Entries: span(7, 9)})
	assert.Equal(t, len(fx.Changes), 0)
	assert.Equal(t, c.Len(), 11)
}

func TestCriteriaChangedResets(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))
	c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}})
	observe(c, 6, 4)
	assert.Equal(t, c.Subscription().FollowBottom, false)

	fx := c.Dispatch(CriteriaChanged{HostID: 2, Filter: "kernel"})
	assert.Equal(t, fx.Changes, []Change{{Op: OpReset}})
	assert.Equal(t, fx.Requests, []stream.Request{stream.SubscribeRequest{HostID: 2, Filter: "kernel", MaxCount: 70}})
	assert.Equal(t, c.Subscription(), Subscription{HostID: 2, Filter: "kernel", FollowBottom: true})
	assert.Equal(t, c.Len(), 0)
	host, _ := c.SelectedHost()
	assert.Equal(t, host.ID, int64(2))
}

func TestCriteriaChangedUnknownHost(t *testing.T) {
	c, _ := subscribed(t, span(1, 3))
	fx := c.Dispatch(CriteriaChanged{HostID: 9, Filter: ".*"})
	assert.Equal(t, len(fx.Requests), 0)
	assert.Equal(t, fx.Status.Error, true)
	assert.Equal(t, c.Len(), 3)
}

func TestSelectedHostVanishes(t *testing.T) {
	c, _ := newController()
	c.Dispatch(Opened{})
	c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}})
	c.Dispatch(stream.LiveBatch{Entries: span(1, 5)})

	fx := c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 2, Name: "B"}, {ID: 3, Name: "C"}}})
	assert.Equal(t, c.Hosts(), []stream.Host{{ID: 2, Name: "B"}, {ID: 3, Name: "C"}})
	assert.Equal(t, fx.Requests, []stream.Request{stream.SubscribeRequest{HostID: 2, Filter: ".*", MaxCount: 70}})
	assert.Equal(t, fx.Changes, []Change{{Op: OpReset}})
	assert.Equal(t, c.Len(), 0)
}

func TestUnchangedSelectionKeepsWindow(t *testing.T) {
	c, _ := subscribed(t, span(1, 5))
	fx := c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1, Name: "A"}, {ID: 4, Name: "D"}}})
	assert.Equal(t, len(fx.Requests), 0)
	assert.Equal(t, len(fx.Changes), 0)
	assert.Equal(t, c.Len(), 5)
}

func TestAllHostsVanish(t *testing.T) {
	c, _ := subscribed(t, span(1, 5))
	fx := c.Dispatch(stream.HostsUpdated{})
	assert.Equal(t, c.State(), AwaitingHosts)
	assert.Equal(t, fx.Changes, []Change{{Op: OpReset}})
	assert.Equal(t, len(fx.Requests), 0)
	assert.Equal(t, c.Len(), 0)
}

func TestConnectionLossAndReconnect(t *testing.T) {
	c, _ := subscribed(t, span(1, 5))
	c.Dispatch(CriteriaChanged{HostID: 1, Filter: "sshd"})

	fx := c.Dispatch(stream.ConnectionClosed{Clean: false, Code: 1006})
	assert.Equal(t, c.State(), Idle)
	assert.Equal(t, fx.Status.Error, true)
	assert.Equal(t, len(fx.Requests), 0)

	// nothing is sent while disconnected
	assert.Equal(t, len(c.Dispatch(RefreshHosts{}).Requests), 0)

	c.Dispatch(Opened{})
	fx = c.Dispatch(stream.HostsUpdated{Hosts: []stream.Host{{ID: 1, Name: "A"}}})
	assert.Equal(t, fx.Requests, []stream.Request{stream.SubscribeRequest{HostID: 1, Filter: "sshd", MaxCount: 70}})
}

func TestConnectionFailed(t *testing.T) {
	c, _ := subscribed(t, span(1, 5))
	fx := c.Dispatch(stream.ConnectionFailed{Err: assertErr("boom")})
	assert.Equal(t, c.State(), Idle)
	assert.Equal(t, fx.Status.Message, "connection failed: boom")
}

func TestServerErrorReleasesPending(t *testing.T) {
	c, _ := subscribed(t, span(10, 20))
	observe(c, 6, 0)
	assert.Equal(t, c.InFlight(), true)

	fx := c.Dispatch(stream.ServerError{Cmd: stream.CmdLazyLoad, Code: "error", Message: "db down"})
	assert.Equal(t, fx.Status.Error, true)
	assert.Equal(t, c.InFlight(), false)
}

func TestScrollIgnoredWhenNotSubscribed(t *testing.T) {
	c, _ := newController()
	fx := c.Dispatch(Scrolled{Viewport: window.Viewport{Offset: 0}})
	assert.Equal(t, len(fx.Requests), 0)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
