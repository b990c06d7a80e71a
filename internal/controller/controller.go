package controller

import (
	"fmt"
	"time"

	"github.com/amir20/logview/internal/stream"
	"github.com/amir20/logview/internal/window"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// ErrStaleResponse marks a history batch that no longer belongs to the
// current subscription.
var ErrStaleResponse = errors.New("stale history response")

type Options struct {
	DefaultFilter  string
	InitialFetch   int
	ScrollFetch    int
	Threshold      int
	MaxLiveEntries int
	PendingTimeout time.Duration
	Now            func() time.Time
}

func DefaultOptions() Options {
	return Options{
		DefaultFilter:  ".*",
		InitialFetch:   70,
		ScrollFetch:    30,
		Threshold:      10,
		PendingTimeout: 10 * time.Second,
		Now:            time.Now,
	}
}

// pending is an outstanding lazy_load request. The connection delivers
// responses in request order, so the oldest pending request is the one the
// next history batch answers.
type pending struct {
	seq      uint64
	epoch    uint64
	forwards bool
	sentAt   time.Time
}

// Controller owns the window of one connection and decides what to fetch and
// how inbound batches change it. All methods must be called from one goroutine.
type Controller struct {
	opts     Options
	state    State
	sub      Subscription
	registry Registry
	window   *window.Window
	monitor  *window.Monitor

	epoch   uint64
	seq     uint64
	pending []pending
}

func New(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		opts:    opts,
		window:  window.New(),
		monitor: window.NewMonitor(opts.Threshold),
	}
}

// Dispatch runs one event to completion and returns its effects.
func (c *Controller) Dispatch(ev any) Effects {
	var fx Effects

	switch ev := ev.(type) {
	case Opened:
		c.state = AwaitingHosts
		c.pending = nil
		fx.request(stream.HostsRequest{})
		fx.status("connected, waiting for hosts", false)

	case RefreshHosts:
		if c.state != Idle {
			fx.request(stream.HostsRequest{})
		}

	case stream.HostsUpdated:
		c.hostsUpdated(ev, &fx)

	case CriteriaChanged:
		c.criteriaChanged(ev, &fx)

	case stream.LiveBatch:
		c.liveBatch(ev, &fx)

	case stream.HistoryBatch:
		c.historyBatch(ev, &fx)

	case Scrolled:
		c.scrolled(ev, &fx)

	case stream.ServerError:
		if ev.Cmd == stream.CmdLazyLoad && len(c.pending) > 0 {
			c.pending = c.pending[1:]
		}
		fx.status(fmt.Sprintf("%s failed: %s %s", ev.Cmd, ev.Code, ev.Message), true)

	case stream.ConnectionClosed:
		c.disconnect()
		if ev.Clean {
			fx.status(fmt.Sprintf("connection closed (%d %s)", ev.Code, ev.Reason), true)
		} else {
			fx.status("connection died", true)
		}

	case stream.ConnectionFailed:
		c.disconnect()
		fx.status(fmt.Sprintf("connection failed: %v", ev.Err), true)

	default:
		log.Warnf("controller: unhandled event %T", ev)
	}

	return fx
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Subscription() Subscription {
	return c.sub
}

func (c *Controller) Hosts() []stream.Host {
	return c.registry.Hosts()
}

func (c *Controller) SelectedHost() (stream.Host, bool) {
	return c.registry.Selected()
}

func (c *Controller) Bounds() (window.Bounds, bool) {
	return c.window.Bounds()
}

func (c *Controller) Len() int {
	return c.window.Len()
}

func (c *Controller) Epoch() uint64 {
	return c.epoch
}

// InFlight reports whether a history request of the current subscription is
// still awaiting its response.
func (c *Controller) InFlight() bool {
	now := c.opts.Now()
	return lo.SomeBy(c.pending, func(p pending) bool {
		if p.epoch != c.epoch {
			return false
		}
		return c.opts.PendingTimeout <= 0 || now.Sub(p.sentAt) < c.opts.PendingTimeout
	})
}

func (c *Controller) hostsUpdated(ev stream.HostsUpdated, fx *Effects) {
	changed := c.registry.Replace(ev.Hosts)
	selected, ok := c.registry.Selected()
	if !ok {
		c.state = AwaitingHosts
		c.sub = Subscription{}
		c.clear(fx)
		fx.status("no hosts available", false)
		return
	}

	if !changed && c.state == Subscribed {
		return
	}

	filter := c.opts.DefaultFilter
	if !changed && c.sub.HostID == selected.ID && c.sub.Filter != "" {
		// reconnected, keep what the user had
		filter = c.sub.Filter
	}
	c.subscribe(selected.ID, filter, fx)
}

func (c *Controller) criteriaChanged(ev CriteriaChanged, fx *Effects) {
	if c.state == Idle {
		fx.status("not connected", true)
		return
	}
	if !c.registry.Select(ev.HostID) {
		fx.status(fmt.Sprintf("unknown host #%d", ev.HostID), true)
		return
	}
	c.subscribe(ev.HostID, ev.Filter, fx)
}

func (c *Controller) subscribe(hostID int64, filter string, fx *Effects) {
	c.clear(fx)
	c.epoch++
	c.state = Subscribed
	c.sub = Subscription{HostID: hostID, Filter: filter, FollowBottom: true}

	log.WithFields(log.Fields{"host": hostID, "filter": filter, "epoch": c.epoch}).Info("subscribing")
	fx.request(stream.SubscribeRequest{HostID: hostID, Filter: filter, MaxCount: c.opts.InitialFetch})

	name := fmt.Sprintf("#%d", hostID)
	if host, ok := c.registry.Get(hostID); ok {
		name = host.DisplayName()
	}
	fx.status(fmt.Sprintf("following %s matching %q", name, filter), false)
}

// clear empties the window. Outstanding requests stay queued so their late
// responses are still matched, and rejected by epoch.
func (c *Controller) clear(fx *Effects) {
	c.window.Clear()
	c.monitor.Reset()
	fx.change(Change{Op: OpReset})
}

func (c *Controller) disconnect() {
	c.state = Idle
	c.pending = nil
}

func (c *Controller) liveBatch(ev stream.LiveBatch, fx *Effects) {
	if c.state != Subscribed {
		log.Debugf("dropping %d live entries, not subscribed", len(ev.Entries))
		return
	}
	if !c.sub.FollowBottom {
		log.Debugf("ignoring %d live entries, not at bottom", len(ev.Entries))
		return
	}

	batch := lo.Filter(ev.Entries, func(e stream.Entry, _ int) bool {
		return e.HostID == 0 || e.HostID == c.sub.HostID
	})
	if len(batch) < len(ev.Entries) {
		log.Debugf("dropping %d live entries of another host", len(ev.Entries)-len(batch))
	}

	delta, ok := c.merge(batch, fx)
	if !ok || delta.Inserted() == 0 {
		return
	}

	if c.opts.MaxLiveEntries > 0 && c.window.Len() > c.opts.MaxLiveEntries {
		evicted := c.window.Evict(c.window.Len()-c.opts.MaxLiveEntries, true)
		fx.change(Change{Op: OpEvict, Evicted: evicted, FromTop: true})
	}

	// the view jumps to the bottom, which restarts direction tracking
	c.monitor.Reset()
	fx.Changes[len(fx.Changes)-1].Follow = true
}

func (c *Controller) historyBatch(ev stream.HistoryBatch, fx *Effects) {
	if err := c.claim(ev); err != nil {
		log.WithError(err).Infof("dropping %d history entries", len(ev.Entries))
		return
	}

	if ev.Top {
		c.sub.FollowBottom = true
	}

	delta, ok := c.merge(ev.Entries, fx)
	if !ok || delta.Inserted() == 0 {
		return
	}

	// keep the window size bounded: evict as many as arrived, at the far end
	evicted := c.window.Evict(delta.Inserted(), ev.Top)
	if evicted > 0 {
		fx.change(Change{Op: OpEvict, Evicted: evicted, FromTop: ev.Top})
	}
}

// claim pairs a history batch with the oldest outstanding request.
func (c *Controller) claim(ev stream.HistoryBatch) error {
	if c.state != Subscribed || len(c.pending) == 0 {
		return errors.Wrap(ErrStaleResponse, "no request outstanding")
	}

	head := c.pending[0]
	c.pending = c.pending[1:]

	if head.epoch != c.epoch {
		return errors.Wrapf(ErrStaleResponse, "request #%d from epoch %d, now %d", head.seq, head.epoch, c.epoch)
	}
	if head.forwards != ev.Top {
		log.Warnf("request #%d forwards=%t answered with top=%t", head.seq, head.forwards, ev.Top)
	}
	return nil
}

func (c *Controller) merge(batch []stream.Entry, fx *Effects) (window.Delta, bool) {
	delta, err := c.window.Merge(batch)
	if err != nil {
		log.WithError(err).Warn("dropping batch")
		return delta, false
	}

	if len(delta.Prepended) > 0 {
		fx.change(Change{Op: OpPrepend, Entries: delta.Prepended})
	}
	if len(delta.Appended) > 0 {
		fx.change(Change{Op: OpAppend, Entries: delta.Appended})
	}
	return delta, true
}

func (c *Controller) scrolled(ev Scrolled, fx *Effects) {
	if c.state != Subscribed {
		return
	}

	bounds, ok := c.window.Bounds()
	sig := c.monitor.Observe(ev.Viewport, bounds, ok)
	if sig.LeftTail && c.sub.FollowBottom {
		c.sub.FollowBottom = false
		log.Debug("left the live tail")
	}

	if sig.Kind == window.NoSignal {
		return
	}
	if c.InFlight() {
		log.Debugf("%s ignored, history request in flight", sig.Kind)
		return
	}

	c.seq++
	forwards := sig.Kind == window.NeedNewer
	c.pending = append(c.pending, pending{seq: c.seq, epoch: c.epoch, forwards: forwards, sentAt: c.opts.Now()})

	log.WithFields(log.Fields{"ref": sig.Ref, "forwards": forwards, "seq": c.seq}).Debug("lazy loading")
	fx.request(stream.HistoryRequest{RefEntryID: sig.Ref, Forwards: forwards, MaxCount: c.opts.ScrollFetch})
}
