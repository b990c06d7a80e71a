package window

type SignalKind int

const (
	NoSignal SignalKind = iota
	NeedOlder
	NeedNewer
)

func (k SignalKind) String() string {
	switch k {
	case NeedOlder:
		return "need-older"
	case NeedNewer:
		return "need-newer"
	default:
		return "none"
	}
}

// Viewport is one observation of the scroll position, in rows. FirstBottom
// is the row just past the first entry, LastBottom the row just past the last.
// Up marks an observation caused by upward input, so it counts as moving up
// even when the offset could not change.
type Viewport struct {
	Offset      int
	Height      int
	FirstBottom int
	LastBottom  int
	Up          bool
}

// Signal is what the monitor asks for after an observation. Ref is the
// boundary id the fetch is relative to. LeftTail is set whenever the viewer
// scrolled up.
type Signal struct {
	Kind     SignalKind
	Ref      int64
	LeftTail bool
}

// Monitor derives scroll direction from consecutive offsets and decides when
// a boundary is close enough to the visible edge to fetch more.
type Monitor struct {
	Threshold int

	last       int
	calibrated bool
}

func NewMonitor(threshold int) *Monitor {
	return &Monitor{Threshold: threshold}
}

// Reset forgets the baseline so the next observation only calibrates.
func (m *Monitor) Reset() {
	m.calibrated = false
	m.last = 0
}

func (m *Monitor) Observe(vp Viewport, bounds Bounds, ok bool) Signal {
	if !ok {
		return Signal{}
	}

	if !m.calibrated {
		m.last = vp.Offset
		m.calibrated = true
		return Signal{}
	}

	scrollingUp := false
	switch {
	case vp.Offset > m.last:
		m.last = vp.Offset
	case vp.Offset < m.last:
		m.last = vp.Offset
		scrollingUp = true
	default:
		scrollingUp = vp.Up
	}

	if scrollingUp && vp.Offset < vp.FirstBottom+m.Threshold {
		return Signal{Kind: NeedOlder, Ref: bounds.Min, LeftTail: true}
	}

	if !scrollingUp && vp.Offset+vp.Height > vp.LastBottom-m.Threshold {
		return Signal{Kind: NeedNewer, Ref: bounds.Max}
	}

	return Signal{LeftTail: scrollingUp}
}
