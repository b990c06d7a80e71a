package window

import (
	"github.com/amir20/logview/internal/stream"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrRangeOverlap is returned by Merge for a batch that lies inside the
// current range without extending it. Such a batch is not applied.
var ErrRangeOverlap = errors.New("batch overlaps window without extending it")

type Bounds struct {
	Min int64
	Max int64
}

// Delta describes what a Merge inserted at each end.
type Delta struct {
	Prepended []stream.Entry
	Appended  []stream.Entry
}

func (d Delta) Inserted() int {
	return len(d.Prepended) + len(d.Appended)
}

// Window holds the materialized part of a remote log, sorted ascending by id
// with no duplicate ids. It is not safe for concurrent use.
type Window struct {
	entries []stream.Entry
	bounds  Bounds
}

func New() *Window {
	return &Window{}
}

// Merge places an ascending batch in front of or behind the current entries.
// Entries whose id falls inside the current bounds are dropped first.
func (w *Window) Merge(batch []stream.Entry) (Delta, error) {
	if len(batch) == 0 {
		return Delta{}, nil
	}

	if len(w.entries) == 0 {
		w.entries = append(make([]stream.Entry, 0, len(batch)), batch...)
		w.rescan()
		return Delta{Appended: batch}, nil
	}

	first, last := batch[0].ID, batch[len(batch)-1].ID
	switch {
	case last <= w.bounds.Min || first < w.bounds.Min:
	case first >= w.bounds.Max || last > w.bounds.Max:
	default:
		return Delta{}, errors.Wrapf(ErrRangeOverlap, "batch [%d-%d], window [%d-%d]", first, last, w.bounds.Min, w.bounds.Max)
	}

	fresh := lo.Reject(batch, func(e stream.Entry, _ int) bool {
		return e.ID >= w.bounds.Min && e.ID <= w.bounds.Max
	})

	// a batch spanning the whole window splits around it
	var delta Delta
	delta.Prepended = lo.Filter(fresh, func(e stream.Entry, _ int) bool { return e.ID < w.bounds.Min })
	delta.Appended = lo.Filter(fresh, func(e stream.Entry, _ int) bool { return e.ID > w.bounds.Max })

	if len(delta.Prepended) > 0 {
		merged := make([]stream.Entry, 0, len(delta.Prepended)+len(w.entries)+len(delta.Appended))
		merged = append(merged, delta.Prepended...)
		w.entries = append(merged, w.entries...)
	}
	w.entries = append(w.entries, delta.Appended...)
	w.rescan()

	return delta, nil
}

// Evict removes up to count entries from the top or the bottom and returns
// how many were removed.
func (w *Window) Evict(count int, fromTop bool) int {
	if count <= 0 || len(w.entries) == 0 {
		return 0
	}
	count = min(count, len(w.entries))

	if fromTop {
		w.entries = append(w.entries[:0:0], w.entries[count:]...)
	} else {
		w.entries = w.entries[:len(w.entries)-count]
	}
	w.rescan()
	return count
}

// Bounds returns the smallest and largest id held, ok is false when empty.
func (w *Window) Bounds() (Bounds, bool) {
	return w.bounds, len(w.entries) > 0
}

func (w *Window) Len() int {
	return len(w.entries)
}

func (w *Window) At(i int) stream.Entry {
	return w.entries[i]
}

// Entries returns a copy of the window contents.
func (w *Window) Entries() []stream.Entry {
	return append([]stream.Entry(nil), w.entries...)
}

func (w *Window) Clear() {
	w.entries = nil
	w.bounds = Bounds{}
}

// rescan recomputes the bounds over every entry since eviction can move
// either extreme.
func (w *Window) rescan() {
	if len(w.entries) == 0 {
		w.bounds = Bounds{}
		return
	}
	ids := lo.Map(w.entries, func(e stream.Entry, _ int) int64 { return e.ID })
	w.bounds = Bounds{Min: lo.Min(ids), Max: lo.Max(ids)}
}
