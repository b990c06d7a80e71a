package controller

import (
	"github.com/amir20/logview/internal/stream"

	"github.com/samber/lo"
)

// Registry is the ordered set of known hosts plus the current selection.
type Registry struct {
	hosts    []stream.Host
	selected int64
	hasSel   bool
}

// Replace swaps in a fresh host list. Hosts that are still present keep their
// position, vanished ones are removed and new ones are appended in the order
// given. The selection survives if its host survived, otherwise the first host
// is selected. It reports whether the selection changed.
func (r *Registry) Replace(hosts []stream.Host) bool {
	incoming := lo.KeyBy(hosts, func(h stream.Host) int64 { return h.ID })

	kept := lo.FilterMap(r.hosts, func(h stream.Host, _ int) (stream.Host, bool) {
		fresh, ok := incoming[h.ID]
		return fresh, ok
	})
	known := lo.SliceToMap(kept, func(h stream.Host) (int64, struct{}) { return h.ID, struct{}{} })
	added := lo.UniqBy(lo.Filter(hosts, func(h stream.Host, _ int) bool {
		_, ok := known[h.ID]
		return !ok
	}), func(h stream.Host) int64 { return h.ID })

	r.hosts = append(kept, added...)

	prev, hadSel := r.selected, r.hasSel
	if _, ok := incoming[r.selected]; !r.hasSel || !ok {
		r.hasSel = len(r.hosts) > 0
		r.selected = 0
		if r.hasSel {
			r.selected = r.hosts[0].ID
		}
	}

	return hadSel != r.hasSel || prev != r.selected
}

// Select makes id the current host. It fails for unknown ids.
func (r *Registry) Select(id int64) bool {
	if _, ok := r.Get(id); !ok {
		return false
	}
	r.selected, r.hasSel = id, true
	return true
}

func (r *Registry) Get(id int64) (stream.Host, bool) {
	return lo.Find(r.hosts, func(h stream.Host) bool { return h.ID == id })
}

func (r *Registry) Selected() (stream.Host, bool) {
	if !r.hasSel {
		return stream.Host{}, false
	}
	return r.Get(r.selected)
}

func (r *Registry) Hosts() []stream.Host {
	return append([]stream.Host(nil), r.hosts...)
}

func (r *Registry) Len() int {
	return len(r.hosts)
}
