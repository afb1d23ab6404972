package vision

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Recorder is a Listener that accumulates the net visibility change of a
// batch of operations. A cell hidden and shown again within one batch
// cancels out.
type Recorder struct {
	visible mapset.Set[int]
	hidden  mapset.Set[int]
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		visible: mapset.New[int](),
		hidden:  mapset.New[int](),
	}
}

func (r *Recorder) BecameVisible(cell int) {
	if r.hidden.Has(cell) {
		r.hidden.Remove(cell)
		return
	}
	r.visible.Put(cell)
}

func (r *Recorder) BecameHidden(cell int) {
	if r.visible.Has(cell) {
		r.visible.Remove(cell)
		return
	}
	r.hidden.Put(cell)
}

// Empty reports whether the batch changed nothing.
func (r *Recorder) Empty() bool { return r.visible.Size() == 0 && r.hidden.Size() == 0 }

// Drain returns the cells that became visible and hidden, both sorted, and
// starts a new batch.
func (r *Recorder) Drain() (visible, hidden []int) {
	visible, hidden = sorted(r.visible), sorted(r.hidden)
	r.visible = mapset.New[int]()
	r.hidden = mapset.New[int]()
	return visible, hidden
}

func sorted(s mapset.Set[int]) []int {
	out := make([]int, 0, s.Size())
	s.Each(func(cell int) { out = append(out, cell) })
	sort.Ints(out)
	return out
}
