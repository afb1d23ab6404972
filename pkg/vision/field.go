// Package vision maintains fog of war for any number of overlapping viewers.
//
// Each cell carries a count of the viewers that currently see it. Adding a
// viewer floods outward from its cell with the shared search machinery and
// increments the counts it reaches; removing it decrements the same set.
// Listeners only hear about 0->1 and 1->0 transitions.
package vision

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/hextactics/pkg/hex"
	"github.com/gravitas-games/hextactics/pkg/search"
)

// Terrain is what a flood needs to know about cells beyond topology.
type Terrain interface {
	search.Topology
	// Explorable reports whether cell may ever be seen. Map borders and void
	// cells are not explorable.
	Explorable(cell int) bool
	// ViewElevation is the height a viewer stands at, or looks up to, at cell.
	ViewElevation(cell int) int
}

// Listener receives visibility transitions.
type Listener interface {
	BecameVisible(cell int)
	BecameHidden(cell int)
}

// ListenerFuncs adapts a pair of functions to Listener. Nil members are skipped.
type ListenerFuncs struct {
	Visible func(cell int)
	Hidden  func(cell int)
}

func (l ListenerFuncs) BecameVisible(cell int) {
	if l.Visible != nil {
		l.Visible(cell)
	}
}

func (l ListenerFuncs) BecameHidden(cell int) {
	if l.Hidden != nil {
		l.Hidden(cell)
	}
}

type viewer struct {
	cell int
	rng  int
}

// Field holds the visibility counts of one side of the game.
type Field struct {
	terrain  Terrain
	counts   []int
	explored []bool
	viewers  map[string]*viewer
	listener Listener
}

// NewField creates an all-hidden field over terrain. listener may be nil.
func NewField(terrain Terrain, listener Listener) *Field {
	n := terrain.Cells()
	return &Field{
		terrain:  terrain,
		counts:   make([]int, n),
		explored: make([]bool, n),
		viewers:  make(map[string]*viewer),
		listener: listener,
	}
}

// SetListener replaces the listener. nil silences the field.
func (f *Field) SetListener(l Listener) { f.listener = l }

// Count returns how many viewers currently see cell.
func (f *Field) Count(cell int) int {
	f.check(cell)
	return f.counts[cell]
}

// Visible reports whether any viewer currently sees cell.
func (f *Field) Visible(cell int) bool { return f.Count(cell) > 0 }

// Explored reports whether cell has ever been visible.
func (f *Field) Explored(cell int) bool {
	f.check(cell)
	return f.explored[cell]
}

// SetExplored marks cell explored without making it visible, for example
// when a side starts with a revealed map.
func (f *Field) SetExplored(cell int, explored bool) {
	f.check(cell)
	f.explored[cell] = explored
}

// VisibleCells returns the cells a viewer at from with the given range sees.
//
// Every step costs one. The range grows with the viewer's own elevation and
// each candidate cell's elevation eats into it. A cell whose step count
// exceeds its straight hex distance is dropped, so sight never bends further
// around obstacles than a direct line would.
func (f *Field) VisibleCells(ctx *search.Context, from, rng int) []int {
	if rng < 0 {
		panic(fmt.Sprintf("vision: negative range %d", rng))
	}
	if ctx.Cells() != len(f.counts) {
		panic(fmt.Sprintf("vision: context sized for %d cells, field has %d", ctx.Cells(), len(f.counts)))
	}
	f.check(from)
	rng += f.terrain.ViewElevation(from)

	var cells []int
	ctx.Start(from, 0)
	for {
		current, ok := ctx.Next()
		if !ok {
			return cells
		}
		cells = append(cells, current)

		distance := ctx.Distance(current) + 1
		for _, d := range hex.Directions {
			next, ok := f.terrain.Neighbor(current, d)
			if !ok || ctx.Settled(next) || !f.terrain.Explorable(next) {
				continue
			}
			if distance+f.terrain.ViewElevation(next) > rng || distance > f.terrain.Distance(from, next) {
				continue
			}
			ctx.Relax(next, current, distance, 0)
		}
	}
}

// Increase adds one viewer's worth of visibility around from.
func (f *Field) Increase(ctx *search.Context, from, rng int) {
	for _, cell := range f.VisibleCells(ctx, from, rng) {
		f.counts[cell]++
		if f.counts[cell] == 1 {
			f.explored[cell] = true
			if f.listener != nil {
				f.listener.BecameVisible(cell)
			}
		}
	}
}

// Decrease withdraws what a matching Increase added. Withdrawing more than
// was added is a caller bug and panics.
func (f *Field) Decrease(ctx *search.Context, from, rng int) {
	for _, cell := range f.VisibleCells(ctx, from, rng) {
		if f.counts[cell] == 0 {
			panic(fmt.Sprintf("vision: visibility of cell %d would go negative", cell))
		}
		f.counts[cell]--
		if f.counts[cell] == 0 && f.listener != nil {
			f.listener.BecameHidden(cell)
		}
	}
}

// Reset recounts visibility from scratch for every registered viewer. Use it
// after a terrain edit made the incremental counts stale. Only the net
// change is reported to the listener.
func (f *Field) Reset(ctx *search.Context) {
	before := mapset.New[int]()
	for cell, n := range f.counts {
		if n > 0 {
			before.Put(cell)
		}
		f.counts[cell] = 0
	}

	listener := f.listener
	f.listener = nil
	for _, v := range f.viewers {
		f.Increase(ctx, v.cell, v.rng)
	}
	f.listener = listener
	if listener == nil {
		return
	}

	before.Each(func(cell int) {
		if f.counts[cell] == 0 {
			listener.BecameHidden(cell)
		}
	})
	for cell, n := range f.counts {
		if n > 0 && !before.Has(cell) {
			listener.BecameVisible(cell)
		}
	}
}

func (f *Field) check(cell int) {
	if cell < 0 || cell >= len(f.counts) {
		panic(fmt.Sprintf("vision: cell %d outside field of %d cells", cell, len(f.counts)))
	}
}
