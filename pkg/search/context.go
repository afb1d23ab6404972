// Package search runs shortest-path and flood-fill queries over a hex grid
// without clearing per-cell scratch state between queries.
//
// Every query shares one Context: a flat array of Records, one per cell, and
// a bucket queue whose chains are threaded through those records. A record is
// trusted only when its Phase belongs to the running query; anything older
// is treated as unvisited. Queries are not reentrant and a new query silently
// invalidates the scratch state of the previous one, so callers keep only the
// reconstructed outputs.
package search

import (
	"fmt"
	"math"

	"github.com/gravitas-games/hextactics/pkg/hex"
)

// Topology is the grid shape a query walks over. *hex.Grid satisfies it.
type Topology interface {
	Cells() int
	Neighbor(cell int, d hex.Direction) (int, bool)
	Distance(a, b int) int
}

// Record is the per-cell scratch state of a query.
type Record struct {
	Distance    int
	Predecessor int
	Heuristic   int
	// Phase is the query generation that last wrote this record. It equals the
	// active phase while enqueued and phase+1 once settled.
	Phase uint32

	next int
}

// Priority is the queue key of the record.
func (r *Record) Priority() int { return r.Distance + r.Heuristic }

// Context owns the scratch records and the queue for one grid.
type Context struct {
	records []Record
	phase   uint32
	queue   Queue
}

// NewContext sizes a context for a grid of cells cells.
func NewContext(cells int) *Context {
	c := &Context{}
	c.Resize(cells)
	return c
}

// Resize reallocates the records after the grid itself was reallocated.
func (c *Context) Resize(cells int) {
	if cells < 0 {
		panic(fmt.Sprintf("search: negative cell count %d", cells))
	}
	c.records = make([]Record, cells)
	for i := range c.records {
		c.records[i].next = noCell
	}
	c.phase = 0
	c.queue.reset(c.records)
}

// Cells returns the number of records.
func (c *Context) Cells() int { return len(c.records) }

// Phase returns the base phase of the running query.
func (c *Context) Phase() uint32 { return c.phase }

// Start begins a new query rooted at source with the given heuristic
// estimate. Work done is proportional to the cells the query touches.
func (c *Context) Start(source, heuristic int) {
	c.check(source)
	if c.phase >= math.MaxUint32-2 {
		// Rare wraparound: wipe stamps so no stale record looks current.
		for i := range c.records {
			c.records[i].Phase = 0
		}
		c.phase = 0
	}
	c.phase += 2
	c.queue.Clear()

	r := &c.records[source]
	r.Phase = c.phase
	r.Distance = 0
	r.Predecessor = noCell
	r.Heuristic = heuristic
	c.queue.Enqueue(source)
}

// Next pops the lowest-priority frontier cell and marks it settled. It
// returns false once the frontier is empty.
func (c *Context) Next() (int, bool) {
	cell, ok := c.queue.PopMinimum()
	if !ok {
		return noCell, false
	}
	c.records[cell].Phase = c.phase + 1
	return cell, true
}

// Relax offers cell a path of the given distance through pred. Settled cells
// are left alone. An unvisited cell is stamped and enqueued; a frontier cell
// is moved to a lower bucket if distance improves on its current best. It
// reports whether the record changed.
func (c *Context) Relax(cell, pred, distance, heuristic int) bool {
	c.check(cell)
	r := &c.records[cell]
	switch {
	case r.Phase > c.phase:
		return false
	case r.Phase < c.phase:
		r.Phase = c.phase
		r.Distance = distance
		r.Predecessor = pred
		r.Heuristic = heuristic
		c.queue.Enqueue(cell)
		return true
	case distance < r.Distance:
		old := r.Priority()
		r.Distance = distance
		r.Predecessor = pred
		c.queue.Change(cell, old)
		return true
	}
	return false
}

// Visited reports whether the running query has reached cell.
func (c *Context) Visited(cell int) bool {
	c.check(cell)
	return c.phase != 0 && c.records[cell].Phase >= c.phase
}

// Settled reports whether cell was finally popped by the running query.
func (c *Context) Settled(cell int) bool {
	c.check(cell)
	return c.records[cell].Phase > c.phase
}

// Distance returns the best known distance to cell in the running query.
func (c *Context) Distance(cell int) int {
	c.check(cell)
	return c.records[cell].Distance
}

// Predecessor returns the cell the best known path to cell arrives from, or
// -1 for the source.
func (c *Context) Predecessor(cell int) int {
	c.check(cell)
	return c.records[cell].Predecessor
}

func (c *Context) check(cell int) {
	if cell < 0 || cell >= len(c.records) {
		panic(fmt.Sprintf("search: cell %d outside context of %d cells", cell, len(c.records)))
	}
}
