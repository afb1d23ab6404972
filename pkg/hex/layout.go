package hex

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Grid is a rectangular hex map of Width*Height cells addressed by a dense
// index z*Width + x. When Wrap is set the map wraps east-west.
type Grid struct {
	Width  int
	Height int
	Wrap   bool

	coords []Cube
}

// NewGrid allocates the topology for a width x height map and derives the
// cube coordinate of every cell once.
func NewGrid(width, height int, wrap bool) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("hex: invalid grid size %dx%d", width, height))
	}
	g := &Grid{
		Width:  width,
		Height: height,
		Wrap:   wrap,
		coords: make([]Cube, width*height),
	}
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			g.coords[z*width+x] = FromOffset(Offset{X: x, Z: z})
		}
	}
	return g
}

// Cells returns the number of cells in the grid.
func (g *Grid) Cells() int { return len(g.coords) }

// Index returns the cell at offset o, or false if o lies outside the map.
// X wraps when the grid wraps.
func (g *Grid) Index(o Offset) (int, bool) {
	if o.Z < 0 || o.Z >= g.Height {
		return -1, false
	}
	if g.Wrap {
		o.X = ((o.X % g.Width) + g.Width) % g.Width
	} else if o.X < 0 || o.X >= g.Width {
		return -1, false
	}
	return o.Z*g.Width + o.X, true
}

// MustIndex is Index for offsets the caller knows to be on the map.
func (g *Grid) MustIndex(o Offset) int {
	cell, ok := g.Index(o)
	if !ok {
		panic(fmt.Sprintf("hex: offset (%d,%d) outside %dx%d grid", o.X, o.Z, g.Width, g.Height))
	}
	return cell
}

// Offset returns the rectangular position of cell.
func (g *Grid) Offset(cell int) Offset {
	g.check(cell)
	return Offset{X: cell % g.Width, Z: cell / g.Width}
}

// Coord returns the cube coordinate of cell.
func (g *Grid) Coord(cell int) Cube {
	g.check(cell)
	return g.coords[cell]
}

// CellAt looks up the cell at cube coordinate c.
func (g *Grid) CellAt(c Cube) (int, bool) {
	return g.Index(c.ToOffset())
}

// Neighbor returns the cell one step from cell in direction d. It reports
// false at the map edge instead of returning an invalid cell.
func (g *Grid) Neighbor(cell int, d Direction) (int, bool) {
	return g.CellAt(g.Coord(cell).Neighbor(d))
}

// Distance returns the hex distance between two cells, taking the shorter
// way round on a wrapping map.
func (g *Grid) Distance(a, b int) int {
	ca, cb := g.Coord(a), g.Coord(b)
	d := DistanceCube(ca, cb)
	if g.Wrap {
		for _, shift := range [2]int{g.Width, -g.Width} {
			w := Cube{X: cb.X + shift, Y: cb.Y - shift, Z: cb.Z}
			if dw := DistanceCube(ca, w); dw < d {
				d = dw
			}
		}
	}
	return d
}

// Within returns every cell at hex distance <= r from cell.
func (g *Grid) Within(cell, r int) []int {
	disk := Disk(g.Coord(cell), r)
	out := make([]int, 0, len(disk))
	seen := mapset.New[int]()
	for _, c := range disk {
		idx, ok := g.CellAt(c)
		if !ok || seen.Has(idx) {
			continue
		}
		seen.Put(idx)
		out = append(out, idx)
	}
	return out
}

func (g *Grid) check(cell int) {
	if cell < 0 || cell >= len(g.coords) {
		panic(fmt.Sprintf("hex: cell %d outside grid of %d cells", cell, len(g.coords)))
	}
}
