package hex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetCubeBijection(t *testing.T) {
	g := NewGrid(7, 6, false)
	seen := map[Cube]bool{}
	for cell := 0; cell < g.Cells(); cell++ {
		c := g.Coord(cell)
		require.Zero(t, c.X+c.Y+c.Z, "cube invariant for cell %d", cell)
		require.False(t, seen[c], "duplicate cube %v", c)
		seen[c] = true

		back, ok := g.CellAt(c)
		require.True(t, ok)
		require.Equal(t, cell, back)
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b Offset
		want int
	}{
		{"Same", Offset{2, 2}, Offset{2, 2}, 0},
		{"EastRow", Offset{0, 0}, Offset{3, 0}, 3},
		{"NorthEast", Offset{0, 0}, Offset{0, 1}, 1},
		{"Column", Offset{0, 0}, Offset{0, 4}, 4},
		{"Diagonal", Offset{4, 0}, Offset{0, 4}, 6},
	}
	g := NewGrid(5, 5, false)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := g.MustIndex(tc.a), g.MustIndex(tc.b)
			assert.Equal(t, tc.want, g.Distance(a, b))
			assert.Equal(t, tc.want, g.Distance(b, a))
		})
	}
}

func TestNeighborEdges(t *testing.T) {
	g := NewGrid(5, 5, false)
	origin := g.MustIndex(Offset{0, 0})

	var got []Direction
	for _, d := range Directions {
		if _, ok := g.Neighbor(origin, d); ok {
			got = append(got, d)
		}
	}
	assert.Equal(t, []Direction{NE, E}, got)

	ne, _ := g.Neighbor(origin, NE)
	assert.Equal(t, Offset{0, 1}, g.Offset(ne))
}

func TestNeighborSymmetryAndDistance(t *testing.T) {
	for _, wrap := range []bool{false, true} {
		g := NewGrid(6, 5, wrap)
		for cell := 0; cell < g.Cells(); cell++ {
			for _, d := range Directions {
				n, ok := g.Neighbor(cell, d)
				if !ok {
					continue
				}
				require.Equal(t, 1, g.Distance(cell, n), "wrap=%v cell=%d dir=%v", wrap, cell, d)
				back, ok := g.Neighbor(n, d.Opposite())
				require.True(t, ok)
				require.Equal(t, cell, back)
			}
		}
	}
}

func TestWrapping(t *testing.T) {
	g := NewGrid(6, 4, true)
	west := g.MustIndex(Offset{0, 0})
	east := g.MustIndex(Offset{5, 0})

	n, ok := g.Neighbor(west, W)
	require.True(t, ok)
	assert.Equal(t, east, n)
	assert.Equal(t, 1, g.Distance(west, east))

	_, ok = g.Neighbor(west, SW)
	assert.False(t, ok, "rows do not wrap")
}

func TestRingAndDisk(t *testing.T) {
	c := Cube{1, -3, 2}
	for k := 0; k <= 4; k++ {
		ring := Ring(c, k)
		want := 6 * k
		if k == 0 {
			want = 1
		}
		require.Len(t, ring, want)
		for _, r := range ring {
			require.Equal(t, k, DistanceCube(c, r))
		}
	}
	for r := 0; r <= 4; r++ {
		disk := Disk(c, r)
		require.Len(t, disk, 1+3*r*(r+1))
		for _, d := range disk {
			require.LessOrEqual(t, DistanceCube(c, d), r)
		}
	}
}

func TestWithinClipsToMap(t *testing.T) {
	g := NewGrid(5, 5, false)
	cells := g.Within(g.MustIndex(Offset{0, 0}), 1)
	assert.Len(t, cells, 3)

	cells = g.Within(g.MustIndex(Offset{2, 2}), 1)
	assert.Len(t, cells, 7)
}

func TestPreconditionsPanic(t *testing.T) {
	g := NewGrid(3, 3, false)
	assert.Panics(t, func() { g.Coord(9) })
	assert.Panics(t, func() { g.Coord(-1) })
	assert.Panics(t, func() { Disk(Cube{}, -1) })
	assert.Panics(t, func() { NewGrid(0, 3, false) })
}
