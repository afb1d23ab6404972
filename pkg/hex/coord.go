// Package hex provides the hex grid topology shared by path search and
// visibility: offset/cube coordinates, hex distance and neighbor stepping.
package hex

import "fmt"

// Offset is a rectangular (column, row) position on the map. Odd rows are
// shifted half a cell towards the east.
type Offset struct {
	X int
	Z int
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int
	Y int
	Z int
}

// Direction names one of the six hex edges, clockwise from north-east.
type Direction uint8

const (
	NE Direction = iota
	E
	SE
	SW
	W
	NW
)

// Directions lists all six directions in edge order.
var Directions = [6]Direction{NE, E, SE, SW, W, NW}

var steps = [6]Cube{
	NE: {X: 0, Y: -1, Z: +1},
	E:  {X: +1, Y: -1, Z: 0},
	SE: {X: +1, Y: 0, Z: -1},
	SW: {X: 0, Y: +1, Z: -1},
	W:  {X: -1, Y: +1, Z: 0},
	NW: {X: -1, Y: 0, Z: +1},
}

var directionNames = [6]string{"NE", "E", "SE", "SW", "W", "NW"}

// Opposite returns the direction pointing back across the same edge.
func (d Direction) Opposite() Direction { return (d + 3) % 6 }

// Next returns the next direction clockwise.
func (d Direction) Next() Direction { return (d + 1) % 6 }

// Previous returns the next direction counter-clockwise.
func (d Direction) Previous() Direction { return (d + 5) % 6 }

func (d Direction) String() string {
	if d > NW {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// FromOffset converts a rectangular offset to cube coordinates.
func FromOffset(o Offset) Cube {
	x := o.X - o.Z/2
	return Cube{X: x, Y: -x - o.Z, Z: o.Z}
}

// ToOffset converts cube coordinates back to a rectangular offset.
func (c Cube) ToOffset() Offset { return Offset{X: c.X + c.Z/2, Z: c.Z} }

// Add returns a+b in cube space.
func (c Cube) Add(b Cube) Cube { return Cube{c.X + b.X, c.Y + b.Y, c.Z + b.Z} }

// Mul scales a cube vector by k.
func (c Cube) Mul(k int) Cube { return Cube{c.X * k, c.Y * k, c.Z * k} }

// Neighbor steps one cell in direction d.
func (c Cube) Neighbor(d Direction) Cube { return c.Add(steps[d%6]) }

// DistanceCube returns hex distance between two cube coords.
func DistanceCube(a, b Cube) int {
	return (abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)) / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
