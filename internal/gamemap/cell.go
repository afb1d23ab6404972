package gamemap

import "github.com/gravitas-games/hextactics/pkg/hex"

// Terrain is the ground type of a hex, e.g. "plains" or "forest".
type Terrain string

const (
	TerrainPlains Terrain = "plains"
	TerrainForest Terrain = "forest"
	TerrainHills  Terrain = "hills"
	TerrainSwamp  Terrain = "swamp"
	TerrainWater  Terrain = "water"
)

// EdgeType classifies the step between two neighboring hexes by elevation.
type EdgeType int

const (
	EdgeFlat EdgeType = iota
	EdgeSlope
	EdgeCliff
)

// Cell holds the attributes of one hex that movement and sight depend on.
type Cell struct {
	Terrain    Terrain
	Elevation  int
	WaterLevel int

	// Roads marks which of the six edges carry a road.
	Roads  [6]bool
	Walled bool

	UrbanLevel int
	FarmLevel  int
	PlantLevel int

	// Explorable is false for border and void hexes that no one may see.
	Explorable bool

	// Occupant is the ID of the unit standing here, if any.
	Occupant string
}

// Underwater reports whether the water surface is above the ground.
func (c Cell) Underwater() bool { return c.WaterLevel > c.Elevation }

// ViewElevation is the height used for sight: the water surface for
// submerged hexes, the ground otherwise.
func (c Cell) ViewElevation() int {
	if c.WaterLevel > c.Elevation {
		return c.WaterLevel
	}
	return c.Elevation
}

// HasRoad reports whether a road leaves the cell in direction d.
func (c Cell) HasRoad(d hex.Direction) bool { return c.Roads[d%6] }

// Edge returns the elevation class of a step from a to b.
func Edge(a, b Cell) EdgeType {
	switch diff := a.Elevation - b.Elevation; {
	case diff == 0:
		return EdgeFlat
	case diff == 1 || diff == -1:
		return EdgeSlope
	}
	return EdgeCliff
}
