package gamemap

import (
	"github.com/gravitas-games/hextactics/pkg/hex"
	"github.com/gravitas-games/hextactics/pkg/search"
)

// TravelRules are the edge costs of open-world movement.
type TravelRules struct {
	FlatCost  int
	SlopeCost int
	RoadCost  int
}

// TacticalRules are the edge costs of constrained battle movement.
type TacticalRules struct {
	// TerrainCosts is the cost of entering each terrain. A negative cost
	// makes the terrain impassable.
	TerrainCosts map[Terrain]int
	DefaultCost  int
	// ClimbLimit is the largest elevation difference a single step may cross.
	ClimbLimit int
	// ClimbCost is added per level of elevation gained.
	ClimbCost int
}

// Explored reports whether the moving side has explored a cell. A nil
// Explored treats the whole map as known.
type Explored func(cell int) bool

// TravelCost returns the open-world cost function of a mover. Unexplored,
// submerged or occupied destinations and cliffs cannot be entered; a road
// across the edge is always cheap and walls may only be crossed by road.
func TravelCost(gm *GameMap, r TravelRules, explored Explored) search.CostFunc {
	return func(from, to int, d hex.Direction) int {
		dst := gm.cells[to]
		if !enterable(dst, to, explored) {
			return search.Invalid
		}
		src := gm.cells[from]
		edge := Edge(src, dst)
		if edge == EdgeCliff {
			return search.Invalid
		}
		if src.HasRoad(d) {
			return r.RoadCost
		}
		if src.Walled != dst.Walled {
			return search.Invalid
		}
		cost := r.FlatCost
		if edge == EdgeSlope {
			cost = r.SlopeCost
		}
		return cost + dst.UrbanLevel + dst.FarmLevel + dst.PlantLevel
	}
}

// TacticalCost returns the battle cost function of a mover: a per-terrain
// entry cost plus a climbing surcharge, with steep climbs, walls, water and
// occupied hexes blocking the step.
func TacticalCost(gm *GameMap, r TacticalRules, explored Explored) search.CostFunc {
	return func(from, to int, d hex.Direction) int {
		dst := gm.cells[to]
		if !enterable(dst, to, explored) {
			return search.Invalid
		}
		src := gm.cells[from]
		climb := dst.Elevation - src.Elevation
		if climb > r.ClimbLimit || -climb > r.ClimbLimit {
			return search.Invalid
		}
		if src.Walled != dst.Walled && !src.HasRoad(d) {
			return search.Invalid
		}
		cost, ok := r.TerrainCosts[dst.Terrain]
		if !ok {
			cost = r.DefaultCost
		}
		if cost < 0 {
			return search.Invalid
		}
		if climb > 0 {
			cost += climb * r.ClimbCost
		}
		return cost
	}
}

func enterable(c Cell, cell int, explored Explored) bool {
	if c.Underwater() || c.Occupant != "" {
		return false
	}
	return explored == nil || explored(cell)
}
