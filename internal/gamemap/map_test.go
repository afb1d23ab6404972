package gamemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/hextactics/pkg/hex"
	"github.com/gravitas-games/hextactics/pkg/search"
	"github.com/gravitas-games/hextactics/pkg/vision"
)

var travel = TravelRules{FlatCost: 5, SlopeCost: 10, RoadCost: 1}

func newMap(t *testing.T, w, h int) *GameMap {
	t.Helper()
	gm, err := New(w, h, false)
	require.NoError(t, err)
	return gm
}

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0, 4, false)
	assert.True(t, errors.Is(err, ErrInvalidSize))
}

func TestLookup(t *testing.T) {
	gm := newMap(t, 4, 3)
	cell, err := gm.Lookup(hex.Offset{X: 2, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, cell)

	_, err = gm.Lookup(hex.Offset{X: 4, Z: 0})
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestEditsMarkDirty(t *testing.T) {
	gm := newMap(t, 3, 3)
	require.False(t, gm.Dirty())

	gm.SetTerrain(0, TerrainForest)
	gm.SetWalled(0, true)
	assert.False(t, gm.Dirty(), "terrain and walls do not affect sight")

	gm.SetElevation(4, 2)
	assert.True(t, gm.Dirty())
	gm.ClearDirty()
	gm.SetElevation(4, 2)
	assert.False(t, gm.Dirty(), "unchanged elevation")

	gm.SetWaterLevel(1, 3)
	assert.True(t, gm.Dirty())
	assert.True(t, gm.Cell(1).Underwater())
	assert.Equal(t, 3, gm.ViewElevation(1))
	assert.Equal(t, 2, gm.ViewElevation(4))
}

func TestRoadsAreShared(t *testing.T) {
	gm := newMap(t, 3, 3)
	gm.SetRoad(4, hex.E, true)
	assert.True(t, gm.Cell(4).HasRoad(hex.E))
	assert.True(t, gm.Cell(5).HasRoad(hex.W))

	// edge of map: nothing to connect to
	gm.SetRoad(5, hex.E, true)
	assert.False(t, gm.Cell(5).HasRoad(hex.E))
}

func TestOccupancy(t *testing.T) {
	gm := newMap(t, 3, 3)
	require.NoError(t, gm.Occupy(2, "u1"))
	require.NoError(t, gm.Occupy(2, "u1"))
	assert.True(t, errors.Is(gm.Occupy(2, "u2"), ErrCellOccupied))
	gm.Vacate(2)
	assert.NoError(t, gm.Occupy(2, "u2"))
}

func TestCloseBorder(t *testing.T) {
	gm := newMap(t, 5, 4)
	gm.CloseBorder()
	assert.False(t, gm.Explorable(0))
	assert.False(t, gm.Explorable(gm.MustIndex(hex.Offset{X: 4, Z: 2})))
	assert.True(t, gm.Explorable(gm.MustIndex(hex.Offset{X: 2, Z: 2})))
	assert.True(t, gm.Dirty())

	wrap, err := New(5, 4, true)
	require.NoError(t, err)
	wrap.CloseBorder()
	assert.True(t, wrap.Explorable(wrap.MustIndex(hex.Offset{X: 0, Z: 2})))
}

func TestTravelCostRules(t *testing.T) {
	gm := newMap(t, 5, 5)
	at := func(x, z int) int { return gm.MustIndex(hex.Offset{X: x, Z: z}) }
	cost := TravelCost(gm, travel, nil)
	from := at(2, 2)
	east := at(3, 2)

	assert.Equal(t, 5, cost(from, east, hex.E), "flat")

	gm.SetElevation(east, 1)
	gm.SetFeatures(east, 1, 2, 0)
	assert.Equal(t, 13, cost(from, east, hex.E), "slope plus features")

	gm.SetElevation(east, 2)
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "cliff")
	gm.SetRoad(from, hex.E, true)
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "roads do not climb cliffs")

	gm.SetElevation(east, 0)
	assert.Equal(t, 1, cost(from, east, hex.E), "road")
	gm.SetWalled(east, true)
	assert.Equal(t, 1, cost(from, east, hex.E), "roads pass through gates")
	gm.SetRoad(from, hex.E, false)
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "wall")
	gm.SetWalled(east, false)

	require.NoError(t, gm.Occupy(east, "blocker"))
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "occupied")
	gm.Vacate(east)

	gm.SetWaterLevel(east, 1)
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "underwater")
	gm.SetWaterLevel(east, 0)

	hidden := TravelCost(gm, travel, func(cell int) bool { return cell != east })
	assert.Equal(t, search.Invalid, hidden(from, east, hex.E), "unexplored")
}

func TestTacticalCostRules(t *testing.T) {
	gm := newMap(t, 5, 5)
	rules := TacticalRules{
		TerrainCosts: map[Terrain]int{TerrainPlains: 1, TerrainForest: 2, TerrainWater: -1},
		DefaultCost:  3,
		ClimbLimit:   1,
		ClimbCost:    1,
	}
	cost := TacticalCost(gm, rules, nil)
	from, east := 12, 13

	assert.Equal(t, 1, cost(from, east, hex.E))
	gm.SetTerrain(east, TerrainForest)
	assert.Equal(t, 2, cost(from, east, hex.E))
	gm.SetTerrain(east, TerrainSwamp)
	assert.Equal(t, 3, cost(from, east, hex.E), "default cost")
	gm.SetTerrain(east, TerrainWater)
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "impassable terrain")

	gm.SetTerrain(east, TerrainPlains)
	gm.SetElevation(east, 1)
	assert.Equal(t, 2, cost(from, east, hex.E), "uphill surcharge")
	assert.Equal(t, 1, cost(east, from, hex.W), "downhill is free")
	gm.SetElevation(east, 2)
	assert.Equal(t, search.Invalid, cost(from, east, hex.E), "too steep")
}

func TestTravelPathPrefersRoads(t *testing.T) {
	gm := newMap(t, 6, 3)
	at := func(x, z int) int { return gm.MustIndex(hex.Offset{X: x, Z: z}) }
	for x := 0; x < 4; x++ {
		gm.SetRoad(at(x, 0), hex.E, true)
	}
	ctx := search.NewContext(gm.Cells())
	speed := 24

	p := ctx.FindPath(gm, search.Query{
		From:   at(0, 0),
		To:     at(4, 0),
		Cost:   TravelCost(gm, travel, nil),
		Policy: search.TurnQuantized{Speed: speed},
	})
	require.True(t, p.Found)
	assert.Equal(t, 4, p.Cost())
	assert.Len(t, p.Cells, 5)

	open := newMap(t, 6, 3)
	p = ctx.FindPath(open, search.Query{
		From:   open.MustIndex(hex.Offset{X: 0, Z: 1}),
		To:     open.MustIndex(hex.Offset{X: 5, Z: 1}),
		Cost:   TravelCost(open, travel, nil),
		Policy: search.TurnQuantized{Speed: speed},
	})
	require.True(t, p.Found)
	assert.Equal(t, []int{0, 5, 10, 15, 20, 29}, p.Distances, "the fifth step starts turn two")
	assert.Equal(t, 2, p.Turns(speed))
}

func TestMapDrivesVision(t *testing.T) {
	gm := newMap(t, 7, 7)
	gm.CloseBorder()
	gm.ClearDirty()
	ctx := search.NewContext(gm.Cells())
	f := vision.NewField(gm, nil)

	center := gm.MustIndex(hex.Offset{X: 3, Z: 3})
	f.Increase(ctx, center, 3)
	assert.False(t, f.Visible(0), "border hexes are never seen")
	assert.True(t, f.Visible(gm.MustIndex(hex.Offset{X: 1, Z: 3})))

	gm.SetWaterLevel(center, 2)
	assert.True(t, gm.Dirty())
	assert.Contains(t, f.VisibleCells(ctx, center, 1), gm.MustIndex(hex.Offset{X: 3, Z: 5}), "standing on the water surface extends sight")
}
