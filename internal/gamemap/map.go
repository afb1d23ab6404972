package gamemap

import (
	"errors"
	"fmt"
	"log"

	"github.com/gravitas-games/hextactics/pkg/hex"
)

var (
	ErrInvalidSize  = errors.New("invalid map size")
	ErrOutOfBounds  = errors.New("position outside map")
	ErrCellOccupied = errors.New("cell occupied")
)

// GameMap is the hex world the engine searches over. It embeds the grid
// topology so it can be handed to path search and vision directly.
type GameMap struct {
	*hex.Grid
	cells []Cell

	// dirty is set when an edit changed something sight depends on.
	dirty bool
}

// New creates a flat map of plains with every hex explorable.
func New(width, height int, wrap bool) (*GameMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	log.Printf("Generating game map %dx%d (wrap=%v)", width, height, wrap)

	gm := &GameMap{
		Grid:  hex.NewGrid(width, height, wrap),
		cells: make([]Cell, width*height),
	}
	for i := range gm.cells {
		gm.cells[i] = Cell{Terrain: TerrainPlains, Explorable: true}
	}
	return gm, nil
}

// Lookup converts an offset position to a cell index.
func (gm *GameMap) Lookup(o hex.Offset) (int, error) {
	cell, ok := gm.Index(o)
	if !ok {
		return -1, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, o.X, o.Z)
	}
	return cell, nil
}

// Cell returns a copy of the attributes of cell.
func (gm *GameMap) Cell(cell int) Cell {
	gm.Offset(cell) // bounds check
	return gm.cells[cell]
}

// Explorable implements vision.Terrain.
func (gm *GameMap) Explorable(cell int) bool { return gm.Cell(cell).Explorable }

// ViewElevation implements vision.Terrain.
func (gm *GameMap) ViewElevation(cell int) int { return gm.Cell(cell).ViewElevation() }

// Dirty reports whether sight-relevant terrain changed since ClearDirty.
func (gm *GameMap) Dirty() bool { return gm.dirty }

// ClearDirty acknowledges that visibility was recounted.
func (gm *GameMap) ClearDirty() { gm.dirty = false }

// SetTerrain changes the ground type of cell.
func (gm *GameMap) SetTerrain(cell int, t Terrain) {
	gm.mutable(cell).Terrain = t
}

// SetElevation changes the ground height of cell.
func (gm *GameMap) SetElevation(cell, elevation int) {
	c := gm.mutable(cell)
	if c.Elevation != elevation {
		c.Elevation = elevation
		gm.dirty = true
	}
}

// SetWaterLevel changes the water surface height of cell.
func (gm *GameMap) SetWaterLevel(cell, level int) {
	c := gm.mutable(cell)
	if c.WaterLevel != level {
		c.WaterLevel = level
		gm.dirty = true
	}
}

// SetExplorable marks whether cell can ever be seen.
func (gm *GameMap) SetExplorable(cell int, explorable bool) {
	c := gm.mutable(cell)
	if c.Explorable != explorable {
		c.Explorable = explorable
		gm.dirty = true
	}
}

// SetRoad adds or removes the road across the edge of cell in direction d.
// Both hexes sharing the edge are updated.
func (gm *GameMap) SetRoad(cell int, d hex.Direction, road bool) {
	n, ok := gm.Neighbor(cell, d)
	if !ok {
		return
	}
	gm.mutable(cell).Roads[d] = road
	gm.mutable(n).Roads[d.Opposite()] = road
}

// SetWalled encloses cell within walls.
func (gm *GameMap) SetWalled(cell int, walled bool) {
	gm.mutable(cell).Walled = walled
}

// SetFeatures sets the urban, farm and plant density of cell.
func (gm *GameMap) SetFeatures(cell, urban, farm, plant int) {
	c := gm.mutable(cell)
	c.UrbanLevel, c.FarmLevel, c.PlantLevel = urban, farm, plant
}

// Occupy places a unit on cell.
func (gm *GameMap) Occupy(cell int, unitID string) error {
	c := gm.mutable(cell)
	if c.Occupant != "" && c.Occupant != unitID {
		return fmt.Errorf("%w: %s", ErrCellOccupied, c.Occupant)
	}
	c.Occupant = unitID
	return nil
}

// Vacate clears the occupant of cell.
func (gm *GameMap) Vacate(cell int) {
	gm.mutable(cell).Occupant = ""
}

// CloseBorder makes the outermost ring of hexes unexplorable. East and west
// edges stay open on a wrapping map.
func (gm *GameMap) CloseBorder() {
	for cell := range gm.cells {
		o := gm.Offset(cell)
		if o.Z == 0 || o.Z == gm.Height-1 || (!gm.Wrap && (o.X == 0 || o.X == gm.Width-1)) {
			gm.SetExplorable(cell, false)
		}
	}
}

func (gm *GameMap) mutable(cell int) *Cell {
	gm.Offset(cell)
	return &gm.cells[cell]
}
