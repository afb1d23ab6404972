package search

import (
	"fmt"

	"github.com/gravitas-games/hextactics/pkg/hex"
)

// Invalid is the cost a CostFunc returns for an edge the mover cannot cross.
// Any negative cost is treated the same way.
const Invalid = -1

// CostFunc returns the raw cost of stepping from one cell to its neighbor in
// direction d, or Invalid.
type CostFunc func(from, to int, d hex.Direction) int

// Policy decides how raw edge costs accumulate into a path distance and
// whether a finished path fits the mover's budget.
type Policy interface {
	// Accumulate returns the distance of a cell reached with an edge of the
	// given non-negative cost from a cell at distance current.
	Accumulate(current, cost int) int
	// Affordable reports whether a path of the given total distance can be
	// taken by the mover.
	Affordable(total int) bool
}

// TurnQuantized charges movement in whole turns of Speed points. A step that
// does not fit in what is left of the current turn starts the next turn, so
// the unused remainder is lost.
type TurnQuantized struct {
	Speed int
}

func (p TurnQuantized) Accumulate(current, cost int) int {
	if p.Speed <= 0 {
		panic(fmt.Sprintf("search: turn speed %d must be positive", p.Speed))
	}
	distance := current + cost
	if turn := p.Turn(distance); turn > p.Turn(current) {
		distance = turn*p.Speed + cost
	}
	return distance
}

// Affordable is always true; turn-quantized paths may span any number of turns.
func (p TurnQuantized) Affordable(int) bool { return true }

// Turn returns the zero-based turn in which a cell at distance is entered.
func (p TurnQuantized) Turn(distance int) int {
	if distance <= 0 {
		return 0
	}
	return (distance - 1) / p.Speed
}

// ResourceCeiling sums raw costs and reports paths costing more than Ceiling
// as unaffordable. The search itself ignores the ceiling so the full path is
// always available.
type ResourceCeiling struct {
	Ceiling int
}

func (p ResourceCeiling) Accumulate(current, cost int) int { return current + cost }

func (p ResourceCeiling) Affordable(total int) bool { return total <= p.Ceiling }
