package search

import (
	"fmt"

	"github.com/gravitas-games/hextactics/pkg/hex"
)

// Query describes one path search.
type Query struct {
	From   int
	To     int
	Cost   CostFunc
	Policy Policy
}

// Path is the reconstructed result of a search. Cells runs from the source
// to the destination inclusive and Distances holds the accumulated distance
// at each of them. Found is false when the frontier emptied before the goal
// was settled; Reachable additionally requires the policy to afford the total.
type Path struct {
	Cells     []int
	Distances []int
	Found     bool
	Reachable bool
}

// Cost returns the total distance of the path, or 0 if none was found.
func (p Path) Cost() int {
	if len(p.Distances) == 0 {
		return 0
	}
	return p.Distances[len(p.Distances)-1]
}

// Turns returns how many whole turns a turn-quantized path of the given
// speed spans.
func (p Path) Turns(speed int) int {
	if !p.Found || p.Cost() == 0 {
		return 0
	}
	return TurnQuantized{Speed: speed}.Turn(p.Cost()) + 1
}

// AffordablePrefix returns how many leading cells of the path fit the
// policy's budget. Cells past that index form the out-of-budget tail.
func (p Path) AffordablePrefix(policy Policy) int {
	n := 0
	for _, d := range p.Distances {
		if !policy.Affordable(d) {
			break
		}
		n++
	}
	return n
}

// FindPath searches g for the cheapest path from q.From to q.To. The hex
// distance to the goal is used as the A* heuristic, which is admissible
// because every edge is charged at least one point.
func (c *Context) FindPath(g Topology, q Query) Path {
	c.prepare(g, q.Cost, q.Policy)
	c.check(q.To)

	c.Start(q.From, g.Distance(q.From, q.To))
	for {
		current, ok := c.Next()
		if !ok {
			return Path{}
		}
		if current == q.To {
			break
		}
		c.expand(g, current, q.Cost, q.Policy, -1, func(cell int) int {
			return g.Distance(cell, q.To)
		})
	}

	path := c.reconstruct(q.To)
	path.Found = true
	path.Reachable = q.Policy.Affordable(path.Cost())
	return path
}

// Range settles every cell whose distance from source under policy is at
// most limit and returns them in nondecreasing distance order.
func (c *Context) Range(g Topology, source int, cost CostFunc, policy Policy, limit int) []int {
	c.prepare(g, cost, policy)
	if limit < 0 {
		panic(fmt.Sprintf("search: negative range limit %d", limit))
	}

	var cells []int
	c.Start(source, 0)
	for {
		current, ok := c.Next()
		if !ok {
			return cells
		}
		cells = append(cells, current)
		c.expand(g, current, cost, policy, limit, nil)
	}
}

// Reachable returns the cells a resource-ceiling mover can reach from source
// without exceeding ceiling.
func (c *Context) Reachable(g Topology, source int, cost CostFunc, ceiling int) []int {
	return c.Range(g, source, cost, ResourceCeiling{Ceiling: ceiling}, ceiling)
}

func (c *Context) expand(g Topology, current int, cost CostFunc, policy Policy, limit int, heuristic func(int) int) {
	base := c.records[current].Distance
	for _, d := range hex.Directions {
		next, ok := g.Neighbor(current, d)
		if !ok || c.Settled(next) {
			continue
		}
		step := cost(current, next, d)
		if step < 0 {
			continue
		}
		if step == 0 {
			step = 1
		}
		distance := policy.Accumulate(base, step)
		if limit >= 0 && distance > limit {
			continue
		}
		h := 0
		if heuristic != nil && !c.Visited(next) {
			h = heuristic(next)
		}
		c.Relax(next, current, distance, h)
	}
}

func (c *Context) reconstruct(to int) Path {
	var p Path
	for cell := to; cell != noCell; cell = c.records[cell].Predecessor {
		p.Cells = append(p.Cells, cell)
		p.Distances = append(p.Distances, c.records[cell].Distance)
	}
	for i, j := 0, len(p.Cells)-1; i < j; i, j = i+1, j-1 {
		p.Cells[i], p.Cells[j] = p.Cells[j], p.Cells[i]
		p.Distances[i], p.Distances[j] = p.Distances[j], p.Distances[i]
	}
	return p
}

func (c *Context) prepare(g Topology, cost CostFunc, policy Policy) {
	if g.Cells() != len(c.records) {
		panic(fmt.Sprintf("search: grid has %d cells, context sized for %d", g.Cells(), len(c.records)))
	}
	if cost == nil || policy == nil {
		panic("search: query needs a cost function and a policy")
	}
}
