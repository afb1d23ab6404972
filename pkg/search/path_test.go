package search_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/hextactics/pkg/hex"
	"github.com/gravitas-games/hextactics/pkg/search"
)

func uniformCost(int, int, hex.Direction) int { return 1 }

// randomCosts builds a direction-dependent cost table with some missing edges.
func randomCosts(g *hex.Grid, seed int64) search.CostFunc {
	rng := rand.New(rand.NewSource(seed))
	table := make([][6]int, g.Cells())
	for cell := range table {
		for d := range table[cell] {
			if rng.Intn(6) == 0 {
				table[cell][d] = search.Invalid
			} else {
				table[cell][d] = 1 + rng.Intn(12)
			}
		}
	}
	return func(from, _ int, d hex.Direction) int { return table[from][d] }
}

// bruteForce relaxes every edge until nothing changes.
func bruteForce(g *hex.Grid, from int, cost search.CostFunc, policy search.Policy) []int {
	const inf = 1 << 30
	dist := make([]int, g.Cells())
	for i := range dist {
		dist[i] = inf
	}
	dist[from] = 0
	for changed := true; changed; {
		changed = false
		for cell := range dist {
			if dist[cell] == inf {
				continue
			}
			for _, d := range hex.Directions {
				n, ok := g.Neighbor(cell, d)
				if !ok {
					continue
				}
				c := cost(cell, n, d)
				if c < 0 {
					continue
				}
				if nd := policy.Accumulate(dist[cell], c); nd < dist[n] {
					dist[n] = nd
					changed = true
				}
			}
		}
	}
	return dist
}

func checkPath(t *testing.T, g *hex.Grid, p search.Path, cost search.CostFunc, policy search.Policy) {
	t.Helper()
	require.Equal(t, len(p.Cells), len(p.Distances))
	require.Zero(t, p.Distances[0])
	for i := 1; i < len(p.Cells); i++ {
		step := search.Invalid
		for _, d := range hex.Directions {
			if n, ok := g.Neighbor(p.Cells[i-1], d); ok && n == p.Cells[i] {
				step = cost(p.Cells[i-1], n, d)
			}
		}
		require.GreaterOrEqual(t, step, 0, "path uses a missing edge at %d", i)
		require.Equal(t, policy.Accumulate(p.Distances[i-1], step), p.Distances[i])
	}
}

func TestFindPathMatchesBruteForce(t *testing.T) {
	policies := []struct {
		name   string
		policy search.Policy
	}{
		{"Ceiling", search.ResourceCeiling{Ceiling: 20}},
		{"Turns", search.TurnQuantized{Speed: 15}},
	}
	for _, pc := range policies {
		t.Run(pc.name, func(t *testing.T) {
			for seed := int64(1); seed <= 12; seed++ {
				g := hex.NewGrid(6, 5, seed%3 == 0)
				cost := randomCosts(g, seed)
				ctx := search.NewContext(g.Cells())
				from := int(seed) % g.Cells()
				want := bruteForce(g, from, cost, pc.policy)

				for to := 0; to < g.Cells(); to++ {
					p := ctx.FindPath(g, search.Query{From: from, To: to, Cost: cost, Policy: pc.policy})
					if want[to] == 1<<30 {
						require.False(t, p.Found, "seed %d: %d -> %d should be unreachable", seed, from, to)
						require.Empty(t, p.Cells)
						continue
					}
					require.True(t, p.Found, "seed %d: %d -> %d", seed, from, to)
					require.Equal(t, from, p.Cells[0])
					require.Equal(t, to, p.Cells[len(p.Cells)-1])
					require.Equal(t, want[to], p.Cost(), "seed %d: %d -> %d", seed, from, to)
					checkPath(t, g, p, cost, pc.policy)
				}
			}
		})
	}
}

func TestTurnQuantization(t *testing.T) {
	g := hex.NewGrid(3, 1, false)
	costs := map[int]int{0: 10, 1: 20}
	cost := func(from, to int, d hex.Direction) int {
		if d != hex.E {
			return search.Invalid
		}
		return costs[from]
	}
	policy := search.TurnQuantized{Speed: 24}

	ctx := search.NewContext(g.Cells())
	p := ctx.FindPath(g, search.Query{From: 0, To: 2, Cost: cost, Policy: policy})
	require.True(t, p.Found)
	assert.Equal(t, []int{0, 10, 44}, p.Distances)
	assert.Equal(t, 2, p.Turns(24))
	assert.Equal(t, 1, policy.Turn(p.Cost()))
}

func TestTurnBoundaries(t *testing.T) {
	p := search.TurnQuantized{Speed: 24}
	assert.Equal(t, 24, p.Accumulate(0, 24), "a step that exactly fills the turn stays in it")
	assert.Equal(t, 25, p.Accumulate(24, 1))
	assert.Equal(t, 58, p.Accumulate(40, 10), "the remaining 8 points of turn two are forfeited")
	assert.Equal(t, 0, p.Turn(0))
	assert.Equal(t, 0, p.Turn(24))
	assert.Equal(t, 1, p.Turn(25))
	assert.Panics(t, func() { search.TurnQuantized{}.Accumulate(0, 1) })
}

func TestFlatGridEndToEnd(t *testing.T) {
	g := hex.NewGrid(5, 5, false)
	from := g.MustIndex(hex.Offset{X: 0, Z: 0})
	to := g.MustIndex(hex.Offset{X: 3, Z: 0})
	require.Equal(t, 3, g.Distance(from, to))

	ctx := search.NewContext(g.Cells())
	for ceiling := 0; ceiling <= 5; ceiling++ {
		p := ctx.FindPath(g, search.Query{From: from, To: to, Cost: uniformCost, Policy: search.ResourceCeiling{Ceiling: ceiling}})
		require.True(t, p.Found)
		require.Len(t, p.Cells, 4)
		require.Equal(t, 3, p.Cost())
		require.Equal(t, ceiling >= 3, p.Reachable, "ceiling %d", ceiling)
		require.Equal(t, min(ceiling, 3)+1, p.AffordablePrefix(search.ResourceCeiling{Ceiling: ceiling}))
	}
}

func TestSameCell(t *testing.T) {
	g := hex.NewGrid(3, 3, false)
	ctx := search.NewContext(g.Cells())
	p := ctx.FindPath(g, search.Query{From: 4, To: 4, Cost: uniformCost, Policy: search.ResourceCeiling{}})
	require.True(t, p.Found)
	require.True(t, p.Reachable)
	require.Equal(t, []int{4}, p.Cells)
	require.Zero(t, p.Turns(24))
}

func TestNoPath(t *testing.T) {
	g := hex.NewGrid(5, 5, false)
	goal := g.MustIndex(hex.Offset{X: 4, Z: 4})
	// Nothing may enter the goal.
	cost := func(_, to int, _ hex.Direction) int {
		if to == goal {
			return search.Invalid
		}
		return 1
	}
	ctx := search.NewContext(g.Cells())
	p := ctx.FindPath(g, search.Query{From: 0, To: goal, Cost: cost, Policy: search.ResourceCeiling{Ceiling: 100}})
	assert.False(t, p.Found)
	assert.False(t, p.Reachable)
	assert.Empty(t, p.Cells)
	assert.Zero(t, p.Cost())
}

func TestRepeatedQueriesAreIdentical(t *testing.T) {
	g := hex.NewGrid(8, 8, false)
	cost := randomCosts(g, 99)
	ctx := search.NewContext(g.Cells())
	q := search.Query{From: 3, To: 60, Cost: cost, Policy: search.TurnQuantized{Speed: 20}}

	first := ctx.FindPath(g, q)
	// An unrelated query in between must not leak into the next run.
	ctx.FindPath(g, search.Query{From: 60, To: 0, Cost: cost, Policy: search.ResourceCeiling{}})
	second := ctx.FindPath(g, q)
	third := ctx.FindPath(g, q)
	assert.Equal(t, first, second)
	assert.Equal(t, second, third)
}

func TestReachableGrowsWithCeiling(t *testing.T) {
	g := hex.NewGrid(7, 7, false)
	cost := randomCosts(g, 5)
	ctx := search.NewContext(g.Cells())
	source := g.MustIndex(hex.Offset{X: 3, Z: 3})
	want := bruteForce(g, source, cost, search.ResourceCeiling{})

	prev := map[int]bool{}
	for ceiling := 0; ceiling <= 40; ceiling += 4 {
		cells := ctx.Reachable(g, source, cost, ceiling)
		got := map[int]bool{}
		for _, c := range cells {
			got[c] = true
			require.LessOrEqual(t, want[c], ceiling)
		}
		for c := range prev {
			require.True(t, got[c], "cell %d dropped when ceiling rose to %d", c, ceiling)
		}
		for c, d := range want {
			if d <= ceiling {
				require.True(t, got[c], "cell %d (cost %d) missing at ceiling %d", c, d, ceiling)
			}
		}
		prev = got
	}
}

func TestRangeOrder(t *testing.T) {
	g := hex.NewGrid(6, 6, false)
	ctx := search.NewContext(g.Cells())
	policy := search.TurnQuantized{Speed: 3}
	cells := ctx.Range(g, 0, uniformCost, policy, 6)
	require.NotEmpty(t, cells)
	last := 0
	for _, c := range cells {
		d := ctx.Distance(c)
		require.GreaterOrEqual(t, d, last)
		require.LessOrEqual(t, d, 6)
		last = d
	}
	want := 0
	for _, d := range bruteForce(g, 0, uniformCost, policy) {
		if d <= 6 {
			want++
		}
	}
	assert.Len(t, cells, want)
}

func TestPreconditions(t *testing.T) {
	g := hex.NewGrid(3, 3, false)
	ctx := search.NewContext(g.Cells())
	policy := search.ResourceCeiling{}
	assert.Panics(t, func() { ctx.FindPath(g, search.Query{From: 9, To: 0, Cost: uniformCost, Policy: policy}) })
	assert.Panics(t, func() { ctx.FindPath(g, search.Query{From: 0, To: -1, Cost: uniformCost, Policy: policy}) })
	assert.Panics(t, func() { ctx.FindPath(g, search.Query{From: 0, To: 1, Policy: policy}) })
	assert.Panics(t, func() { search.NewContext(4).FindPath(g, search.Query{From: 0, To: 1, Cost: uniformCost, Policy: policy}) })
	assert.Panics(t, func() { ctx.Range(g, 0, uniformCost, policy, -1) })
}
