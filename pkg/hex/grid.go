package hex

import "fmt"

// Ring returns the cube coordinates at exact distance k from center c,
// starting k steps south-west of c and walking the sides clockwise.
// If k==0, returns [c].
func Ring(c Cube, k int) []Cube {
	if k < 0 {
		panic(fmt.Sprintf("hex: negative ring radius %d", k))
	}
	if k == 0 {
		return []Cube{c}
	}
	res := make([]Cube, 0, 6*k)
	cur := c.Add(steps[SW].Mul(k))
	// Side j runs from corner SW+j to corner SW+j+1, parallel to direction SW+j+2.
	for side := 0; side < 6; side++ {
		d := Direction(side+5) % 6
		for step := 0; step < k; step++ {
			res = append(res, cur)
			cur = cur.Neighbor(d)
		}
	}
	return res
}

// Disk returns all cube coordinates at distance <= r from center c.
func Disk(c Cube, r int) []Cube {
	if r < 0 {
		panic(fmt.Sprintf("hex: negative disk radius %d", r))
	}
	res := make([]Cube, 0, 1+3*r*(r+1))
	for x := -r; x <= r; x++ {
		for z := max(-r, -x-r); z <= min(r, -x+r); z++ {
			res = append(res, c.Add(Cube{X: x, Y: -x - z, Z: z}))
		}
	}
	return res
}
