package curve

import "sort"

// findBracket returns the indices of the two adjacent nodes that bracket t.
// If t is outside the node range the nearest boundary pair is returned.
func findBracket(nodes []Node, t float64) (int, int) {
	if len(nodes) < 2 {
		panic("findBracket: need at least 2 nodes")
	}

	// first node with Time >= t
	idx := sort.Search(len(nodes), func(i int) bool {
		return nodes[i].Time >= t
	})

	if idx <= 0 {
		return 0, 1
	}
	if idx >= len(nodes) {
		return len(nodes) - 2, len(nodes) - 1
	}
	return idx - 1, idx
}

// maxAbsDiff returns the largest absolute difference between paired node DFs.
func maxAbsDiff(a, b []Node) float64 {
	var m float64
	for i := range a {
		d := a[i].DF - b[i].DF
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}
