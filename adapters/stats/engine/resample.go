package engine

import "math/rand"

// minDistinct is the variable count for bivariate correlation: a bootstrap
// resample is only usable if it contains strictly more distinct observations
// than variables.
const minDistinct = 2

// BuildResampleTable draws nboot bootstrap index samples of size n, each a
// sequence of row indices drawn uniformly with replacement from {0..n-1}.
// Draws with minDistinct or fewer distinct indices are rejected and redrawn;
// no retry cap is imposed. The table is built once per analysis call and
// shared read-only across all pairs, so every pair sees the same resampling
// randomness structure.
func BuildResampleTable(rng *rand.Rand, n, nboot int) [][]int {
	table := make([][]int, nboot)
	for b := range table {
		col := make([]int, n)
		for {
			for i := range col {
				col[i] = rng.Intn(n)
			}
			if countDistinct(col) > minDistinct {
				break
			}
		}
		table[b] = col
	}
	return table
}

func countDistinct(indices []int) int {
	seen := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		seen[i] = struct{}{}
	}
	return len(seen)
}
