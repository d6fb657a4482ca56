package robust

import (
	"math"
	"sort"
)

// IdealFourths estimates the lower and upper quartiles with the ideal-fourths
// method, the robust estimator conventionally paired with boxplot-rule outlier
// fences. It interpolates between order statistics at depth n/4 + 5/12.
type IdealFourths struct{}

// Quartiles returns the ideal fourths of values. The input is not modified.
func (IdealFourths) Quartiles(values []float64) (lower, upper float64) {
	n := len(values)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	s := make([]float64, n)
	copy(s, values)
	sort.Float64s(s)
	if n < 3 {
		return s[0], s[n-1]
	}

	depth := float64(n)/4.0 + 5.0/12.0
	j := int(depth)
	h := depth - float64(j)

	lower = (1-h)*s[j-1] + h*s[j]
	k := n - j + 1
	upper = (1-h)*s[k-1] + h*s[k-2]
	return lower, upper
}
