package ports

import "gonum.org/v1/gonum/mat"

// LocationScatter is a robust multivariate location and scatter estimate.
type LocationScatter struct {
	Center  []float64
	Scatter *mat.SymDense
}

// LocationScatterEstimator estimates a robust center and covariance for a
// sample of observations (rows). Implementations must tolerate a bounded
// fraction of outlying rows (e.g. MCD).
type LocationScatterEstimator interface {
	Estimate(rows [][]float64) (LocationScatter, error)
}

// QuartileEstimator estimates the lower and upper fourths of a sample,
// used to set outlier-rejection fences. The input slice is not modified.
type QuartileEstimator interface {
	Quartiles(values []float64) (lower, upper float64)
}
