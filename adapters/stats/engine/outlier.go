package engine

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"skipcorr/internal/errors"
	"skipcorr/ports"
)

// fenceMultiplier is the boxplot-rule constant applied to the ideal-fourths
// IQR when setting the outlier cutoff.
const fenceMultiplier = 1.5

// OutlierDetector flags bivariate outliers: observations whose robust distance
// to the MCD center, under the MCD scatter metric, exceeds the upper fourth of
// all distances by more than fenceMultiplier times their interquartile range.
//
// Outlier status depends on the joint distribution of exactly the two selected
// columns, so the detector runs independently for every tested pair.
type OutlierDetector struct {
	loc   ports.LocationScatterEstimator
	quart ports.QuartileEstimator
}

// NewOutlierDetector creates a detector from the injected robust estimators.
func NewOutlierDetector(loc ports.LocationScatterEstimator, quart ports.QuartileEstimator) *OutlierDetector {
	return &OutlierDetector{loc: loc, quart: quart}
}

// Detect returns a per-observation outlier flag vector and the flagged row
// indices. Both columns must have equal length.
func (d *OutlierDetector) Detect(x, y []float64) ([]bool, []int, error) {
	n := len(x)
	if len(y) != n {
		return nil, nil, errors.InvalidInput("columns have unequal length")
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{x[i], y[i]}
	}

	est, err := d.loc.Estimate(rows)
	if err != nil {
		return nil, nil, err
	}

	var chol mat.Cholesky
	if !chol.Factorize(est.Scatter) {
		return nil, nil, errors.DegenerateData("robust scatter is singular")
	}

	center := mat.NewVecDense(len(est.Center), est.Center)
	dists := make([]float64, n)
	for i, row := range rows {
		dists[i] = stat.Mahalanobis(mat.NewVecDense(2, row), center, &chol)
	}

	lower, upper := d.quart.Quartiles(dists)
	fence := upper + fenceMultiplier*(upper-lower)

	flags := make([]bool, n)
	var outliers []int
	for i, dist := range dists {
		if dist > fence {
			flags[i] = true
			outliers = append(outliers, i)
		}
	}
	return flags, outliers, nil
}

// keptIndices converts a flag vector into the list of retained row positions.
func keptIndices(flags []bool) []int {
	kept := make([]int, 0, len(flags))
	for i, flagged := range flags {
		if !flagged {
			kept = append(kept, i)
		}
	}
	return kept
}
