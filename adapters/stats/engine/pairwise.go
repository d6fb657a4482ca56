package engine

import (
	"math"
	"sort"

	gstat "gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"skipcorr/domain/stats"
)

// analyzePair runs the full per-pair pipeline: outlier detection, skipped
// correlation, and (when requested) bootstrap inference against the shared
// resample table.
func (e *Engine) analyzePair(m *stats.Matrix, pair stats.Pair, table [][]int, opts stats.Options) stats.PairResult {
	x := m.Column(pair.A)
	y := m.Column(pair.B)
	n := len(x)

	res := stats.PairResult{Pair: pair}

	flags, outliers, err := e.detector.Detect(x, y)
	if err != nil {
		// Degenerate joint sample: fall back to keeping every row, which
		// matches the no-outlier case. The correlation slot will carry the
		// degeneracy (NaN) if the columns themselves are constant.
		e.log.Warn("outlier detection failed for pair %s: %v", pair, err)
		flags = make([]bool, n)
		outliers = nil
	}
	res.Outliers = outliers

	kept := keptIndices(flags)
	r := pearsonKept(x, y, kept)
	res.R = r
	// The t-statistic uses the original sample size n, not the post-cleaning
	// count. |r|=1 divides by zero and surfaces as +/-Inf, never as an error.
	res.T = r * math.Sqrt((float64(n)-2)/(1-r*r))
	res.StudentP = studentPValue(res.T, n-2)

	if opts.Inference {
		rs := bootstrapCorrelations(x, y, kept, table)
		sort.Float64s(rs)
		res.BootP = bootstrapPValue(rs)
		res.CI = percentileInterval(rs, opts.Alpha)
	}
	return res
}

// pearsonKept computes the Pearson correlation over the kept row positions.
func pearsonKept(x, y []float64, kept []int) float64 {
	xs := make([]float64, len(kept))
	ys := make([]float64, len(kept))
	for i, idx := range kept {
		xs[i] = x[idx]
		ys[i] = y[idx]
	}
	return gstat.Correlation(xs, ys, nil)
}

// bootstrapCorrelations recomputes the correlation under every resample
// column. Each column re-indexes the pair columns, then the ORIGINAL keep
// mask is applied by position: outliers are not re-detected per resample.
// This bootstraps the cleaned-data correlation, not the full
// detection-plus-correlation pipeline, by design of the method.
func bootstrapCorrelations(x, y []float64, kept []int, table [][]int) []float64 {
	rs := make([]float64, len(table))
	xs := make([]float64, len(kept))
	ys := make([]float64, len(kept))
	for b, col := range table {
		for i, pos := range kept {
			xs[i] = x[col[pos]]
			ys[i] = y[col[pos]]
		}
		rs[b] = gstat.Correlation(xs, ys, nil)
	}
	return rs
}

// bootstrapPValue is the two-sided percentile bootstrap p-value. A finite
// bootstrap cannot certify an exact zero, so 0 is floored to 1/nboot.
func bootstrapPValue(rs []float64) float64 {
	nboot := len(rs)
	neg := 0
	for _, r := range rs {
		if r < 0 {
			neg++
		}
	}
	q := float64(neg) / float64(nboot)
	p := 2 * math.Min(q, 1-q)
	if p == 0 {
		p = 1 / float64(nboot)
	}
	return p
}

// percentileInterval picks the bootstrap CI bounds at the 1-indexed positions
// round(alpha*nboot/2) and nboot minus that, into the ascending-sorted
// bootstrap correlations.
func percentileInterval(sorted []float64, alpha float64) stats.Interval {
	nboot := len(sorted)
	lo := int(math.Round(alpha * float64(nboot) / 2))
	if lo < 1 {
		lo = 1
	}
	hi := nboot - lo
	if hi < lo {
		hi = lo
	}
	return stats.Interval{Lower: sorted[lo-1], Upper: sorted[hi-1]}
}

// studentPValue is the classical two-sided Student-t reference p-value for
// the observed t-statistic, reported as a diagnostic next to the bootstrap p.
func studentPValue(t float64, df int) float64 {
	if df <= 0 || math.IsNaN(t) {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}
