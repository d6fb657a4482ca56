package robust

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"skipcorr/internal/errors"
	"skipcorr/ports"
)

// MCD approximates the minimum covariance determinant estimator of
// multivariate location and scatter: among subsets of size
// h = floor((n + 2p + 1) / 2), find the one whose classical covariance has the
// smallest determinant, and report that subset's mean and covariance.
//
// The search follows the FAST-MCD recipe: random elemental starts of p+1
// observations, each refined by concentration steps (refit on the h rows
// closest to the current estimate) until the determinant stops shrinking.
type MCD struct {
	// Samples is the number of random elemental starts.
	Samples int
	// CSteps caps the concentration steps per start.
	CSteps int
	// Seed drives the subset draws. Estimate reseeds on every call, so the
	// estimator is deterministic and safe to share across goroutines.
	Seed int64
}

// NewMCD creates an MCD estimator with the given start count and seed.
func NewMCD(samples int, seed int64) *MCD {
	if samples <= 0 {
		samples = 500
	}
	return &MCD{Samples: samples, CSteps: 20, Seed: seed}
}

// Estimate computes the robust location and scatter of rows (n observations
// by p variables).
func (m *MCD) Estimate(rows [][]float64) (ports.LocationScatter, error) {
	n := len(rows)
	if n == 0 {
		return ports.LocationScatter{}, errors.InvalidInput("empty sample")
	}
	p := len(rows[0])
	h := (n + 2*p + 1) / 2
	if h > n {
		h = n
	}

	// Too few rows to search subsets: classical estimate is all there is.
	if n <= p+2 {
		return classicalFit(rows, allIndices(n))
	}

	rng := rand.New(rand.NewSource(m.Seed))
	bestDet := math.Inf(1)
	var best fit

	for s := 0; s < m.Samples; s++ {
		idx := drawDistinct(rng, n, p+1)
		f, ok := fitSubset(rows, idx)
		// Singular elemental sets are grown until they span the space.
		for !ok && len(idx) < h {
			idx = growSubset(rng, n, idx)
			f, ok = fitSubset(rows, idx)
		}
		if !ok {
			continue
		}

		for c := 0; c < m.CSteps; c++ {
			next := hClosest(rows, f, h)
			nf, nok := fitSubset(rows, next)
			if !nok {
				break
			}
			if nf.det >= f.det {
				break
			}
			f = nf
		}

		if f.det < bestDet {
			bestDet = f.det
			best = f
		}
	}

	if math.IsInf(bestDet, 1) {
		// Every start was singular: the sample itself is degenerate.
		return classicalFit(rows, allIndices(n))
	}
	return ports.LocationScatter{Center: best.center, Scatter: best.cov}, nil
}

// fit is one candidate subset estimate.
type fit struct {
	center []float64
	cov    *mat.SymDense
	chol   *mat.Cholesky
	det    float64
}

// fitSubset computes the mean and covariance of the indexed rows. ok is false
// when the covariance is singular.
func fitSubset(rows [][]float64, idx []int) (fit, bool) {
	if len(idx) < 2 {
		return fit{}, false
	}
	p := len(rows[0])
	center := make([]float64, p)
	data := make([]float64, 0, len(idx)*p)
	for _, i := range idx {
		for j, v := range rows[i] {
			center[j] += v
		}
		data = append(data, rows[i]...)
	}
	for j := range center {
		center[j] /= float64(len(idx))
	}

	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, mat.NewDense(len(idx), p, data), nil)

	chol := new(mat.Cholesky)
	if !chol.Factorize(cov) {
		return fit{}, false
	}
	return fit{center: center, cov: cov, chol: chol, det: chol.Det()}, true
}

// classicalFit is the non-robust fallback for degenerate searches.
func classicalFit(rows [][]float64, idx []int) (ports.LocationScatter, error) {
	f, ok := fitSubset(rows, idx)
	if !ok {
		return ports.LocationScatter{}, errors.DegenerateData("sample covariance is singular")
	}
	return ports.LocationScatter{Center: f.center, Scatter: f.cov}, nil
}

// hClosest returns the indices of the h rows with the smallest robust
// distances to the current estimate.
func hClosest(rows [][]float64, f fit, h int) []int {
	p := len(rows[0])
	center := mat.NewVecDense(p, f.center)
	type rowDist struct {
		idx  int
		dist float64
	}
	dists := make([]rowDist, len(rows))
	for i, row := range rows {
		dists[i] = rowDist{idx: i, dist: stat.Mahalanobis(mat.NewVecDense(p, row), center, f.chol)}
	}
	sort.Slice(dists, func(a, b int) bool { return dists[a].dist < dists[b].dist })

	out := make([]int, h)
	for i := 0; i < h; i++ {
		out[i] = dists[i].idx
	}
	return out
}

func drawDistinct(rng *rand.Rand, n, k int) []int {
	seen := make(map[int]bool, k)
	out := make([]int, 0, k)
	for len(out) < k {
		i := rng.Intn(n)
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

func growSubset(rng *rand.Rand, n int, idx []int) []int {
	seen := make(map[int]bool, len(idx))
	for _, i := range idx {
		seen[i] = true
	}
	for {
		i := rng.Intn(n)
		if !seen[i] {
			return append(idx, i)
		}
	}
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
