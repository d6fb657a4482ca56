package testkit

import (
	"math"
	"math/rand"

	"skipcorr/domain/stats"
	"skipcorr/internal/errors"
)

// Config controls synthetic bivariate sample generation.
type Config struct {
	Rows         int
	Seed         int64
	Correlation  float64 // true correlation of the clean portion
	Outliers     int     // extreme rows injected after generation
	OutlierScale float64 // distance of injected outliers from the bulk, in SDs
}

// DefaultConfig returns the baseline generator settings used across tests.
func DefaultConfig() Config {
	return Config{
		Rows:         200,
		Seed:         42,
		Correlation:  0.6,
		Outliers:     0,
		OutlierScale: 10,
	}
}

// Dataset is a generated bivariate sample with known ground truth.
type Dataset struct {
	X, Y        []float64
	OutlierRows []int // rows overwritten with extreme values, ascending
}

// Generate draws a seeded bivariate normal sample with the configured true
// correlation, then overwrites Config.Outliers rows with extreme
// anti-correlated points so outlier-detection behavior can be asserted
// against known contamination.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, errors.InvalidInput("rows must be positive")
	}
	if cfg.Correlation <= -1 || cfg.Correlation >= 1 {
		return nil, errors.InvalidInput("correlation must be in (-1, 1)")
	}
	if cfg.Outliers < 0 || cfg.Outliers >= cfg.Rows {
		return nil, errors.InvalidInput("outlier count must be in [0, rows)")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	x := make([]float64, cfg.Rows)
	y := make([]float64, cfg.Rows)
	noise := math.Sqrt(1 - cfg.Correlation*cfg.Correlation)
	for i := 0; i < cfg.Rows; i++ {
		z1 := rng.NormFloat64()
		z2 := rng.NormFloat64()
		x[i] = z1
		y[i] = cfg.Correlation*z1 + noise*z2
	}

	ds := &Dataset{X: x, Y: y}
	if cfg.Outliers > 0 {
		scale := cfg.OutlierScale
		if scale <= 0 {
			scale = 10
		}
		// Deterministic placement: the last Outliers rows, pushed far into the
		// quadrant opposite to the true association.
		for k := 0; k < cfg.Outliers; k++ {
			row := cfg.Rows - 1 - k
			x[row] = scale + rng.Float64()
			y[row] = -scale - rng.Float64()
			ds.OutlierRows = append([]int{row}, ds.OutlierRows...)
		}
	}
	return ds, nil
}

// Matrix packs the dataset into a two-column sample matrix.
func (d *Dataset) Matrix() *stats.Matrix {
	rows := make([][]float64, len(d.X))
	for i := range rows {
		rows[i] = []float64{d.X[i], d.Y[i]}
	}
	return &stats.Matrix{Names: []string{"x", "y"}, Rows: rows}
}
