package engine

import (
	"context"
	"math/rand"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"skipcorr/domain/stats"
	"skipcorr/internal"
	"skipcorr/internal/errors"
	"skipcorr/ports"
)

// MonteCarloCalibrator derives the ECP critical p-value empirically: it
// simulates datasets of independent standard normal columns (the null of no
// association), runs the same skipped-correlation bootstrap on every tested
// pair, records the minimum p-value of each simulated batch, and returns the
// alpha-quantile of that minimum-p distribution. A batch whose smallest
// observed p-value falls below this threshold would then be flagged at
// familywise level alpha.
type MonteCarloCalibrator struct {
	detector *OutlierDetector
	log      *internal.Logger
}

// NewMonteCarloCalibrator builds a calibrator on the same robust estimators
// the engine uses, so the simulated pipeline matches the real one.
func NewMonteCarloCalibrator(loc ports.LocationScatterEstimator, quart ports.QuartileEstimator, logger *internal.Logger) *MonteCarloCalibrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MonteCarloCalibrator{detector: NewOutlierDetector(loc, quart), log: logger}
}

// Calibrate runs the Monte Carlo simulation and returns the critical p-value.
func (c *MonteCarloCalibrator) Calibrate(ctx context.Context, req ports.CalibrationRequest) (float64, error) {
	if req.N <= minDistinct {
		return 0, errors.InvalidInput("calibration needs more observations than variables")
	}
	if len(req.Pairs) == 0 {
		return 0, errors.InvalidInput("calibration needs at least one pair")
	}
	if req.Iterations <= 0 {
		req.Iterations = stats.DefaultCalibrationIters
	}
	if req.NBoot <= 0 {
		req.NBoot = stats.DefaultNBoot
	}

	cols := 0
	for _, pair := range req.Pairs {
		if pair.A >= cols {
			cols = pair.A + 1
		}
		if pair.B >= cols {
			cols = pair.B + 1
		}
	}

	minPs := make([]float64, 0, req.Iterations)
	for it := 0; it < req.Iterations; it++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		rng := rand.New(rand.NewSource(req.Seed + int64(it)*1_000_003))
		columns := make([][]float64, cols)
		for j := range columns {
			col := make([]float64, req.N)
			for i := range col {
				col[i] = rng.NormFloat64()
			}
			columns[j] = col
		}

		table := BuildResampleTable(rng, req.N, req.NBoot)
		minP := 1.0
		for _, pair := range req.Pairs {
			x, y := columns[pair.A], columns[pair.B]
			flags, _, err := c.detector.Detect(x, y)
			if err != nil {
				// Degenerate simulated draw; skip the pair for this iteration.
				continue
			}
			rs := bootstrapCorrelations(x, y, keptIndices(flags), table)
			sort.Float64s(rs)
			if p := bootstrapPValue(rs); p < minP {
				minP = p
			}
		}
		minPs = append(minPs, minP)

		if (it+1)%50 == 0 {
			c.log.Debug("ECP calibration: %d/%d iterations", it+1, req.Iterations)
		}
	}

	threshold, err := mstats.Percentile(minPs, req.Alpha*100)
	if err != nil {
		return 0, errors.Wrap(err, "calibration quantile")
	}
	return threshold, nil
}
