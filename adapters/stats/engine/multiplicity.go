package engine

import (
	"context"
	"sort"

	"skipcorr/domain/stats"
	"skipcorr/internal/errors"
	"skipcorr/ports"
)

// correct applies the configured multiple-comparison correction across the
// collected p-values and returns the threshold used (ECP only) plus the
// significance flags aligned with the original pair order.
func (e *Engine) correct(ctx context.Context, pvals []float64, n int, opts stats.Options) (float64, []bool, error) {
	switch opts.Method {
	case stats.MethodHochberg:
		return 0, hochbergFlags(pvals, opts.Alpha), nil
	case stats.MethodECP:
		threshold := opts.CriticalP
		if threshold == 0 {
			if e.calibrator == nil {
				return 0, nil, errors.ConfigInvalid("ECP correction needs a critical p-value or a configured calibrator")
			}
			e.log.Info("calibrating ECP critical p-value (n=%d, %d pairs, %d iterations); this is slow",
				n, len(opts.Pairs), opts.CalibrationIters)
			calibrated, err := e.calibrator.Calibrate(ctx, ports.CalibrationRequest{
				N:          n,
				Pairs:      opts.Pairs,
				Alpha:      opts.Alpha,
				NBoot:      opts.NBoot,
				Iterations: opts.CalibrationIters,
				Seed:       opts.Seed,
			})
			if err != nil {
				return 0, nil, errors.Wrap(err, "ECP calibration failed")
			}
			threshold = calibrated
		}
		return threshold, ecpFlags(pvals, threshold), nil
	}
	return 0, nil, errors.ConfigInvalid("unknown correction method " + string(opts.Method))
}

// ecpFlags marks each pair significant when its p-value falls below the
// single calibrated threshold, independently of the other pairs.
func ecpFlags(pvals []float64, threshold float64) []bool {
	flags := make([]bool, len(pvals))
	for i, p := range pvals {
		flags[i] = p < threshold
	}
	return flags
}

// hochbergFlags applies the Hochberg step-up procedure: scan p-values from
// the largest down with rank k starting at 1, stop at the first rank where
// p < alpha/k, and mark that p-value and every more significant one. Flags
// are mapped back to the original ordering through the sort permutation.
func hochbergFlags(pvals []float64, alpha float64) []bool {
	order := make([]int, len(pvals))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return pvals[order[a]] > pvals[order[b]]
	})

	flags := make([]bool, len(pvals))
	cut := -1
	for k := 1; k <= len(order); k++ {
		if pvals[order[k-1]] < alpha/float64(k) {
			cut = k
			break
		}
	}
	if cut > 0 {
		for k := cut; k <= len(order); k++ {
			flags[order[k-1]] = true
		}
	}
	return flags
}
