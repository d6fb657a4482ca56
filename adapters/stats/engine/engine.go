package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"skipcorr/domain/core"
	"skipcorr/domain/stats"
	"skipcorr/internal"
	"skipcorr/internal/errors"
	"skipcorr/ports"
)

// Engine runs the skipped-correlation pipeline: per-pair outlier cleaning,
// robust Pearson correlation, bootstrap inference against a shared resample
// table, and multiplicity correction across the batch.
type Engine struct {
	detector   *OutlierDetector
	calibrator ports.CriticalPValueCalibrator
	rng        ports.RNG
	log        *internal.Logger
}

// New wires an engine from the injected estimators, calibrator and RNG.
// calibrator may be nil when the ECP threshold is always supplied by callers.
func New(loc ports.LocationScatterEstimator, quart ports.QuartileEstimator, calibrator ports.CriticalPValueCalibrator, src ports.RNG, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{
		detector:   NewOutlierDetector(loc, quart),
		calibrator: calibrator,
		rng:        src,
		log:        logger,
	}
}

// Analyze runs the full pipeline over the matrix. Configuration errors abort
// before any pair is processed; numerical degeneracies in individual pairs
// surface as NaN/Inf slots and never abort the batch.
func (e *Engine) Analyze(ctx context.Context, m *stats.Matrix, opts stats.Options) (*stats.Run, error) {
	started := time.Now()
	opts = opts.WithDefaults()
	if err := validateRequest(m, &opts); err != nil {
		return nil, err
	}

	// One table per call, shared read-only by every pair. The stream label
	// carries the run seed so identical requests resample identically.
	table := BuildResampleTable(e.rng.Stream(fmt.Sprintf("resample:%d", opts.Seed)), m.N(), opts.NBoot)

	results := make([]stats.PairResult, len(opts.Pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pair := range opts.Pairs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = e.analyzePair(m, pair, table, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &stats.Run{
		ID:        core.NewRunID(),
		Options:   opts,
		N:         m.N(),
		Results:   results,
		StartedAt: started,
	}

	// Correction (and the expensive ECP calibration behind it) only happens
	// when inferential output was actually requested.
	if opts.Inference {
		threshold, flags, err := e.correct(ctx, run.PValues(), m.N(), opts)
		if err != nil {
			return nil, err
		}
		for i := range results {
			results[i].Significant = flags[i]
		}
		run.CriticalP = threshold
	}

	run.RuntimeMs = time.Since(started).Milliseconds()
	e.log.Debug("run %s: %d pairs in %dms", run.ID, len(results), run.RuntimeMs)
	return run, nil
}

// validateRequest checks the matrix and options, filling the default pair
// list. Every violation is a configuration error reported before any
// computation starts.
func validateRequest(m *stats.Matrix, opts *stats.Options) error {
	if m == nil || m.N() == 0 {
		return errors.InvalidInput("sample matrix is empty")
	}
	cols := m.Cols()
	for _, row := range m.Rows {
		if len(row) != cols {
			return errors.InvalidInput("sample matrix has ragged rows")
		}
	}
	if m.N() <= minDistinct {
		return errors.InvalidInput(fmt.Sprintf("sample must contain more than %d observations", minDistinct))
	}
	if cols < 2 {
		return errors.InvalidInput("sample must contain at least 2 variables")
	}

	if len(opts.Pairs) == 0 {
		opts.Pairs = stats.AllPairs(cols)
	}
	for _, pair := range opts.Pairs {
		if pair.A == pair.B {
			return errors.InvalidInput(fmt.Sprintf("pair %s does not reference two distinct columns", pair))
		}
		if pair.A < 0 || pair.A >= cols || pair.B < 0 || pair.B >= cols {
			return errors.InvalidInput(fmt.Sprintf("pair %s is out of range for %d columns", pair, cols))
		}
	}

	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		return errors.ConfigInvalid("alpha must be in (0, 1)")
	}
	if opts.NBoot < 1 {
		return errors.ConfigInvalid("nboot must be positive")
	}
	switch opts.Method {
	case stats.MethodECP:
	case stats.MethodHochberg:
		if m.N() <= 60 {
			return errors.ConfigInvalid("Hochberg correction requires n > 60")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown correction method %q (want ECP or Hochberg)", opts.Method))
	}
	return nil
}
