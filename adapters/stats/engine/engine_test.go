package engine

import (
	"context"
	"math"
	"math/rand"
	"testing"

	gstat "gonum.org/v1/gonum/stat"

	"skipcorr/adapters/robust"
	"skipcorr/domain/stats"
	"skipcorr/internal"
	"skipcorr/internal/rng"
	"skipcorr/internal/testkit"
)

// newTestEngine wires the production robust estimators with no calibrator;
// tests that exercise ECP supply a fixed critical p-value instead.
func newTestEngine(seed int64) *Engine {
	return New(
		robust.NewMCD(500, seed),
		robust.IdealFourths{},
		nil,
		rng.New(seed),
		internal.NewLogger(internal.LogLevelError),
	)
}

// tinyMatrix builds an n-row 2-column matrix with a mild association and
// enough noise to avoid degeneracy.
func tinyMatrix(n int) *stats.Matrix {
	r := rand.New(rand.NewSource(99))
	rows := make([][]float64, n)
	for i := range rows {
		x := r.NormFloat64()
		rows[i] = []float64{x, 0.5*x + r.NormFloat64()}
	}
	return &stats.Matrix{Rows: rows}
}

func TestAnalyze_EndToEndWithContamination(t *testing.T) {
	ds, err := testkit.Generate(testkit.Config{
		Rows: 105, Seed: 31, Correlation: 0.6, Outliers: 5, OutlierScale: 10,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	eng := newTestEngine(31)
	run, err := eng.Analyze(context.Background(), ds.Matrix(), stats.Options{
		Inference: true,
		CriticalP: 0.012, // fixed threshold bypasses Monte Carlo calibration
		Seed:      31,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(run.Results) != 1 {
		t.Fatalf("result count: got %d, want 1", len(run.Results))
	}
	res := run.Results[0]

	// Every injected row must be among the detected outliers.
	flagged := make(map[int]bool, len(res.Outliers))
	for _, row := range res.Outliers {
		flagged[row] = true
	}
	for _, row := range ds.OutlierRows {
		if !flagged[row] {
			t.Fatalf("injected outlier row %d missing from %v", row, res.Outliers)
		}
	}

	// The cleaned estimate must beat the raw Pearson correlation on the
	// contaminated sample.
	raw := gstat.Correlation(ds.X, ds.Y, nil)
	if math.Abs(res.R-0.6) >= math.Abs(raw-0.6) {
		t.Fatalf("cleaned r=%.4f is no closer to 0.6 than raw r=%.4f", res.R, raw)
	}

	if res.BootP <= 0 || res.BootP > 1 {
		t.Fatalf("bootstrap p-value %v outside (0, 1]", res.BootP)
	}
	if res.CI.Lower > res.R || res.R > res.CI.Upper {
		t.Fatalf("observed r=%.4f outside CI [%.4f, %.4f]", res.R, res.CI.Lower, res.CI.Upper)
	}

	// With true correlation 0.6 the floored p-value 1/599 sits far below the
	// fixed 0.012 threshold.
	if !res.Significant {
		t.Fatalf("expected significance at threshold %.3f with p=%.5f", run.CriticalP, res.BootP)
	}
	if run.CriticalP != 0.012 {
		t.Fatalf("critical p: got %v, want the supplied 0.012", run.CriticalP)
	}
}

func TestAnalyze_ResultsAlignedWithPairOrder(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	rows := make([][]float64, 80)
	for i := range rows {
		rows[i] = []float64{r.NormFloat64(), r.NormFloat64(), r.NormFloat64()}
	}
	m := &stats.Matrix{Rows: rows}

	eng := newTestEngine(5)
	run, err := eng.Analyze(context.Background(), m, stats.Options{Seed: 5})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	wantPairs := []stats.Pair{{A: 0, B: 1}, {A: 0, B: 2}, {A: 1, B: 2}}
	if len(run.Results) != len(wantPairs) {
		t.Fatalf("result count: got %d, want %d", len(run.Results), len(wantPairs))
	}
	for i, res := range run.Results {
		if res.Pair != wantPairs[i] {
			t.Fatalf("result %d pair: got %v, want %v", i, res.Pair, wantPairs[i])
		}
	}
}

func TestAnalyze_DeterministicForSeed(t *testing.T) {
	ds, err := testkit.Generate(testkit.Config{Rows: 90, Seed: 13, Correlation: 0.4})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	opts := stats.Options{Inference: true, CriticalP: 0.015, Seed: 13}

	first, err := newTestEngine(13).Analyze(context.Background(), ds.Matrix(), opts)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := newTestEngine(13).Analyze(context.Background(), ds.Matrix(), opts)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.R != b.R || a.BootP != b.BootP || a.CI != b.CI || a.T != b.T {
			t.Fatalf("run results differ between identical seeded calls:\n%+v\n%+v", a, b)
		}
	}
}

func TestAnalyze_WithoutInferenceSkipsBootstrapAndCorrection(t *testing.T) {
	ds, err := testkit.Generate(testkit.Config{Rows: 70, Seed: 3, Correlation: 0.5})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// No calibrator is wired: this only passes because correction is skipped.
	run, err := newTestEngine(3).Analyze(context.Background(), ds.Matrix(), stats.Options{Seed: 3})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	res := run.Results[0]
	if res.BootP != 0 || res.CI != (stats.Interval{}) || res.Significant {
		t.Fatalf("inferential slots must stay empty without inference: %+v", res)
	}
	if res.R == 0 || res.T == 0 {
		t.Fatalf("point estimates must still be computed: %+v", res)
	}
}

func TestAnalyze_HochbergEndToEnd(t *testing.T) {
	r := rand.New(rand.NewSource(77))
	rows := make([][]float64, 100)
	for i := range rows {
		x := r.NormFloat64()
		// Columns 0 and 1 are strongly related; column 2 is pure noise.
		rows[i] = []float64{x, 0.8*x + 0.3*r.NormFloat64(), r.NormFloat64()}
	}
	m := &stats.Matrix{Rows: rows}

	run, err := newTestEngine(77).Analyze(context.Background(), m, stats.Options{
		Method:    stats.MethodHochberg,
		Inference: true,
		Seed:      77,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !run.Results[0].Significant {
		t.Fatalf("pair 0:1 with strong association not flagged: p=%v", run.Results[0].BootP)
	}
}

func TestAnalyze_RejectsTooFewObservations(t *testing.T) {
	m := &stats.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}}
	if _, err := newTestEngine(1).Analyze(context.Background(), m, stats.Options{}); err == nil {
		t.Fatal("expected rejection of n=2 sample")
	}
}
