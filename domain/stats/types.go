package stats

import (
	"fmt"
	"time"

	"skipcorr/domain/core"
)

// Method selects the multiple-comparison correction applied across tested pairs.
type Method string

const (
	// MethodECP uses a single critical p-value threshold calibrated by Monte Carlo
	// simulation for the skipped-correlation bootstrap (or supplied by the caller).
	MethodECP Method = "ECP"
	// MethodHochberg uses the Hochberg step-up procedure. Valid only for n > 60.
	MethodHochberg Method = "Hochberg"
)

// Pair identifies an unordered variable pair by 0-based column indices.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (p Pair) String() string {
	return fmt.Sprintf("%d:%d", p.A, p.B)
}

// AllPairs returns every unordered pair of the first cols columns, in the
// canonical (i, j>i) order.
func AllPairs(cols int) []Pair {
	pairs := make([]Pair, 0, cols*(cols-1)/2)
	for i := 0; i < cols; i++ {
		for j := i + 1; j < cols; j++ {
			pairs = append(pairs, Pair{A: i, B: j})
		}
	}
	return pairs
}

// Matrix is an immutable n-observation by p-variable sample. Rows are
// observations; no missing entries are allowed.
type Matrix struct {
	Names []string    `json:"names,omitempty"`
	Rows  [][]float64 `json:"rows"`
}

// N returns the number of observations.
func (m *Matrix) N() int {
	return len(m.Rows)
}

// Cols returns the number of variables.
func (m *Matrix) Cols() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return len(m.Rows[0])
}

// Column extracts a copy of column j.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		col[i] = row[j]
	}
	return col
}

// Name returns the display name of column j, falling back to a positional label.
func (m *Matrix) Name(j int) string {
	if j < len(m.Names) && m.Names[j] != "" {
		return m.Names[j]
	}
	return fmt.Sprintf("var_%d", j)
}

// Options configures a correlation run.
type Options struct {
	// Pairs lists the variable pairs to test. Empty means all unordered pairs.
	Pairs []Pair `json:"pairs,omitempty"`
	// Method is the multiplicity correction. Default MethodECP.
	Method Method `json:"method,omitempty"`
	// Alpha is the nominal familywise error level. Default 0.05.
	Alpha float64 `json:"alpha,omitempty"`
	// NBoot is the bootstrap resample count. Default 599.
	NBoot int `json:"nboot,omitempty"`
	// Seed drives every random draw in the run, making it reproducible.
	Seed int64 `json:"seed,omitempty"`
	// Inference requests bootstrap p-values, confidence intervals and corrected
	// significance flags. Without it only r, t and outliers are computed.
	Inference bool `json:"inference"`
	// CriticalP, when non-zero, bypasses the Monte Carlo calibration on the ECP
	// path and is used directly as the significance threshold.
	CriticalP float64 `json:"critical_p,omitempty"`
	// CalibrationIters is the Monte Carlo iteration count for ECP calibration.
	CalibrationIters int `json:"calibration_iters,omitempty"`
}

// Defaults shared by the engine, the config layer and the binaries.
const (
	DefaultAlpha            = 0.05
	DefaultNBoot            = 599
	DefaultCalibrationIters = 200
)

// WithDefaults fills unset options with their documented defaults.
func (o Options) WithDefaults() Options {
	if o.Method == "" {
		o.Method = MethodECP
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	if o.NBoot == 0 {
		o.NBoot = DefaultNBoot
	}
	if o.CalibrationIters == 0 {
		o.CalibrationIters = DefaultCalibrationIters
	}
	return o
}

// Interval is a two-sided percentile bootstrap confidence interval.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// PairResult holds every per-pair output slot. Degenerate inputs surface as
// NaN/Inf in the corresponding slot rather than failing the run.
type PairResult struct {
	Pair Pair `json:"pair"`
	// R is the skipped (outlier-cleaned) Pearson correlation.
	R float64 `json:"r"`
	// T is r*sqrt((n-2)/(1-r^2)) computed with the original sample size n.
	T float64 `json:"t"`
	// BootP is the two-sided percentile bootstrap p-value, floored at 1/nboot.
	BootP float64 `json:"boot_p,omitempty"`
	// StudentP is the classical two-sided Student-t reference p-value for T.
	StudentP float64 `json:"student_p,omitempty"`
	// CI is the percentile bootstrap confidence interval for r.
	CI Interval `json:"ci,omitempty"`
	// Significant is the multiplicity-corrected significance flag.
	Significant bool `json:"significant"`
	// Outliers lists the 0-based rows removed as bivariate outliers.
	Outliers []int `json:"outliers,omitempty"`
}

// Run is the complete, ordered output of one analysis call. Results are
// aligned index-for-index with the tested pair list.
type Run struct {
	ID        core.RunID   `json:"id"`
	Options   Options      `json:"options"`
	N         int          `json:"n"`
	Results   []PairResult `json:"results"`
	CriticalP float64      `json:"critical_p,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	RuntimeMs int64        `json:"runtime_ms"`
}

// PValues returns the bootstrap p-values aligned with Results.
func (r *Run) PValues() []float64 {
	out := make([]float64, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.BootP
	}
	return out
}
