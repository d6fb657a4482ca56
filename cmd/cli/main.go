package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"skipcorr/adapters/excel"
	"skipcorr/adapters/robust"
	"skipcorr/adapters/stats/engine"
	"skipcorr/app"
	"skipcorr/domain/stats"
	"skipcorr/internal"
	"skipcorr/internal/report"
	"skipcorr/internal/rng"
	"skipcorr/internal/testkit"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "skipcorr",
		Short: "Robust (skipped) Pearson correlation with bootstrap inference",
	}
	rootCmd.AddCommand(newAnalyzeCmd(), newSimulateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analysisFlags are the run options shared by analyze and simulate.
type analysisFlags struct {
	method    string
	alpha     float64
	nboot     int
	seed      int64
	inference bool
	criticalP float64
	iters     int
	format    string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.method, "method", string(stats.MethodECP), "multiplicity correction: ECP or Hochberg")
	cmd.Flags().Float64Var(&f.alpha, "alpha", stats.DefaultAlpha, "nominal familywise error level")
	cmd.Flags().IntVar(&f.nboot, "nboot", stats.DefaultNBoot, "bootstrap resample count")
	cmd.Flags().Int64Var(&f.seed, "seed", 42, "random seed for deterministic resampling")
	cmd.Flags().BoolVar(&f.inference, "inference", true, "compute bootstrap p-values, CIs and significance")
	cmd.Flags().Float64Var(&f.criticalP, "critical-p", 0, "precomputed ECP threshold (skips Monte Carlo calibration)")
	cmd.Flags().IntVar(&f.iters, "calibration-iters", stats.DefaultCalibrationIters, "Monte Carlo iterations for ECP calibration")
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json, report or html")
}

func (f *analysisFlags) options(pairs []stats.Pair) stats.Options {
	return stats.Options{
		Pairs:            pairs,
		Method:           stats.Method(f.method),
		Alpha:            f.alpha,
		NBoot:            f.nboot,
		Seed:             f.seed,
		Inference:        f.inference,
		CriticalP:        f.criticalP,
		CalibrationIters: f.iters,
	}
}

func newAnalyzeCmd() *cobra.Command {
	var flags analysisFlags
	var pairsSpec string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run skipped correlations over a CSV or Excel matrix",
		Long: `Run the skipped-correlation pipeline over a numeric matrix read from a
.csv or .xlsx file (rows = observations, columns = variables, optional header).

Example: skipcorr analyze data.csv --method Hochberg --seed 12345 --format report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := excel.NewDataReader(args[0]).Read()
			if err != nil {
				return err
			}
			pairs, err := parsePairs(pairsSpec)
			if err != nil {
				return err
			}

			service := buildService(flags.seed)
			run, err := service.Analyze(cmd.Context(), app.AnalyzeRequest{
				Matrix:  matrix,
				Options: flags.options(pairs),
			})
			if err != nil {
				return err
			}
			return printRun(run, matrix.Names, flags.format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&pairsSpec, "pairs", "", `pairs to test as "a:b,c:d" column indices (default: all pairs)`)
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var flags analysisFlags
	var rows, outliers int
	var correlation float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the pipeline on a synthetic contaminated bivariate sample",
		Long: `Generate a seeded bivariate normal sample with a known true correlation,
inject extreme outlier rows, and run the full pipeline on it.

Example: skipcorr simulate --rows 100 --correlation 0.6 --outliers 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := testkit.Generate(testkit.Config{
				Rows:         rows,
				Seed:         flags.seed,
				Correlation:  correlation,
				Outliers:     outliers,
				OutlierScale: 10,
			})
			if err != nil {
				return err
			}

			matrix := ds.Matrix()
			service := buildService(flags.seed)
			run, err := service.Analyze(cmd.Context(), app.AnalyzeRequest{
				Matrix:  matrix,
				Options: flags.options(nil),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "injected outlier rows: %v\n", ds.OutlierRows)
			return printRun(run, matrix.Names, flags.format)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&rows, "rows", 100, "observations to generate")
	cmd.Flags().Float64Var(&correlation, "correlation", 0.6, "true correlation of the clean portion")
	cmd.Flags().IntVar(&outliers, "outliers", 5, "extreme rows to inject")
	return cmd
}

// buildService wires the default engine stack: MCD + ideal fourths robust
// estimators, Monte Carlo ECP calibrator, seeded RNG streams, no persistence.
func buildService(seed int64) *app.CorrelationService {
	logger := internal.NewDefaultLogger()
	mcd := robust.NewMCD(500, seed)
	quartiles := robust.IdealFourths{}
	calibrator := engine.NewMonteCarloCalibrator(mcd, quartiles, logger)
	eng := engine.New(mcd, quartiles, calibrator, rng.New(seed), logger)
	return app.NewCorrelationService(eng, nil, logger)
}

// parsePairs parses "0:1,0:2" into a pair list. Empty means all pairs.
func parsePairs(spec string) ([]stats.Pair, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var pairs []stats.Pair
	for _, part := range strings.Split(spec, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid pair %q (want a:b)", part)
		}
		a, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid column index %q", fields[0])
		}
		b, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid column index %q", fields[1])
		}
		pairs = append(pairs, stats.Pair{A: a, B: b})
	}
	return pairs, nil
}

func printRun(run *stats.Run, names []string, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode run (degenerate NaN/Inf slots are not valid JSON): %w", err)
		}
		fmt.Println(string(out))
	case "report":
		fmt.Print(report.Markdown(run, names))
	case "html":
		os.Stdout.Write(report.HTML(run, names))
	default:
		return fmt.Errorf("unknown format %q (want json, report or html)", format)
	}
	return nil
}
