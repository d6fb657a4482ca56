package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	mstats "github.com/montanaflynn/stats"

	"skipcorr/domain/stats"
)

// Markdown renders a completed run as a markdown report: run parameters, a
// per-pair result table and a short summary of the correlation distribution.
// names supplies column display names; nil falls back to positional labels.
func Markdown(run *stats.Run, names []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Skipped correlation run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- n = %d observations, %d pairs tested\n", run.N, len(run.Results))
	fmt.Fprintf(&b, "- method = %s, alpha = %g, nboot = %d, seed = %d\n",
		run.Options.Method, run.Options.Alpha, run.Options.NBoot, run.Options.Seed)
	if run.CriticalP > 0 {
		fmt.Fprintf(&b, "- ECP critical p-value = %.5f\n", run.CriticalP)
	}
	fmt.Fprintf(&b, "- runtime = %dms\n\n", run.RuntimeMs)

	b.WriteString("| pair | r | t | boot p | 95% CI | significant | outliers |\n")
	b.WriteString("|------|---|---|--------|--------|-------------|----------|\n")
	for _, res := range run.Results {
		ci := "-"
		bootP := "-"
		if run.Options.Inference {
			ci = fmt.Sprintf("[%.4f, %.4f]", res.CI.Lower, res.CI.Upper)
			bootP = fmt.Sprintf("%.4f", res.BootP)
		}
		fmt.Fprintf(&b, "| %s ~ %s | %.4f | %.3f | %s | %s | %v | %d |\n",
			name(names, res.Pair.A), name(names, res.Pair.B),
			res.R, res.T, bootP, ci, res.Significant, len(res.Outliers))
	}
	b.WriteString("\n")

	if summary := correlationSummary(run); summary != "" {
		b.WriteString(summary)
	}
	return b.String()
}

// HTML renders the markdown report to a standalone HTML fragment.
func HTML(run *stats.Run, names []string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(run, names)), p, renderer)
}

// correlationSummary aggregates the finite correlation estimates of the run.
func correlationSummary(run *stats.Run) string {
	var rs []float64
	significant := 0
	for _, res := range run.Results {
		if !math.IsNaN(res.R) && !math.IsInf(res.R, 0) {
			rs = append(rs, res.R)
		}
		if res.Significant {
			significant++
		}
	}
	if len(rs) == 0 {
		return ""
	}

	mean, err := mstats.Mean(rs)
	if err != nil {
		return ""
	}
	min, _ := mstats.Min(rs)
	max, _ := mstats.Max(rs)
	return fmt.Sprintf("**Summary**: mean r = %.4f, range [%.4f, %.4f], %d of %d pairs significant.\n",
		mean, min, max, significant, len(run.Results))
}

func name(names []string, j int) string {
	if j < len(names) && names[j] != "" {
		return names[j]
	}
	return fmt.Sprintf("var_%d", j)
}
