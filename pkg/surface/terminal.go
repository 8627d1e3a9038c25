package surface

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
)

// TerminalRenderer renders results as colored terminal output.
type TerminalRenderer struct {
	ShowMetrics bool
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func ratingColor(rating cvss.Rating) string {
	if noColor() {
		return ""
	}
	switch rating {
	case cvss.RatingNone, cvss.RatingLow:
		return colorGreen
	case cvss.RatingMedium:
		return colorYellow
	case cvss.RatingHigh, cvss.RatingCritical:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) RenderResult(w io.Writer, result *cvss.ScoreResult) error {
	rc := ratingColor(result.Rating)

	fmt.Fprintf(w, "%s  %s\n",
		bold(fmt.Sprintf("%.1f %s", result.Score, colored(string(result.Rating), rc))),
		dim(result.Vector))

	if result.Version.IsV3() {
		fmt.Fprintf(w, "  impact %.1f / exploitability %.1f\n", result.Impact, result.Exploitability)
		fmt.Fprintf(w, "  temporal %.1f / environmental %.1f\n", result.TemporalScore, result.EnvironmentalScore)
	} else {
		fmt.Fprintf(w, "  macro vector %s\n", result.MacroVector)
	}

	if r.ShowMetrics {
		fmt.Fprintln(w)
		renderMetricTable(w, result.Metrics)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *TerminalRenderer) RenderReport(w io.Writer, report *feed.Report) error {
	source := report.Source
	if source == "" {
		source = "feed"
	}
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("%s: %d advisories, %d scored, %d failed", source, report.Total, report.Scored, report.Failed)))

	if report.Scored > 0 {
		fmt.Fprint(w, "Severity:")
		for _, rating := range []cvss.Rating{
			cvss.RatingCritical, cvss.RatingHigh, cvss.RatingMedium, cvss.RatingLow, cvss.RatingNone,
		} {
			n := report.BySeverity[rating]
			if n == 0 {
				continue
			}
			fmt.Fprintf(w, " %s %d", colored(string(rating), ratingColor(rating)), n)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w)
	}

	for _, row := range report.Rows {
		if row.Result != nil {
			fmt.Fprintf(w, "  %s %s %s\n",
				colored(fmt.Sprintf("%4.1f", row.Result.Score), ratingColor(row.Result.Rating)),
				bold(row.Record.ID),
				dim(row.Result.Vector))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", colored(" err", colorRed), bold(row.Record.ID), dim(row.Error))
	}
	fmt.Fprintln(w)
	return nil
}

// renderMetricTable prints the resolved metrics in a stable order, one
// per line, dimming values that were not defined in the input.
func renderMetricTable(w io.Writer, metrics cvss.ResolvedMetrics) {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := metrics[key]
		line := fmt.Sprintf("  %-4s %s", key, value)
		if value == "X" {
			line = dim(line)
		}
		fmt.Fprintln(w, line)
	}
}
