package surface

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sevscope/sevscope/pkg/cvss"
	"github.com/sevscope/sevscope/pkg/feed"
)

// MarkdownRenderer produces Markdown suitable for pull-request comments
// and paste-ready triage notes.
type MarkdownRenderer struct {
	ShowMetrics bool
}

func (r *MarkdownRenderer) RenderResult(w io.Writer, result *cvss.ScoreResult) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s %.1f `%s`\n\n", severityIcon(result.Rating), result.Score, result.Vector))
	sb.WriteString(fmt.Sprintf("**%s** (CVSS %s)\n\n", result.Rating, result.Version))

	if result.Version.IsV3() {
		sb.WriteString("| Score | Value |\n|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Base | %.1f |\n", result.Score))
		sb.WriteString(fmt.Sprintf("| Temporal | %.1f |\n", result.TemporalScore))
		sb.WriteString(fmt.Sprintf("| Environmental | %.1f |\n", result.EnvironmentalScore))
		sb.WriteString(fmt.Sprintf("| Impact | %.1f |\n", result.Impact))
		sb.WriteString(fmt.Sprintf("| Exploitability | %.1f |\n", result.Exploitability))
		sb.WriteString("\n")
	} else {
		sb.WriteString(fmt.Sprintf("MacroVector: `%s`\n\n", result.MacroVector))
	}

	if r.ShowMetrics {
		sb.WriteString("### Resolved metrics\n\n")
		sb.WriteString("| Metric | Value |\n|--------|-------|\n")
		keys := make([]string, 0, len(result.Metrics))
		for key := range result.Metrics {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", key, result.Metrics[key]))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *MarkdownRenderer) RenderReport(w io.Writer, report *feed.Report) error {
	var sb strings.Builder

	source := report.Source
	if source == "" {
		source = "feed"
	}
	sb.WriteString(fmt.Sprintf("## Advisory report: %s\n\n", source))
	sb.WriteString(fmt.Sprintf("%d advisories, %d scored, %d failed.\n\n", report.Total, report.Scored, report.Failed))

	if report.Scored > 0 {
		sb.WriteString("| Severity | Count |\n|----------|-------|\n")
		for _, rating := range []cvss.Rating{
			cvss.RatingCritical, cvss.RatingHigh, cvss.RatingMedium, cvss.RatingLow, cvss.RatingNone,
		} {
			if n := report.BySeverity[rating]; n > 0 {
				sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", severityIcon(rating), rating, n))
			}
		}
		sb.WriteString("\n")

		sb.WriteString("| Advisory | Score | Rating | Vector |\n|----------|-------|--------|--------|\n")
		for _, row := range report.Rows {
			if row.Result == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %s | `%s` |\n",
				row.Record.ID, row.Result.Score, row.Result.Rating, row.Result.Vector))
		}
		sb.WriteString("\n")
	}

	if report.Failed > 0 {
		sb.WriteString("### Failed records\n\n")
		for _, row := range report.Rows {
			if row.Error == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", row.Record.ID, row.Error))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func severityIcon(rating cvss.Rating) string {
	switch rating {
	case cvss.RatingCritical, cvss.RatingHigh:
		return ":red_circle:"
	case cvss.RatingMedium:
		return ":orange_circle:"
	case cvss.RatingLow:
		return ":yellow_circle:"
	default:
		return ":green_circle:"
	}
}
