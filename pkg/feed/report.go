package feed

import (
	"time"

	"github.com/sevscope/sevscope/pkg/cvss"
)

// RecordScore pairs one advisory record with its scoring outcome.
// Exactly one of Result and Error is set.
type RecordScore struct {
	Record Record            `json:"record"`
	Result *cvss.ScoreResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Report is the outcome of batch-scoring one feed document.
type Report struct {
	Source      string              `json:"source,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
	Total       int                 `json:"total"`
	Scored      int                 `json:"scored"`
	Failed      int                 `json:"failed"`
	BySeverity  map[cvss.Rating]int `json:"by_severity"`
	Rows        []RecordScore       `json:"rows"`
}

// BuildReport scores every record in the document. A record with an
// invalid vector never aborts the batch: the row carries the validation
// error and counts toward Failed.
func BuildReport(doc *Document) *Report {
	report := &Report{
		Source:      doc.Source,
		GeneratedAt: time.Now().UTC(),
		Total:       len(doc.Records),
		BySeverity:  make(map[cvss.Rating]int),
		Rows:        make([]RecordScore, 0, len(doc.Records)),
	}

	for _, rec := range doc.Records {
		row := RecordScore{Record: rec}
		result, err := cvss.Score(rec.Vector)
		if err != nil {
			row.Error = err.Error()
			report.Failed++
		} else {
			row.Result = result
			report.Scored++
			report.BySeverity[result.Rating]++
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

// MaxRating returns the most severe rating among successfully scored
// rows, or RatingNone for a report with no scored rows.
func (r *Report) MaxRating() cvss.Rating {
	max := cvss.RatingNone
	for _, row := range r.Rows {
		if row.Result != nil && row.Result.Rating.Level() > max.Level() {
			max = row.Result.Rating
		}
	}
	return max
}
