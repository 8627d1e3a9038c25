// Package cvss implements the severity score calculation engine for
// CVSS 3.0, 3.1 and 4.0 vectors: metric resolution with environmental
// overrides, the closed-form v3.x equations, and the v4.0 MacroVector
// classification with severity-distance interpolation.
//
// Everything in this package is synchronous, allocation-light and free
// of side effects. All lookup tables are package-level constants built
// once and never mutated, so any number of goroutines may score
// concurrently without coordination.
package cvss

import (
	"fmt"
	"strings"

	"github.com/sevscope/sevscope/pkg/vector"
)

// Rating is the qualitative severity label derived from a numeric score.
type Rating string

const (
	RatingNone     Rating = "None"
	RatingLow      Rating = "Low"
	RatingMedium   Rating = "Medium"
	RatingHigh     Rating = "High"
	RatingCritical Rating = "Critical"
)

// Level orders ratings by severity: None is 0, Critical is 4. Unknown
// labels order below None.
func (r Rating) Level() int {
	switch r {
	case RatingNone:
		return 0
	case RatingLow:
		return 1
	case RatingMedium:
		return 2
	case RatingHigh:
		return 3
	case RatingCritical:
		return 4
	default:
		return -1
	}
}

// QualitativeRating maps a score in [0.0, 10.0] to its severity label.
func QualitativeRating(score float64) Rating {
	switch {
	case score == 0:
		return RatingNone
	case score < 4.0:
		return RatingLow
	case score < 7.0:
		return RatingMedium
	case score < 9.0:
		return RatingHigh
	default:
		return RatingCritical
	}
}

// ParseRating parses a severity label case-insensitively.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(s) {
	case "none":
		return RatingNone, nil
	case "low":
		return RatingLow, nil
	case "medium":
		return RatingMedium, nil
	case "high":
		return RatingHigh, nil
	case "critical":
		return RatingCritical, nil
	}
	return "", fmt.Errorf("unknown rating %q", s)
}

// ResolvedMetrics maps every metric key in the version's catalog to its
// effective value after defaulting and modified-metric overrides.
type ResolvedMetrics map[string]string

// ScoreResult is the unified output of one scoring call. Results are
// constructed fresh per call and never mutated after return.
type ScoreResult struct {
	Vector  string         `json:"vector"`
	Version vector.Version `json:"version"`
	Score   float64        `json:"score"`
	Rating  Rating         `json:"rating"`

	// v3.x only: raw sub-scores and the optional-group scores. Zero
	// and omitted for v4.0, which defines no such decomposition.
	Impact             float64 `json:"impact,omitempty"`
	Exploitability     float64 `json:"exploitability,omitempty"`
	TemporalScore      float64 `json:"temporal_score,omitempty"`
	EnvironmentalScore float64 `json:"environmental_score,omitempty"`

	// v4.0 only: the six-digit equivalence-class string the score was
	// looked up under.
	MacroVector string `json:"macro_vector,omitempty"`

	Metrics ResolvedMetrics `json:"metrics"`
}
