package cvss

import "github.com/sevscope/sevscope/pkg/vector"

// BaseScore parses the vector, dispatches on its version tag and
// returns the base score. The error, when non-nil, is always one of the
// typed errors in pkg/vector.
func BaseScore(s string) (float64, error) {
	v, err := vector.Parse(s)
	if err != nil {
		return 0, err
	}
	if v.Version == vector.V40 {
		score, _ := scoreV4(resolveV4(v))
		return score, nil
	}
	_, _, base := baseV3(resolveV3(v))
	return base, nil
}

// TemporalScore computes the v3.x temporal score. Temporal scoring is
// defined for 3.0 and 3.1 only; a 4.0 vector is rejected.
func TemporalScore(s string) (float64, error) {
	v, err := vector.Parse(s)
	if err != nil {
		return 0, err
	}
	if !v.Version.IsV3() {
		return 0, &vector.UnsupportedVersionError{Version: v.Version.String()}
	}
	m := resolveV3(v)
	_, _, base := baseV3(m)
	return temporalV3(base, m), nil
}

// EnvironmentalScore computes the v3.x environmental score. Defined for
// 3.0 and 3.1 only; a 4.0 vector is rejected.
func EnvironmentalScore(s string) (float64, error) {
	v, err := vector.Parse(s)
	if err != nil {
		return 0, err
	}
	if !v.Version.IsV3() {
		return 0, &vector.UnsupportedVersionError{Version: v.Version.String()}
	}
	return environmentalV3(v.Version, resolveV3(v)), nil
}

// Validate parses the vector and returns the effective value of every
// metric in its version's catalog without computing a score.
func Validate(s string) (ResolvedMetrics, error) {
	v, err := vector.Parse(s)
	if err != nil {
		return nil, err
	}
	return resolvedMap(v), nil
}

// Score computes everything a consumer might want from one vector in a
// single call. For v3.x that is the base, temporal and environmental
// scores plus the raw impact and exploitability sub-scores; for v4.0
// the single score and the MacroVector it was classified under. Rating
// always reflects the base score.
func Score(s string) (*ScoreResult, error) {
	v, err := vector.Parse(s)
	if err != nil {
		return nil, err
	}

	result := &ScoreResult{
		Vector:  v.String(),
		Version: v.Version,
		Metrics: resolvedMap(v),
	}

	if v.Version == vector.V40 {
		score, macro := scoreV4(resolveV4(v))
		result.Score = score
		result.MacroVector = macro
		result.Rating = QualitativeRating(score)
		return result, nil
	}

	m := resolveV3(v)
	impact, exploitability, base := baseV3(m)
	result.Score = base
	result.Rating = QualitativeRating(base)
	if impact < 0 {
		impact = 0
	}
	result.Impact = impact
	result.Exploitability = exploitability
	result.TemporalScore = temporalV3(base, m)
	result.EnvironmentalScore = environmentalV3(v.Version, m)
	return result, nil
}
