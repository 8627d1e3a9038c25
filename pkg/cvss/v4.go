package cvss

import (
	"math"
	"strings"
)

// macroVector classifies a resolved vector into the six equivalence
// class digits. Each rule is defined over effective values; Safety can
// only arrive through the modified subsequent-system metrics, so the
// EQ4 check against "S" covers exactly the MSI/MSA cases.
func macroVector(m v4Metrics) string {
	var eq1, eq2, eq3, eq4, eq5, eq6 int

	switch {
	case m.av == "N" && m.pr == "N" && m.ui == "N":
		eq1 = 0
	case (m.av == "N" || m.pr == "N" || m.ui == "N") && m.av != "P":
		eq1 = 1
	default:
		eq1 = 2
	}

	if m.ac == "L" && m.at == "N" {
		eq2 = 0
	} else {
		eq2 = 1
	}

	switch {
	case m.vc == "H" && m.vi == "H":
		eq3 = 0
	case m.vc == "H" || m.vi == "H" || m.va == "H":
		eq3 = 1
	default:
		eq3 = 2
	}

	switch {
	case m.si == "S" || m.sa == "S":
		eq4 = 0
	case m.sc == "H" || m.si == "H" || m.sa == "H":
		eq4 = 1
	default:
		eq4 = 2
	}

	switch m.e {
	case "A":
		eq5 = 0
	case "P":
		eq5 = 1
	default: // U
		eq5 = 2
	}

	if (m.cr == "H" && m.vc == "H") || (m.ir == "H" && m.vi == "H") || (m.ar == "H" && m.va == "H") {
		eq6 = 0
	} else {
		eq6 = 1
	}

	return macroKey(eq1, eq2, eq3, eq4, eq5, eq6)
}

func macroKey(eq1, eq2, eq3, eq4, eq5, eq6 int) string {
	return string([]byte{
		'0' + byte(eq1), '0' + byte(eq2), '0' + byte(eq3),
		'0' + byte(eq4), '0' + byte(eq5), '0' + byte(eq6),
	})
}

// metricDistances holds the per-metric ordinal gaps between a vector
// and the maximal vector of its class.
type metricDistances struct {
	av, pr, ui, ac, at     float64
	vc, vi, va, sc, si, sa float64
	cr, ir, ar             float64
}

// distanceFrom measures m against one composed maximal vector. The
// candidate only counts when m is at or below it on every axis; a
// single negative gap disqualifies it.
func distanceFrom(m v4Metrics, maxFragment string) (metricDistances, bool) {
	max := make(map[string]string, 14)
	for _, seg := range strings.Split(strings.TrimSuffix(maxFragment, "/"), "/") {
		k, v, _ := strings.Cut(seg, ":")
		max[k] = v
	}

	d := metricDistances{
		av: levelAV[m.av] - levelAV[max["AV"]],
		pr: levelPR[m.pr] - levelPR[max["PR"]],
		ui: levelUI[m.ui] - levelUI[max["UI"]],
		ac: levelAC[m.ac] - levelAC[max["AC"]],
		at: levelAT[m.at] - levelAT[max["AT"]],
		vc: levelVC[m.vc] - levelVC[max["VC"]],
		vi: levelVC[m.vi] - levelVC[max["VI"]],
		va: levelVC[m.va] - levelVC[max["VA"]],
		sc: levelSC[m.sc] - levelSC[max["SC"]],
		si: levelSI[m.si] - levelSI[max["SI"]],
		sa: levelSI[m.sa] - levelSI[max["SA"]],
		cr: levelReq[m.cr] - levelReq[max["CR"]],
		ir: levelReq[m.ir] - levelReq[max["IR"]],
		ar: levelReq[m.ar] - levelReq[max["AR"]],
	}
	for _, gap := range [...]float64{
		d.av, d.pr, d.ui, d.ac, d.at,
		d.vc, d.vi, d.va, d.sc, d.si, d.sa,
		d.cr, d.ir, d.ar,
	} {
		if gap < 0 {
			return metricDistances{}, false
		}
	}
	return d, true
}

// maxVectorCandidates composes the maximal vectors of a MacroVector
// class as the cross product of its per-class maxima, preserving table
// order. EQ5 contributes no metric axis and is omitted.
func maxVectorCandidates(eq1, eq2, eq3, eq4, eq6 int) []string {
	var out []string
	for _, a := range maxComposedEQ1[eq1] {
		for _, b := range maxComposedEQ2[eq2] {
			for _, c := range maxComposedEQ3[eq3][eq6] {
				for _, d := range maxComposedEQ4[eq4] {
					out = append(out, a+b+c+d)
				}
			}
		}
	}
	return out
}

// scoreV4 runs the full v4.0 pipeline: classification, lookup of the
// class score, then interpolation toward the next lower class in
// proportion to how deep inside its own class the vector sits.
func scoreV4(m v4Metrics) (float64, string) {
	macro := macroVector(m)

	// No impact anywhere scores zero outright.
	if m.vc == "N" && m.vi == "N" && m.va == "N" &&
		m.sc == "N" && m.si == "N" && m.sa == "N" {
		return 0, macro
	}

	value := macroScores[macro]

	eq1 := int(macro[0] - '0')
	eq2 := int(macro[1] - '0')
	eq3 := int(macro[2] - '0')
	eq4 := int(macro[3] - '0')
	eq5 := int(macro[4] - '0')
	eq6 := int(macro[5] - '0')

	// Scores of the next lower MacroVector per class. A neighbor absent
	// from the table is excluded from the mean, never treated as zero.
	lower1, ok1 := macroScores[macroKey(eq1+1, eq2, eq3, eq4, eq5, eq6)]
	lower2, ok2 := macroScores[macroKey(eq1, eq2+1, eq3, eq4, eq5, eq6)]
	lower4, ok4 := macroScores[macroKey(eq1, eq2, eq3, eq4+1, eq5, eq6)]
	_, ok5 := macroScores[macroKey(eq1, eq2, eq3, eq4, eq5+1, eq6)]

	// EQ3 and EQ6 move jointly. From (0,0) both increments are valid
	// classes and the higher-scoring one is the neighbor; from (1,0)
	// only EQ6 can move; everywhere else only EQ3 can.
	var lower36 float64
	var ok36 bool
	switch {
	case eq3 == 0 && eq6 == 0:
		left, okL := macroScores[macroKey(eq1, eq2, eq3, eq4, eq5, eq6+1)]
		right, okR := macroScores[macroKey(eq1, eq2, eq3+1, eq4, eq5, eq6)]
		switch {
		case okL && okR:
			lower36, ok36 = math.Max(left, right), true
		case okL:
			lower36, ok36 = left, true
		case okR:
			lower36, ok36 = right, true
		}
	case eq3 == 1 && eq6 == 0:
		lower36, ok36 = macroScores[macroKey(eq1, eq2, eq3, eq4, eq5, eq6+1)]
	default:
		lower36, ok36 = macroScores[macroKey(eq1, eq2, eq3+1, eq4, eq5, eq6)]
	}

	// First dominating maximal vector in table order wins; ties are
	// broken by enumeration order, not distance magnitude.
	var d metricDistances
	for _, cand := range maxVectorCandidates(eq1, eq2, eq3, eq4, eq6) {
		if dd, ok := distanceFrom(m, cand); ok {
			d = dd
			break
		}
	}

	const step = 0.1

	var sum float64
	available := 0
	if ok1 {
		dist := d.av + d.pr + d.ui
		sum += (value - lower1) * (dist / (maxSeverityEQ1[eq1] * step))
		available++
	}
	if ok2 {
		dist := d.ac + d.at
		sum += (value - lower2) * (dist / (maxSeverityEQ2[eq2] * step))
		available++
	}
	if ok36 {
		dist := d.vc + d.vi + d.va + d.cr + d.ir + d.ar
		sum += (value - lower36) * (dist / (maxSeverityEQ3EQ6[eq3][eq6] * step))
		available++
	}
	if ok4 {
		dist := d.sc + d.si + d.sa
		sum += (value - lower4) * (dist / (maxSeverityEQ4[eq4] * step))
		available++
	}
	if ok5 {
		// EQ5 has no severity depth inside a class; its distance is
		// fixed at zero but an available neighbor still joins the mean.
		available++
	}

	score := value
	if available > 0 {
		score -= sum / float64(available)
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return RoundV4(score), macro
}
