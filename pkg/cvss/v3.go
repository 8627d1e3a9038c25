package cvss

import (
	"math"

	"github.com/sevscope/sevscope/pkg/vector"
)

// baseV3 computes the raw Impact and Exploitability sub-scores and the
// rounded Base score from the unmodified base metrics.
func baseV3(m v3Metrics) (impact, exploitability, base float64) {
	iss := 1 - (1-weightImpact(m.c))*(1-weightImpact(m.i))*(1-weightImpact(m.a))

	changed := m.scope == "C"
	if changed {
		impact = 7.52*(iss-0.029) - 3.25*math.Pow(iss-0.02, 15)
	} else {
		impact = 6.42 * iss
	}

	exploitability = 8.22 * weightAV(m.av) * weightAC(m.ac) * weightPR(m.pr, m.scope) * weightUI(m.ui)

	if impact <= 0 {
		return impact, exploitability, 0
	}
	sum := impact + exploitability
	if changed {
		sum *= 1.08
	}
	return impact, exploitability, RoundUpV3(math.Min(sum, 10))
}

// temporalV3 degrades the base score by the exploit-maturity factors.
// With all three metrics undefined it returns the base score unchanged.
func temporalV3(base float64, m v3Metrics) float64 {
	return RoundUpV3(base * weightE(m.e) * weightRL(m.rl) * weightRC(m.rc))
}

// environmentalV3 re-derives impact and exploitability from the
// effective (modified) metrics, then applies the temporal factors. The
// inner rounding before the temporal multiplication is part of the
// published equation and must not be elided.
func environmentalV3(ver vector.Version, m v3Metrics) float64 {
	miss := math.Min(
		1-(1-weightRequirement(m.cr)*weightImpact(m.mc))*
			(1-weightRequirement(m.ir)*weightImpact(m.mi))*
			(1-weightRequirement(m.ar)*weightImpact(m.ma)),
		0.915)

	changed := m.mscope == "C"
	var modImpact float64
	if changed {
		// The one numeric divergence between 3.0 and 3.1: 3.1 rescales
		// MISS by 0.9731 and lowers the exponent to 13.
		if ver == vector.V31 {
			modImpact = 7.52*(miss-0.029) - 3.25*math.Pow(miss*0.9731-0.02, 13)
		} else {
			modImpact = 7.52*(miss-0.029) - 3.25*math.Pow(miss-0.02, 15)
		}
	} else {
		modImpact = 6.42 * miss
	}

	if modImpact <= 0 {
		return 0
	}

	modExploitability := 8.22 * weightAV(m.mav) * weightAC(m.mac) * weightPR(m.mpr, m.mscope) * weightUI(m.mui)

	sum := modImpact + modExploitability
	if changed {
		sum *= 1.08
	}
	inner := RoundUpV3(math.Min(sum, 10))
	return RoundUpV3(inner * weightE(m.e) * weightRL(m.rl) * weightRC(m.rc))
}
