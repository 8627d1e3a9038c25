package cvss

// Numeric weights from the v3.1 specification, table 16. v3.0 uses the
// same weights; the two versions differ only in the ModifiedImpact
// equation. Inputs are validated before they reach these functions, so
// each switch is total over the values that can occur.

func weightAV(v string) float64 {
	switch v {
	case "N":
		return 0.85
	case "A":
		return 0.62
	case "L":
		return 0.55
	default: // P
		return 0.2
	}
}

func weightAC(v string) float64 {
	if v == "L" {
		return 0.77
	}
	return 0.44 // H
}

// weightPR depends jointly on the privilege level and the (possibly
// modified) Scope: crossing a scope boundary makes held privileges
// count for more.
func weightPR(v, scope string) float64 {
	changed := scope == "C"
	switch v {
	case "N":
		return 0.85
	case "L":
		if changed {
			return 0.68
		}
		return 0.62
	default: // H
		if changed {
			return 0.5
		}
		return 0.27
	}
}

func weightUI(v string) float64 {
	if v == "N" {
		return 0.85
	}
	return 0.62 // R
}

func weightImpact(v string) float64 {
	switch v {
	case "H":
		return 0.56
	case "L":
		return 0.22
	default: // N
		return 0
	}
}

func weightE(v string) float64 {
	switch v {
	case "F":
		return 0.97
	case "P":
		return 0.94
	case "U":
		return 0.91
	default: // X, H
		return 1
	}
}

func weightRL(v string) float64 {
	switch v {
	case "W":
		return 0.97
	case "T":
		return 0.96
	case "O":
		return 0.95
	default: // X, U
		return 1
	}
}

func weightRC(v string) float64 {
	switch v {
	case "R":
		return 0.96
	case "U":
		return 0.92
	default: // X, C
		return 1
	}
}

func weightRequirement(v string) float64 {
	switch v {
	case "H":
		return 1.5
	case "L":
		return 0.5
	default: // X, M
		return 1
	}
}
