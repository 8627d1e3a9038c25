package cvss

import "github.com/sevscope/sevscope/pkg/vector"

// v3Metrics holds one CVSS v3.x vector's metric values after
// resolution. The base group keeps the values as given (the base
// equation is defined over them); the m-prefixed fields carry the
// effective environmental values, with each modified metric falling
// back to its base counterpart when absent or X.
type v3Metrics struct {
	av, ac, pr, ui string
	scope          string
	c, i, a        string

	e, rl, rc  string
	cr, ir, ar string

	mav, mac, mpr, mui string
	mscope             string
	mc, mi, ma         string
}

// v4Metrics holds one CVSS 4.0 vector's effective metric values: the
// modified override already applied to the eleven base metrics, and the
// worst-case defaults applied to E (X behaves as A) and CR/IR/AR
// (X behaves as H).
type v4Metrics struct {
	av, ac, at, pr, ui string
	vc, vi, va         string
	sc, si, sa         string
	e                  string
	cr, ir, ar         string
}

// override returns the modified value when it is defined, otherwise the
// base value.
func override(modified, base string) string {
	if modified == "" || modified == "X" {
		return base
	}
	return modified
}

// resolveV3 is total over validated v3.x vectors: every catalog key
// maps to exactly one effective value, absent optional keys to X.
func resolveV3(v *vector.Vector) v3Metrics {
	get := func(key string) string {
		val, ok := v.Get(key)
		if !ok {
			return "X"
		}
		return val
	}

	m := v3Metrics{
		av: get("AV"), ac: get("AC"), pr: get("PR"), ui: get("UI"),
		scope: get("S"),
		c:     get("C"), i: get("I"), a: get("A"),
		e: get("E"), rl: get("RL"), rc: get("RC"),
		cr: get("CR"), ir: get("IR"), ar: get("AR"),
	}
	m.mav = override(get("MAV"), m.av)
	m.mac = override(get("MAC"), m.ac)
	m.mpr = override(get("MPR"), m.pr)
	m.mui = override(get("MUI"), m.ui)
	m.mscope = override(get("MS"), m.scope)
	m.mc = override(get("MC"), m.c)
	m.mi = override(get("MI"), m.i)
	m.ma = override(get("MA"), m.a)
	return m
}

// resolveV4 is total over validated v4.0 vectors.
func resolveV4(v *vector.Vector) v4Metrics {
	get := func(key string) string {
		val, ok := v.Get(key)
		if !ok {
			return "X"
		}
		return val
	}

	m := v4Metrics{
		av: override(get("MAV"), get("AV")),
		ac: override(get("MAC"), get("AC")),
		at: override(get("MAT"), get("AT")),
		pr: override(get("MPR"), get("PR")),
		ui: override(get("MUI"), get("UI")),
		vc: override(get("MVC"), get("VC")),
		vi: override(get("MVI"), get("VI")),
		va: override(get("MVA"), get("VA")),
		sc: override(get("MSC"), get("SC")),
		si: override(get("MSI"), get("SI")),
		sa: override(get("MSA"), get("SA")),
	}
	// Worst-case defaulting: an unstated threat or requirement scores
	// as its most severe value, per the v4.0 specification.
	if m.e = get("E"); m.e == "X" {
		m.e = "A"
	}
	if m.cr = get("CR"); m.cr == "X" {
		m.cr = "H"
	}
	if m.ir = get("IR"); m.ir == "X" {
		m.ir = "H"
	}
	if m.ar = get("AR"); m.ar == "X" {
		m.ar = "H"
	}
	return m
}

// resolvedMap renders the effective metric values of a validated vector
// for display: every catalog key appears exactly once.
func resolvedMap(v *vector.Vector) ResolvedMetrics {
	if v.Version == vector.V40 {
		m := resolveV4(v)
		get := func(key string) string {
			val, ok := v.Get(key)
			if !ok {
				return "X"
			}
			return val
		}
		return ResolvedMetrics{
			"AV": get("AV"), "AC": get("AC"), "AT": get("AT"), "PR": get("PR"), "UI": get("UI"),
			"VC": get("VC"), "VI": get("VI"), "VA": get("VA"),
			"SC": get("SC"), "SI": get("SI"), "SA": get("SA"),
			"E":  m.e,
			"CR": m.cr, "IR": m.ir, "AR": m.ar,
			"MAV": m.av, "MAC": m.ac, "MAT": m.at, "MPR": m.pr, "MUI": m.ui,
			"MVC": m.vc, "MVI": m.vi, "MVA": m.va,
			"MSC": m.sc, "MSI": m.si, "MSA": m.sa,
		}
	}

	m := resolveV3(v)
	return ResolvedMetrics{
		"AV": m.av, "AC": m.ac, "PR": m.pr, "UI": m.ui,
		"S": m.scope,
		"C": m.c, "I": m.i, "A": m.a,
		"E": m.e, "RL": m.rl, "RC": m.rc,
		"CR": m.cr, "IR": m.ir, "AR": m.ar,
		"MAV": m.mav, "MAC": m.mac, "MPR": m.mpr, "MUI": m.mui,
		"MS": m.mscope,
		"MC": m.mc, "MI": m.mi, "MA": m.ma,
	}
}
