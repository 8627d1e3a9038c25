package vector

import (
	"fmt"
	"strings"
)

const prefix = "CVSS:"

// Parse tokenizes and validates a CVSS vector string in one pass. It is
// the only validator in the codebase: every scoring entry point goes
// through it, so the catalog, ordering, and mandatory-presence rules
// cannot diverge between callers.
//
// The returned error is always one of the typed errors in this package;
// no partial Vector is ever returned alongside an error.
func Parse(s string) (*Vector, error) {
	if s == "" {
		return nil, &MalformedVectorError{Reason: "empty string"}
	}
	if !strings.HasPrefix(s, prefix) {
		return nil, &MalformedVectorError{Reason: `missing "CVSS:" prefix`}
	}

	head, tail, hasMetrics := strings.Cut(s[len(prefix):], "/")
	version := Version(head)
	switch version {
	case V30, V31, V40:
	default:
		return nil, &UnsupportedVersionError{Version: head}
	}

	cat := catalogFor(version)
	v := &Vector{
		Version: version,
		index:   make(map[string]string),
	}

	if hasMetrics {
		lastPos := -1
		for _, seg := range strings.Split(tail, "/") {
			if seg == "" {
				return nil, &MalformedVectorError{Reason: "empty segment"}
			}
			key, value, ok := strings.Cut(seg, ":")
			if !ok || key == "" || value == "" {
				return nil, &MalformedVectorError{Reason: fmt.Sprintf("segment %q is not KEY:VALUE", seg)}
			}

			def, pos, known := cat.lookup(key)
			if !known {
				return nil, &UnknownMetricError{Version: version, Key: key}
			}
			if _, dup := v.index[key]; dup {
				return nil, &DuplicateMetricError{Key: key}
			}
			if !def.allows(value) {
				return nil, &InvalidMetricValueError{Key: key, Value: value}
			}
			// v4.0 requires recognized keys in catalog order; v3.x
			// accepts any order among known keys.
			if version == V40 {
				if pos < lastPos {
					return nil, &OutOfSequenceMetricError{Key: key}
				}
				lastPos = pos
			}

			v.Metrics = append(v.Metrics, Metric{Key: key, Value: value})
			v.index[key] = value
		}
	}

	for _, def := range cat.defs {
		if !def.mandatory {
			continue
		}
		if _, ok := v.index[def.key]; !ok {
			return nil, &MissingMandatoryMetricError{Version: version, Key: def.key}
		}
	}

	return v, nil
}
