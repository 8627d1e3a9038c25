// Package vector defines the CVSS vector wire format: the parsed
// representation, the per-version metric catalogs, and the validation
// errors. These types are the shared vocabulary across all modules.
package vector

import "strings"

// Version identifies a supported CVSS specification version.
type Version string

const (
	V30 Version = "3.0"
	V31 Version = "3.1"
	V40 Version = "4.0"
)

// IsV3 reports whether the version uses the v3.x equation set.
func (v Version) IsV3() bool {
	return v == V30 || v == V31
}

func (v Version) String() string {
	return string(v)
}

// Metric is a single key/value pair as it appeared in the vector string.
type Metric struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Vector is a fully validated CVSS vector. Vectors are immutable once
// parsed: Metrics preserves input order, every key belongs to the
// version's catalog, every value is allowed for its key, no key repeats,
// and all mandatory keys are present. For v4.0 the keys additionally
// follow the canonical catalog order.
type Vector struct {
	Version Version  `json:"version"`
	Metrics []Metric `json:"metrics"`

	index map[string]string
}

// Get returns the raw value for a metric key and whether it was present
// in the vector string.
func (v *Vector) Get(key string) (string, bool) {
	val, ok := v.index[key]
	return val, ok
}

// String re-renders the vector in wire format.
func (v *Vector) String() string {
	var b strings.Builder
	b.WriteString("CVSS:")
	b.WriteString(string(v.Version))
	for _, m := range v.Metrics {
		b.WriteByte('/')
		b.WriteString(m.Key)
		b.WriteByte(':')
		b.WriteString(m.Value)
	}
	return b.String()
}
