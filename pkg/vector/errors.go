package vector

import "fmt"

// ErrorKind tags every validation error with its failure class so
// callers can switch exhaustively without string matching.
type ErrorKind int

const (
	KindUnsupportedVersion ErrorKind = iota
	KindMalformedVector
	KindMissingMandatoryMetric
	KindUnknownMetric
	KindInvalidMetricValue
	KindDuplicateMetric
	KindOutOfSequenceMetric
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedVersion:
		return "unsupported_version"
	case KindMalformedVector:
		return "malformed_vector"
	case KindMissingMandatoryMetric:
		return "missing_mandatory_metric"
	case KindUnknownMetric:
		return "unknown_metric"
	case KindInvalidMetricValue:
		return "invalid_metric_value"
	case KindDuplicateMetric:
		return "duplicate_metric"
	case KindOutOfSequenceMetric:
		return "out_of_sequence_metric"
	}
	return "unknown"
}

// Error is implemented by every validation error in this package.
type Error interface {
	error
	Kind() ErrorKind
}

// KindOf returns the ErrorKind of err and true if err (or anything it
// wraps) is a vector validation error.
func KindOf(err error) (ErrorKind, bool) {
	for err != nil {
		if ve, ok := err.(Error); ok {
			return ve.Kind(), true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return 0, false
}

// UnsupportedVersionError reports a version tag outside {3.0, 3.1, 4.0},
// or an operation that does not apply to the vector's version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported CVSS version %q", e.Version)
}

func (e *UnsupportedVersionError) Kind() ErrorKind { return KindUnsupportedVersion }

// MalformedVectorError reports a string that does not match the
// CVSS:<version>/<KEY>:<VALUE>... shape at all: missing prefix, empty
// segments, segments without a colon.
type MalformedVectorError struct {
	Reason string
}

func (e *MalformedVectorError) Error() string {
	return "malformed vector: " + e.Reason
}

func (e *MalformedVectorError) Kind() ErrorKind { return KindMalformedVector }

// MissingMandatoryMetricError reports an absent base metric.
type MissingMandatoryMetricError struct {
	Version Version
	Key     string
}

func (e *MissingMandatoryMetricError) Error() string {
	return fmt.Sprintf("missing mandatory metric %s for CVSS %s", e.Key, e.Version)
}

func (e *MissingMandatoryMetricError) Kind() ErrorKind { return KindMissingMandatoryMetric }

// UnknownMetricError reports a key outside the version's catalog.
type UnknownMetricError struct {
	Version Version
	Key     string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q for CVSS %s", e.Key, e.Version)
}

func (e *UnknownMetricError) Kind() ErrorKind { return KindUnknownMetric }

// InvalidMetricValueError reports a value outside the metric's allowed set.
type InvalidMetricValueError struct {
	Key   string
	Value string
}

func (e *InvalidMetricValueError) Error() string {
	return fmt.Sprintf("invalid value %q for metric %s", e.Value, e.Key)
}

func (e *InvalidMetricValueError) Kind() ErrorKind { return KindInvalidMetricValue }

// DuplicateMetricError reports a key that appears more than once.
type DuplicateMetricError struct {
	Key string
}

func (e *DuplicateMetricError) Error() string {
	return fmt.Sprintf("duplicate metric %s", e.Key)
}

func (e *DuplicateMetricError) Kind() ErrorKind { return KindDuplicateMetric }

// OutOfSequenceMetricError reports a v4.0 key that appears after a key
// it must precede in the canonical catalog order.
type OutOfSequenceMetricError struct {
	Key string
}

func (e *OutOfSequenceMetricError) Error() string {
	return fmt.Sprintf("metric %s out of canonical order", e.Key)
}

func (e *OutOfSequenceMetricError) Kind() ErrorKind { return KindOutOfSequenceMetric }
