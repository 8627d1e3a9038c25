package cvss

import "math"

// RoundUpV3 implements the v3.1 specification's Roundup: the smallest
// one-decimal value greater than or equal to x, computed over a
// 100000-scaled integer so that inputs which are exact at one decimal
// but carry binary representation error (4.0 arriving as
// 4.000000000000001) resolve to 4.0 rather than 4.1.
//
// Published score vectors depend on this exact procedure; a naive
// ceil(x*10)/10 is not equivalent.
func RoundUpV3(x float64) float64 {
	i := int64(math.Round(x * 100000))
	if i%10000 == 0 {
		return float64(i) / 100000
	}
	return (math.Floor(float64(i)/10000) + 1) / 10
}

// RoundV4 rounds half away from zero to one decimal, as the v4.0
// specification prescribes for the final interpolated score. Not
// interchangeable with RoundUpV3: the two versions define rounding
// independently.
func RoundV4(x float64) float64 {
	return math.Round(x*10) / 10
}
