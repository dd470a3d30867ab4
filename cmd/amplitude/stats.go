package amplitude

import (
	"math"
	"slices"
)

// Percentile returns the p-th percentile (0..100) of xs with linear
// interpolation between closest ranks. NaN for empty input.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	rank := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	lo = max(0, min(lo, len(s)-1))
	hi = max(0, min(hi, len(s)-1))
	return s[lo] + (s[hi]-s[lo])*(rank-float64(lo))
}

// Quantiles are the summary points shown by the stats command.
var Quantiles = []float64{10, 25, 50, 75, 90}
