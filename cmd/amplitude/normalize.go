// Package amplitude maps raw peak amplitudes onto a contrast-stretched 0-100
// scale for colouring and sizing plot markers.
package amplitude

import (
	"math"
	"slices"
)

const (
	MinSize = 8.0
	MaxSize = 50.0

	// Format is the printf verb consumers use to show original amplitudes.
	Format = "%.1f"
)

// Result is the output of Normalize. Values, Sizes and Original are indexed
// like the input.
type Result struct {
	Values     []float64 // 0..100
	Original   []float64
	Sizes      []float64 // MinSize..MaxSize
	IsLogScale bool
	Min, Max   float64
}

// Size maps a normalized value onto the marker size range.
func Size(normalized float64) float64 {
	return MinSize + (MaxSize-MinSize)*(normalized/100)
}

// Normalize rescales amplitudes to [0,1], then stretches them piecewise
// linearly around their median so that each half of the data spans half of
// the 0..100 output. Equal inputs all map to 50.
//
// Non-finite inputs are clamped: NaN and -Inf to the smallest finite value,
// +Inf to the largest. With no finite input at all, everything maps to 50.
func Normalize(amplitudes []float64) Result {
	if len(amplitudes) == 0 {
		return Result{
			Values:     []float64{},
			Original:   []float64{},
			Sizes:      []float64{},
			IsLogScale: true,
			Min:        0,
			Max:        1,
		}
	}

	original := slices.Clone(amplitudes)
	lo, hi, ok := finiteRange(amplitudes)
	res := Result{
		Values:     make([]float64, len(amplitudes)),
		Original:   original,
		Sizes:      make([]float64, len(amplitudes)),
		IsLogScale: true,
		Min:        lo,
		Max:        hi,
	}

	if !ok || hi == lo {
		for i := range res.Values {
			res.Values[i] = 50
			res.Sizes[i] = Size(50)
		}
		return res
	}

	scaled := make([]float64, len(amplitudes))
	for i, a := range amplitudes {
		scaled[i] = (clamp(a, lo, hi) - lo) / (hi - lo)
	}

	q2 := 0.5
	if len(scaled) >= 4 {
		q2 = median(scaled)
	}
	// A median at either end would divide by zero in one half.
	if q2 <= 0 || q2 >= 1 {
		q2 = 0.5
	}

	for i, v := range scaled {
		var enhanced float64
		if v <= q2 {
			enhanced = (v / q2) * 0.5
		} else {
			enhanced = 0.5 + ((v-q2)/(1-q2))*0.5
		}
		res.Values[i] = enhanced * 100
		res.Sizes[i] = Size(res.Values[i])
	}
	return res
}

func finiteRange(xs []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = min(lo, x)
		hi = max(hi, x)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

func clamp(x, lo, hi float64) float64 {
	switch {
	case math.IsNaN(x), x < lo:
		return lo
	case x > hi:
		return hi
	}
	return x
}

// median is the upper-middle element for an even count.
func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	return s[len(s)/2]
}
