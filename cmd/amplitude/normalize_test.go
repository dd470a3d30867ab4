package amplitude

import (
	"math"
	"math/rand"
	"testing"
)

func TestNormalize_Empty(t *testing.T) {
	res := Normalize(nil)
	if !res.IsLogScale || res.Min != 0 || res.Max != 1 {
		t.Errorf("empty input: got IsLogScale=%v range=(%v,%v), want true (0,1)", res.IsLogScale, res.Min, res.Max)
	}
	if len(res.Values) != 0 || len(res.Sizes) != 0 || len(res.Original) != 0 {
		t.Errorf("empty input produced non-empty arrays: %+v", res)
	}
}

func TestNormalize_AllEqual(t *testing.T) {
	res := Normalize([]float64{-12.5, -12.5, -12.5, -12.5, -12.5})
	for i := range res.Values {
		if res.Values[i] != 50 {
			t.Errorf("Values[%d] = %v, want 50", i, res.Values[i])
		}
		if res.Sizes[i] != 29 {
			t.Errorf("Sizes[%d] = %v, want 29", i, res.Sizes[i])
		}
	}
}

func TestNormalize_MinMaxMapToBounds(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
	}{
		{"two points", []float64{1, 2}},
		{"three points", []float64{3, 1, 2}},
		{"skewed", []float64{-80, -79, -78, -77, -76, -10}},
		{"median at max", []float64{0, 10, 10, 10, 10}},
		{"median at min", []float64{0, 0, 0, 0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.in)
			for i, a := range tt.in {
				if a == res.Min && res.Values[i] != 0 {
					t.Errorf("min input %v mapped to %v, want 0", a, res.Values[i])
				}
				if a == res.Max && res.Values[i] != 100 {
					t.Errorf("max input %v mapped to %v, want 100", a, res.Values[i])
				}
			}
		})
	}
}

func TestNormalize_MedianMapsToMidscale(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		// scaled median is 0.02, which must land at exactly 50
		{"odd count", []float64{0, 1, 2, 3, 100}, []float64{0, 25, 50, 50 + 50*0.01/0.98, 100}},
		// even count: the upper-middle value 2 is the median
		{"even count", []float64{0, 1, 2, 3}, []float64{0, 25, 50, 100}},
		{"even count unsorted", []float64{3, 0, 2, 1}, []float64{100, 0, 50, 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.in)
			for i, want := range tt.want {
				if math.Abs(res.Values[i]-want) > 1e-9 {
					t.Errorf("Values[%d] = %v, want %v", i, res.Values[i], want)
				}
			}
		})
	}
}

func TestNormalize_FewPointsAssumeHalf(t *testing.T) {
	res := Normalize([]float64{0, 1, 10})
	// fewer than 4 points: median assumed 0.5, so scaled 0.1 stays 0.1
	want := 10.0
	if math.Abs(res.Values[1]-want) > 1e-9 {
		t.Errorf("Values[1] = %v, want %v", res.Values[1], want)
	}
}

func TestNormalize_BoundsAndMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		n := 1 + r.Intn(200)
		in := make([]float64, n)
		for i := range in {
			in[i] = r.ExpFloat64()*20 - 90
		}
		res := Normalize(in)

		for i := range in {
			if res.Values[i] < 0 || res.Values[i] > 100 {
				t.Fatalf("value %v out of [0,100]", res.Values[i])
			}
			if res.Sizes[i] < MinSize || res.Sizes[i] > MaxSize {
				t.Fatalf("size %v out of [%v,%v]", res.Sizes[i], MinSize, MaxSize)
			}
			for j := range in {
				if in[i] > in[j] && res.Values[i] < res.Values[j] {
					t.Fatalf("not monotonic: %v -> %v but %v -> %v", in[i], res.Values[i], in[j], res.Values[j])
				}
			}
		}
	}
}

func TestNormalize_NonFinite(t *testing.T) {
	res := Normalize([]float64{math.NaN(), 1, 5, math.Inf(1), math.Inf(-1)})
	want := []float64{0, 0, 100, 100, 0}
	for i := range want {
		if res.Values[i] != want[i] {
			t.Errorf("Values[%d] = %v, want %v", i, res.Values[i], want[i])
		}
	}
	if !math.IsNaN(res.Original[0]) {
		t.Errorf("Original[0] = %v, want NaN preserved", res.Original[0])
	}
	if res.Min != 1 || res.Max != 5 {
		t.Errorf("range = (%v,%v), want (1,5)", res.Min, res.Max)
	}

	res = Normalize([]float64{math.NaN(), math.Inf(1)})
	for i, v := range res.Values {
		if v != 50 {
			t.Errorf("all non-finite: Values[%d] = %v, want 50", i, v)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2, 5}
	Normalize(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 || in[3] != 5 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestPercentile(t *testing.T) {
	xs := []float64{40, 10, 30, 20, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{50, 30},
		{100, 50},
		{25, 20},
		{90, 46},
	}
	for _, tt := range tests {
		if got := Percentile(xs, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Percentile(nil, 50)) {
		t.Errorf("Percentile(nil) should be NaN")
	}
}

func TestColor(t *testing.T) {
	if got := Color(0); got != viridis[0] {
		t.Errorf("Color(0) = %v, want %v", got, viridis[0])
	}
	if got := Color(100); got != viridis[len(viridis)-1] {
		t.Errorf("Color(100) = %v, want %v", got, viridis[len(viridis)-1])
	}
	if got := Color(250); got != viridis[len(viridis)-1] {
		t.Errorf("Color(250) should clamp, got %v", got)
	}
	if got := Hex(viridis[0]); got != "#440154" {
		t.Errorf("Hex = %q, want #440154", got)
	}
}
