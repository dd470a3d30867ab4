package fingerprint

import "github.com/samber/lo"

const (
	// DefaultMaxTime is the x-axis extent for a dump with no points.
	DefaultMaxTime = 10.0
	timeMargin     = 0.05

	// MaxFrequency is the top of the plotted frequency axis.
	MaxFrequency = 5000.0
)

// MaxTime is the latest time of any peak, fingerprint point or match plus a
// 5% margin, or DefaultMaxTime when there is nothing positive to show.
func (d *Data) MaxTime() float64 {
	if d == nil {
		return DefaultMaxTime
	}
	latest := max(
		lo.Max(lo.Map(d.AllPeaks, func(p Peak, _ int) float64 { return p.Time })),
		lo.Max(lo.Map(d.FingerprintPoints, func(p Point, _ int) float64 { return p.Time })),
		lo.Max(lo.Map(d.MatchedPoints, func(m Match, _ int) float64 { return m.Time })),
	)
	if latest <= 0 {
		return DefaultMaxTime
	}
	return latest * (1 + timeMargin)
}

// UnifiedRange is the shared x-axis extent of the given dumps: the largest
// MaxTime among the non-nil dumps and any loaded audio durations.
func UnifiedRange(dumps []*Data, audioDurations ...float64) float64 {
	extents := lo.Map(lo.Compact(dumps), func(d *Data, _ int) float64 { return d.MaxTime() })
	r := max(lo.Max(extents), lo.Max(audioDurations))
	if r <= 0 {
		return DefaultMaxTime
	}
	return r
}

// Counts summarises a dump.
type Counts struct {
	Peaks       int
	Fingerprint int
	Matches     int
	Sessions    int
}

func (d *Data) Counts() Counts {
	return Counts{
		Peaks:       len(d.AllPeaks),
		Fingerprint: len(d.FingerprintPoints),
		Matches:     len(d.MatchedPoints),
		Sessions:    len(GroupBySession(d.MatchedPoints)),
	}
}
