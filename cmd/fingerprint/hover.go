package fingerprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gigurra/fpviz/cmd/amplitude"
)

// PointKind is the kind of plotted point under the cursor.
type PointKind int

const (
	KindPeak PointKind = iota
	KindFingerprint
	KindMatch
)

func (k PointKind) String() string {
	switch k {
	case KindFingerprint:
		return "Fingerprint"
	case KindMatch:
		return "Match"
	}
	return "Peak"
}

// Hit identifies one plotted point.
type Hit struct {
	Kind  PointKind
	Index int
}

// HoverText renders the tooltip for a point. prefix is prepended to the
// first line ("Source ", "Query " or ""). Fingerprint and match tooltips
// show the amplitude of the peak at the same time and frequency, if any.
func (d *Data) HoverText(h Hit, prefix string) string {
	var b strings.Builder
	switch h.Kind {
	case KindPeak:
		if h.Index < 0 || h.Index >= len(d.AllPeaks) {
			return ""
		}
		p := d.AllPeaks[h.Index]
		fmt.Fprintf(&b, "%sPeak\nFreq: %s Hz\nTime: %.2f s\nAmplitude: "+amplitude.Format, prefix, freq(p.Freq), p.Time, p.Amplitude)
	case KindFingerprint:
		if h.Index < 0 || h.Index >= len(d.FingerprintPoints) {
			return ""
		}
		p := d.FingerprintPoints[h.Index]
		fmt.Fprintf(&b, "%sFingerprint\nFreq: %s Hz\nTime: %.2f s", prefix, freq(p.Freq), p.Time)
		d.writeAmplitude(&b, p.Freq, p.Time)
		fmt.Fprintf(&b, "\nHash: %s", p.Hash)
	case KindMatch:
		if h.Index < 0 || h.Index >= len(d.MatchedPoints) {
			return ""
		}
		m := d.MatchedPoints[h.Index]
		fmt.Fprintf(&b, "%sMatch\nFreq: %s Hz\nTime: %.2f s", prefix, freq(m.Freq), m.Time)
		d.writeAmplitude(&b, m.Freq, m.Time)
		fmt.Fprintf(&b, "\nHash: %s", m.Hash)
		if m.HasSession {
			fmt.Fprintf(&b, "\nSession: %d", m.Session)
		} else {
			b.WriteString("\nSession: N/A")
		}
	}
	return b.String()
}

func (d *Data) writeAmplitude(b *strings.Builder, f, t float64) {
	for _, p := range d.AllPeaks {
		if p.Freq == f && p.Time == t {
			fmt.Fprintf(b, "\nAmplitude: "+amplitude.Format, p.Amplitude)
			return
		}
	}
}

// freq prints whole frequencies without a fraction.
func freq(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}
