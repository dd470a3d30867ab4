package show

import (
	"math"

	"github.com/gigurra/fpviz/cmd/amplitude"
	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/display"
	"github.com/gigurra/fpviz/cmd/fingerprint"
)

// Mode is the kind of view: one dump from the extraction side, one from the
// matching side, or both side by side.
type Mode int

const (
	ModeExtraction Mode = iota
	ModeMatching
	ModeComparison
)

func (m Mode) String() string {
	switch m {
	case ModeMatching:
		return "Matching"
	case ModeComparison:
		return "Comparison"
	}
	return "Extraction"
}

const (
	colorFingerprint     = "#d62728" // red
	colorFingerprintComp = "#1f77b4" // blue
	colorMatchPlain      = "#ff7f0e" // orange
	colorScrubber        = "#ffd700"
)

// Panel is one plot: a fingerprint dump, its normalized amplitudes and the
// engine playing its audio (nil if there is none).
type Panel struct {
	Role   audio.Role
	Mode   Mode
	Data   *fingerprint.Data
	Title  string
	Engine *audio.Engine
	Norm   amplitude.Result
	XMax   float64
	YMax   float64

	// last frame handed over by the engine's UpdateUI
	Frame audio.Frame
	// session ids drawn with connection highlights
	Connected map[int]bool
}

func NewPanel(role audio.Role, mode Mode, data *fingerprint.Data, engine *audio.Engine, yMax float64) *Panel {
	p := &Panel{
		Role:   role,
		Mode:   mode,
		Engine: engine,
		YMax:   yMax,
	}
	p.SetData(data)
	if engine != nil {
		p.Frame = engine.Snapshot()
	}
	return p
}

// SetData replaces the dump, e.g. after the file changed on disk.
func (p *Panel) SetData(data *fingerprint.Data) {
	p.Data = data
	p.Title = display.SanitizeFilename(data.Title)
	p.Norm = amplitude.Normalize(data.Amplitudes())
}

// Heading is the plot title as the original tool words it.
func (p *Panel) Heading() string {
	switch p.Mode {
	case ModeComparison:
		return p.Role.String() + ": " + p.Title
	case ModeMatching:
		return "Audio Fingerprint Matching: " + p.Title
	}
	return "Audio Fingerprint Extraction: " + p.Title
}

// ShowsMatches reports whether matched points are drawn. The extraction
// view has none.
func (p *Panel) ShowsMatches() bool {
	return p.Mode != ModeExtraction
}

// HoverPrefix is prepended to tooltips in the comparison view.
func (p *Panel) HoverPrefix() string {
	if p.Mode == ModeComparison {
		return p.Role.String() + " "
	}
	return ""
}

// Duration of the panel's audio, 0 without audio.
func (p *Panel) Duration() float64 {
	if p.Engine == nil {
		return 0
	}
	return p.Engine.Duration()
}

// Cell is one character of a rasterized panel.
type Cell struct {
	Glyph  rune
	Color  string
	Bold   bool
	Hit    fingerprint.Hit
	HasHit bool
}

// Grid is a rasterized panel. Row 0 is the highest frequency.
type Grid struct {
	W, H  int
	Cells []Cell
}

func (g *Grid) At(x, y int) *Cell {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return nil
	}
	return &g.Cells[y*g.W+x]
}

// Project maps a (time, frequency) point onto grid coordinates. Points
// outside the axes are reported as not visible.
func (p *Panel) Project(w, h int, t, f float64) (int, int, bool) {
	if w <= 0 || h <= 0 || p.XMax <= 0 || p.YMax <= 0 {
		return 0, 0, false
	}
	if t < 0 || t > p.XMax || f < 0 || f > p.YMax || math.IsNaN(t) || math.IsNaN(f) {
		return 0, 0, false
	}
	x := int(math.Round(t / p.XMax * float64(w-1)))
	y := (h - 1) - int(math.Round(f/p.YMax*float64(h-1)))
	return x, y, true
}

// ColumnTime is the time at the centre of column x.
func (p *Panel) ColumnTime(w, x int) float64 {
	if w <= 1 {
		return 0
	}
	t := float64(x) / float64(w-1) * p.XMax
	return max(0, min(p.XMax, t))
}

// SeekTime converts a click on column x into a playback position clamped to
// the audio duration.
func (p *Panel) SeekTime(w, x int) float64 {
	return max(0, min(p.Duration(), p.ColumnTime(w, x)))
}

// peakGlyph picks a glyph for a marker size.
func peakGlyph(size float64) rune {
	switch {
	case size < 20:
		return '·'
	case size < 36:
		return '•'
	}
	return '●'
}

// Rasterize draws peaks, then fingerprint points, then matches, so later
// kinds win a shared cell.
func (p *Panel) Rasterize(w, h int) *Grid {
	g := &Grid{W: max(w, 0), H: max(h, 0)}
	g.Cells = make([]Cell, g.W*g.H)
	for i := range g.Cells {
		g.Cells[i].Glyph = ' '
	}
	if g.W == 0 || g.H == 0 {
		return g
	}

	// Larger peaks win among peaks.
	best := make([]float64, len(g.Cells))
	for i, pk := range p.Data.AllPeaks {
		x, y, ok := p.Project(g.W, g.H, pk.Time, pk.Freq)
		if !ok {
			continue
		}
		v := p.Norm.Values[i]
		c := g.At(x, y)
		if c.HasHit && best[y*g.W+x] >= v {
			continue
		}
		best[y*g.W+x] = v
		*c = Cell{
			Glyph:  peakGlyph(p.Norm.Sizes[i]),
			Color:  amplitude.Hex(amplitude.Color(v)),
			Hit:    fingerprint.Hit{Kind: fingerprint.KindPeak, Index: i},
			HasHit: true,
		}
	}

	fpColor, fpGlyph := colorFingerprint, '△'
	if p.Mode == ModeComparison {
		fpColor, fpGlyph = colorFingerprintComp, '▵'
	}
	for i, fp := range p.Data.FingerprintPoints {
		x, y, ok := p.Project(g.W, g.H, fp.Time, fp.Freq)
		if !ok {
			continue
		}
		*g.At(x, y) = Cell{
			Glyph:  fpGlyph,
			Color:  fpColor,
			Hit:    fingerprint.Hit{Kind: fingerprint.KindFingerprint, Index: i},
			HasHit: true,
		}
	}

	if !p.ShowsMatches() {
		return g
	}
	colors := p.matchColors()
	for i, m := range p.Data.MatchedPoints {
		x, y, ok := p.Project(g.W, g.H, m.Time, m.Freq)
		if !ok {
			continue
		}
		*g.At(x, y) = Cell{
			Glyph:  '★',
			Color:  colors[i],
			Bold:   p.Connected[m.SessionID()],
			Hit:    fingerprint.Hit{Kind: fingerprint.KindMatch, Index: i},
			HasHit: true,
		}
	}
	return g
}

// matchColors colours matches by session group, or uniformly when the
// dump carries no session ids.
func (p *Panel) matchColors() []string {
	out := make([]string, len(p.Data.MatchedPoints))
	if !fingerprint.HasSessions(p.Data.MatchedPoints) {
		plain := colorMatchPlain
		if p.Mode == ModeComparison {
			plain = colorFingerprint
		}
		for i := range out {
			out[i] = plain
		}
		return out
	}

	groupIndex := map[int]int{}
	for i, s := range fingerprint.GroupBySession(p.Data.MatchedPoints) {
		groupIndex[s.ID] = i
	}
	for i, m := range p.Data.MatchedPoints {
		out[i] = fingerprint.SessionHex[fingerprint.GroupColor(groupIndex[m.SessionID()])]
	}
	return out
}

// HitAt finds the plotted point nearest to (x, y) within radius cells.
func (g *Grid) HitAt(x, y, radius int) (fingerprint.Hit, bool) {
	bestDist := math.MaxInt
	var best fingerprint.Hit
	found := false
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := g.At(x+dx, y+dy)
			if c == nil || !c.HasHit {
				continue
			}
			d := dx*dx + dy*dy
			if d < bestDist {
				bestDist, best, found = d, c.Hit, true
			}
		}
	}
	return best, found
}
