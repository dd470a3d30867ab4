package show

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/gigurra/fpviz/cmd/amplitude"
	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/fingerprint"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ExportOptions controls the PNG rendering.
type ExportOptions struct {
	Width       int
	PanelHeight int
	// Spectrogram shades the plot background from the panel's audio.
	Spectrogram bool
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{Width: 1200, PanelHeight: 420}
}

const (
	marginLeft   = 70
	marginRight  = 20
	marginTop    = 30
	marginBottom = 40
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	axisGray  = color.RGBA{120, 120, 120, 255}
	gridGray  = color.RGBA{230, 230, 230, 255}
	labelFace = basicfont.Face7x13
)

// plotArea is the pixel rectangle of one panel's axes.
type plotArea struct {
	panel *Panel
	rect  image.Rectangle
}

func (a plotArea) point(t, f float64) (image.Point, bool) {
	p := a.panel
	if p.XMax <= 0 || p.YMax <= 0 || t < 0 || t > p.XMax || f < 0 || f > p.YMax {
		return image.Point{}, false
	}
	x := a.rect.Min.X + int(math.Round(t/p.XMax*float64(a.rect.Dx()-1)))
	y := a.rect.Max.Y - 1 - int(math.Round(f/p.YMax*float64(a.rect.Dy()-1)))
	return image.Pt(x, y), true
}

// RenderImage draws the panels stacked vertically, with connection lines
// between the first two in the comparison view.
func RenderImage(panels []*Panel, connections []fingerprint.Connection, opts ExportOptions) *image.RGBA {
	opts.Width = max(opts.Width, marginLeft+marginRight+100)
	opts.PanelHeight = max(opts.PanelHeight, marginTop+marginBottom+50)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.PanelHeight*max(len(panels), 1)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)

	areas := make([]plotArea, len(panels))
	for i, p := range panels {
		top := i * opts.PanelHeight
		areas[i] = plotArea{
			panel: p,
			rect:  image.Rect(marginLeft, top+marginTop, opts.Width-marginRight, top+opts.PanelHeight-marginBottom),
		}
		if opts.Spectrogram {
			drawSpectrogram(img, areas[i])
		}
		drawAxes(img, areas[i])
		drawPoints(img, areas[i])
		drawText(img, marginLeft, top+marginTop-10, p.Heading(), black)
	}

	if len(areas) == 2 {
		for _, c := range connections {
			from, ok1 := areas[0].point(c.Source.Time, c.Source.Freq)
			to, ok2 := areas[1].point(c.Query.Time, c.Query.Freq)
			if ok1 && ok2 {
				dashedLine(img, from, to, parseHex(fingerprint.SessionHex[c.Color]))
			}
		}
	}
	return img
}

// ExportPNG renders the panels and writes them to path.
func ExportPNG(path string, panels []*Panel, connections []fingerprint.Connection, opts ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, RenderImage(panels, connections, opts)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func drawSpectrogram(img *image.RGBA, a plotArea) {
	e := a.panel.Engine
	if e == nil || !e.Loaded() {
		return
	}
	src := e.Source()
	spec := audio.Spectrogram(src.Buffer(), src.SampleRate(), a.panel.XMax, a.panel.YMax, a.rect.Dx(), a.rect.Dy())
	for y, row := range spec {
		for x, v := range row {
			shade := uint8(255 - math.Round(v*90))
			img.SetRGBA(a.rect.Min.X+x, a.rect.Min.Y+y, color.RGBA{shade, shade, shade, 255})
		}
	}
}

func drawAxes(img *image.RGBA, a plotArea) {
	r := a.rect
	for i := 1; i < 5; i++ {
		y := r.Min.Y + i*r.Dy()/5
		hline(img, r.Min.X, r.Max.X, y, gridGray)
	}
	hline(img, r.Min.X, r.Max.X, r.Max.Y, axisGray)
	vline(img, r.Min.X, r.Min.Y, r.Max.Y, axisGray)

	for i := 0; i <= 5; i++ {
		f := a.panel.YMax * float64(i) / 5
		y := r.Max.Y - i*r.Dy()/5
		drawText(img, 8, y+4, fmt.Sprintf("%5.0f", f), axisGray)

		t := a.panel.XMax * float64(i) / 5
		x := r.Min.X + i*(r.Dx()-1)/5
		vline(img, x, r.Max.Y, r.Max.Y+4, axisGray)
		drawText(img, x-14, r.Max.Y+18, fmt.Sprintf("%.1fs", t), axisGray)
	}
	drawText(img, r.Min.X+r.Dx()/2-30, r.Max.Y+34, "Time (s)", black)
	drawText(img, 8, r.Min.Y-10, "Hz", black)
}

func drawPoints(img *image.RGBA, a plotArea) {
	p := a.panel
	for i, pk := range p.Data.AllPeaks {
		pt, ok := a.point(pk.Time, pk.Freq)
		if !ok {
			continue
		}
		radius := max(1, int(math.Round(math.Sqrt(p.Norm.Sizes[i])/2)))
		fillCircle(img, pt, radius, amplitude.Color(p.Norm.Values[i]))
	}

	fpColor := parseHex(colorFingerprint)
	if p.Mode == ModeComparison {
		fpColor = parseHex(colorFingerprintComp)
	}
	for _, fp := range p.Data.FingerprintPoints {
		if pt, ok := a.point(fp.Time, fp.Freq); ok {
			triangle(img, pt, 5, fpColor)
		}
	}

	if !p.ShowsMatches() {
		return
	}
	colors := p.matchColors()
	for i, m := range p.Data.MatchedPoints {
		pt, ok := a.point(m.Time, m.Freq)
		if !ok {
			continue
		}
		size := 4
		if p.Connected[m.SessionID()] {
			size = 6
		}
		star(img, pt, size, parseHex(colors[i]))
	}
}

func drawText(img *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func fillCircle(img *image.RGBA, c image.Point, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(c.X+dx, c.Y+dy, col)
			}
		}
	}
}

// triangle draws an upward-pointing outline centred on c.
func triangle(img *image.RGBA, c image.Point, r int, col color.RGBA) {
	top := image.Pt(c.X, c.Y-r)
	left := image.Pt(c.X-r, c.Y+r)
	right := image.Pt(c.X+r, c.Y+r)
	line(img, top, left, col, 0)
	line(img, left, right, col, 0)
	line(img, right, top, col, 0)
}

// star draws a filled five-pointed star centred on c.
func star(img *image.RGBA, c image.Point, r int, col color.RGBA) {
	var pts [10]image.Point
	for i := range pts {
		radius := float64(r)
		if i%2 == 1 {
			radius *= 0.45
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		pts[i] = image.Pt(c.X+int(math.Round(radius*math.Cos(angle))), c.Y+int(math.Round(radius*math.Sin(angle))))
	}
	for y := c.Y - r; y <= c.Y+r; y++ {
		for x := c.X - r; x <= c.X+r; x++ {
			if insidePolygon(pts[:], x, y) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func insidePolygon(pts []image.Point, x, y int) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > y) != (b.Y > y) {
			xc := float64(b.X-a.X)*float64(y-a.Y)/float64(b.Y-a.Y) + float64(a.X)
			if float64(x) < xc {
				in = !in
			}
		}
	}
	return in
}

func dashedLine(img *image.RGBA, a, b image.Point, col color.RGBA) {
	line(img, a, b, col, 6)
}

// line is Bresenham's; a positive dash alternates drawn and skipped runs.
func line(img *image.RGBA, a, b image.Point, col color.RGBA, dash int) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	for step := 0; ; step++ {
		if dash <= 0 || (step/dash)%2 == 0 {
			img.SetRGBA(a.X, a.Y, col)
		}
		if a == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			a.X += sx
		}
		if e2 <= dx {
			err += dx
			a.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseHex reads #rrggbb, falling back to black.
func parseHex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return black
	}
	return color.RGBA{r, g, b, 255}
}
