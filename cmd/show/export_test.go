package show

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/fingerprint"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#d62728", color.RGBA{0xd6, 0x27, 0x28, 255}},
		{"#000000", color.RGBA{0, 0, 0, 255}},
		{"nope", black},
		{"", black},
	}
	for _, tt := range tests {
		if got := parseHex(tt.in); got != tt.want {
			t.Errorf("parseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderImage_Layout(t *testing.T) {
	src := NewPanel(audio.RoleSource, ModeComparison, mustParse(t, sourceJSON), nil, 5000)
	qry := NewPanel(audio.RoleQuery, ModeComparison, mustParse(t, queryJSON), nil, 5000)
	m := newModel(ModeComparison, []*Panel{src, qry}, &audio.Players{}, nil, 0, false, 1)

	opts := ExportOptions{Width: 800, PanelHeight: 300}
	img := RenderImage(m.panels, m.connections, opts)
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("bounds = %v, want 800x600", b)
	}

	// apex of the source fingerprint triangle
	area := plotArea{panel: src, rect: img.Bounds()}
	area.rect.Min.X, area.rect.Min.Y = marginLeft, marginTop
	area.rect.Max.X, area.rect.Max.Y = 800-marginRight, 300-marginBottom
	pt, ok := area.point(1.0, 1000)
	if !ok {
		t.Fatal("fingerprint point outside plot")
	}
	if got := img.RGBAAt(pt.X, pt.Y-5); got != parseHex(colorFingerprintComp) {
		t.Errorf("triangle apex = %v, want comparison blue", got)
	}
	if got := img.RGBAAt(1, 1); got != white {
		t.Errorf("background = %v, want white", got)
	}
}

func TestRenderImage_ExtractionDrawsNoMatches(t *testing.T) {
	p := NewPanel(audio.RoleSource, ModeExtraction, mustParse(t, sourceJSON), nil, 5000)
	p.XMax = 10
	img := RenderImage([]*Panel{p}, nil, ExportOptions{Width: 600, PanelHeight: 300})
	area := plotArea{panel: p}
	area.rect.Min.X, area.rect.Min.Y = marginLeft, marginTop
	area.rect.Max.X, area.rect.Max.Y = 600-marginRight, 300-marginBottom

	pt, _ := area.point(3.0, 1500)
	if got := img.RGBAAt(pt.X, pt.Y); got != white && got != gridGray {
		t.Errorf("match location drawn in extraction view: %v", got)
	}
}

func TestExportPNG(t *testing.T) {
	p := NewPanel(audio.RoleSource, ModeMatching, mustParse(t, sourceJSON), toneEngine(audio.RoleSource, 2), 5000)
	p.XMax = fingerprint.UnifiedRange([]*fingerprint.Data{p.Data}, p.Duration())

	path := filepath.Join(t.TempDir(), "plot.png")
	opts := DefaultExportOptions()
	opts.Spectrogram = true
	if err := ExportPNG(path, []*Panel{p}, nil, opts); err != nil {
		t.Fatalf("ExportPNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != opts.Width || b.Dy() != opts.PanelHeight {
		t.Errorf("bounds = %v", b)
	}
}

func TestExportPNG_BadPath(t *testing.T) {
	p := NewPanel(audio.RoleSource, ModeExtraction, mustParse(t, sourceJSON), nil, 5000)
	if err := ExportPNG(filepath.Join(t.TempDir(), "missing", "plot.png"), []*Panel{p}, nil, DefaultExportOptions()); err == nil {
		t.Error("ExportPNG into a missing directory succeeded")
	}
}
