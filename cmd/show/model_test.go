package show

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/fpviz/cmd/audio"
)

func newTestModel(t *testing.T) (model, *audio.Engine) {
	t.Helper()
	e := toneEngine(audio.RoleSource, 4)
	players := &audio.Players{}
	players.Add(e)
	p := NewPanel(audio.RoleSource, ModeExtraction, mustParse(t, sourceJSON), e, 5000)
	m := newModel(ModeExtraction, []*Panel{p}, players, map[audio.Role]string{audio.RoleSource: "src.json"}, 33*time.Millisecond, false, 1)
	return m, e
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestModel_UnifiedTimeAxis(t *testing.T) {
	m, _ := newTestModel(t)
	// latest point is at 9 s, plus margin, beyond the 4 s of audio
	if x := m.panels[0].XMax; x < 9 || x > 10 {
		t.Errorf("XMax = %v, want data range with margin", x)
	}
}

func TestModel_QuitClosesPlayers(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m, _ := newTestModel(t)
		_, cmd := update(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%s: no command returned", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", k)
		}
		if n := len(m.players.All()); n != 0 {
			t.Errorf("%s: %d players left after quit", k, n)
		}
	}
}

func TestModel_SeekKeys(t *testing.T) {
	m, e := newTestModel(t)
	m, _ = update(t, m, key("right"))
	if got := e.CurrentTime(); got != 4 {
		t.Errorf("after right: time = %v, want clamped to 4", got)
	}
	m, _ = update(t, m, key("["))
	if got := e.CurrentTime(); got != 0 {
		t.Errorf("after [: time = %v, want 0", got)
	}
	e.Seek(2)
	update(t, m, key("left"))
	if got := e.CurrentTime(); got != 0 {
		t.Errorf("after left from 2: time = %v, want 0", got)
	}
}

func TestModel_ClickSeeksClamped(t *testing.T) {
	m, e := newTestModel(t)
	r := m.layout()[0]

	update(t, m, tea.MouseMsg{X: r.left + r.w - 1, Y: r.top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := e.CurrentTime(); got != 4 {
		t.Errorf("click at right edge: time = %v, want duration 4", got)
	}

	update(t, m, tea.MouseMsg{X: r.left, Y: r.top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := e.CurrentTime(); got != 0 {
		t.Errorf("click at left edge: time = %v, want 0", got)
	}

	// Outside the plot nothing happens.
	e.Seek(1)
	update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := e.CurrentTime(); got != 1 {
		t.Errorf("click outside plot moved time to %v", got)
	}
}

func TestModel_HoverAndCopy(t *testing.T) {
	m, _ := newTestModel(t)
	r := m.layout()[0]
	p := m.panels[0]
	x, y, ok := p.Project(r.w, r.h, 1.0, 1000)
	if !ok {
		t.Fatal("fingerprint point not visible")
	}

	m, _ = update(t, m, tea.MouseMsg{X: r.left + x, Y: r.top + y, Action: tea.MouseActionMotion})
	if !strings.HasPrefix(m.hover, "Fingerprint\nFreq: 1000 Hz") {
		t.Fatalf("hover = %q, want fingerprint tooltip", m.hover)
	}

	var copied string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error { copied = s; return nil }
	defer func() { clipboardWriteAll = old }()

	m, _ = update(t, m, key("c"))
	if copied != m.hover {
		t.Errorf("copied %q, want %q", copied, m.hover)
	}
	if m.status != "Copied point details" {
		t.Errorf("status = %q", m.status)
	}

	clipboardWriteAll = func(string) error { return errors.New("no clipboard") }
	m, _ = update(t, m, key("c"))
	if m.status != "Clipboard: no clipboard" {
		t.Errorf("status after failure = %q", m.status)
	}

	// Moving off the points clears the tooltip.
	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	if m.hover != "" {
		t.Errorf("hover outside plot = %q", m.hover)
	}
	m, _ = update(t, m, key("c"))
	if m.status != "Nothing under the cursor to copy" {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_KeyboardCursor(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, key("h"))
	if !m.cursorOn {
		t.Fatal("cursor not shown after h")
	}
	w, h := m.gridSize()
	if m.cursorX != w/2 || m.cursorY != h/2 {
		t.Errorf("cursor starts at (%d, %d), want centre (%d, %d)", m.cursorX, m.cursorY, w/2, h/2)
	}
	for i := 0; i < w+5; i++ {
		m, _ = update(t, m, key("h"))
	}
	if m.cursorX != 0 {
		t.Errorf("cursorX = %d, want clamped to 0", m.cursorX)
	}
	if !strings.Contains(m.View(), "+") {
		t.Error("cursor not rendered")
	}
}

func TestModel_TickPublishesFrame(t *testing.T) {
	m, e := newTestModel(t)
	e.Seek(2)

	m, cmd := update(t, m, tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick did not re-arm")
	}
	f := m.panels[0].Frame
	if f.Time != 2 || f.Label != "Source: 00:02" {
		t.Errorf("frame = %+v, want time 2 with label", f)
	}
	if !strings.Contains(m.View(), "Source: 00:02") {
		t.Error("view does not show the time label")
	}
}

func TestModel_Reload(t *testing.T) {
	m, _ := newTestModel(t)
	fresh := mustParse(t, `{"title": "Edited", "allPeaks": [[100, 20.0, -1]]}`)

	m, cmd := update(t, m, reloadMsg{role: audio.RoleSource, path: "dir/src.json", data: fresh})
	if m.panels[0].Data != fresh || m.panels[0].Title != "Edited" {
		t.Errorf("panel not updated: %+v", m.panels[0].Title)
	}
	if m.panels[0].XMax < 20 {
		t.Errorf("XMax = %v, want extended to the new data", m.panels[0].XMax)
	}
	if m.status != "Reloaded src.json" {
		t.Errorf("status = %q", m.status)
	}
	if cmd == nil {
		t.Error("watch not re-armed")
	}
}

func TestModel_ComparisonFooter(t *testing.T) {
	src := NewPanel(audio.RoleSource, ModeComparison, mustParse(t, sourceJSON), nil, 5000)
	qry := NewPanel(audio.RoleQuery, ModeComparison, mustParse(t, queryJSON), nil, 5000)
	m := newModel(ModeComparison, []*Panel{src, qry}, &audio.Players{}, nil, 33*time.Millisecond, false, 1)

	if len(m.top) != 1 || m.top[0].ID != 2 || m.top[0].Matches != 1 {
		t.Fatalf("top sessions = %+v, want session 2 with one match", m.top)
	}
	if len(m.connections) != 1 {
		t.Errorf("connections = %+v", m.connections)
	}
	if !src.Connected[2] || src.Connected[5] {
		t.Errorf("connected = %v", src.Connected)
	}
	if got := m.footerStatus(); got != "Top sessions: 2 (1) · 1 connections" {
		t.Errorf("footer = %q", got)
	}
	view := m.View()
	for _, want := range []string{"Source: Track [music] one", "Query: Query clip", "Query: no audio"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_TabSkipsPanelsWithoutAudio(t *testing.T) {
	src := NewPanel(audio.RoleSource, ModeComparison, mustParse(t, sourceJSON), nil, 5000)
	qry := NewPanel(audio.RoleQuery, ModeComparison, mustParse(t, queryJSON), toneEngine(audio.RoleQuery, 1), 5000)
	m := newModel(ModeComparison, []*Panel{src, qry}, &audio.Players{}, nil, 33*time.Millisecond, false, 1)
	if m.focus != 1 {
		t.Fatalf("initial focus = %d, want the panel with audio", m.focus)
	}
	m, _ = update(t, m, key("tab"))
	if m.focus != 1 {
		t.Errorf("focus after tab = %d, want 1", m.focus)
	}
}
