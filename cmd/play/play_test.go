package play

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/fpviz/cmd/audio"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pos, total float64
		filled     int
	}{
		{0, 10, 0},
		{5, 10, 5},
		{10, 10, 10},
		{20, 10, 10},
		{-1, 10, 0},
		{3, 0, 0},
	}
	for _, tt := range tests {
		got := progressBar(tt.pos, tt.total, 10)
		if n := strings.Count(got, "█"); n != tt.filled || strings.Count(got, "░") != 10-tt.filled {
			t.Errorf("progressBar(%v, %v) = %q, want %d filled", tt.pos, tt.total, got, tt.filled)
		}
	}
}

func newTestModel() model {
	buf := audio.NewInt16Buffer(make([]int16, 8000*30), 1)
	e := audio.NewEngine(audio.NewBufferSource("clip.wav", buf, 8000), audio.Options{Role: audio.RoleSource})
	return model{engine: e, title: "clip.wav", refresh: 10 * time.Millisecond, frame: e.Snapshot()}
}

func send(m model, msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestModel_SeekAndTick(t *testing.T) {
	m := newTestModel()
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	if got := m.engine.CurrentTime(); got != 10 {
		t.Errorf("time after two seeks = %v, want 10", got)
	}

	m, cmd := send(m, tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick not re-armed")
	}
	if m.frame.Clock != "00:10" {
		t.Errorf("clock = %q, want 00:10", m.frame.Clock)
	}

	view := m.View()
	for _, want := range []string{"clip.wav", "00:10 / 00:30", "Ready"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.engine.CurrentTime(); got != 0 {
		t.Errorf("time after seeking back past start = %v, want 0", got)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel()
	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("no command on q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestRun_NoFile(t *testing.T) {
	if err := Run(&Params{}); err == nil {
		t.Error("Run without a file succeeded")
	}
}
