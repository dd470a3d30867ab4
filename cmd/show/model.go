package show

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/display"
	"github.com/gigurra/fpviz/cmd/fingerprint"
)

var clipboardWriteAll = clipboard.WriteAll

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	tooltipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	scrubberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorScrubber))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
)

const (
	gutterWidth   = 8 // frequency label plus the axis line
	panelOverhead = 3 // heading, axis and controls lines
	tooltipLines  = 7
	footerLines   = tooltipLines + 2
	seekStep      = 5.0
	minGridHeight = 3
	minGridWidth  = 10
)

type tickMsg time.Time

// reloadMsg carries a fingerprint dump re-read after its file changed.
type reloadMsg struct {
	role audio.Role
	path string
	data *fingerprint.Data
}

// panelRect is where a panel's grid sits on screen.
type panelRect struct {
	top, left, w, h int
}

type model struct {
	mode    Mode
	panels  []*Panel
	players *audio.Players
	paths   map[audio.Role]string

	refresh     time.Duration
	watch       bool
	hoverRadius int

	width, height int
	focus         int

	hover       string
	status      string
	// keyboard cursor inside the focused panel's grid
	cursorOn         bool
	cursorX, cursorY int
	connections []fingerprint.Connection
	top         []fingerprint.SessionScore

	// rendered grid rows, rebuilt when size, data or scrubber column change
	rows map[int]cachedRows
}

type cachedRows struct {
	w, h, scrub, cursor int
	grid                *Grid
	lines               []string
}

func newModel(mode Mode, panels []*Panel, players *audio.Players, paths map[audio.Role]string, refresh time.Duration, watch bool, hoverRadius int) model {
	m := model{
		mode:        mode,
		panels:      panels,
		players:     players,
		paths:       paths,
		refresh:     refresh,
		watch:       watch,
		hoverRadius: max(hoverRadius, 0),
		width:       display.DefaultTerminalWidth,
		height:      display.DefaultTerminalHeight,
		rows:        map[int]cachedRows{},
	}
	m.focus = m.firstPlayable()
	m.relink()
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.watch {
		for role, path := range m.paths {
			cmds = append(cmds, watchFileCmd(role, path))
		}
	}
	return tea.Batch(cmds...)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// relink recomputes the shared time axis and, in the comparison view, the
// top sessions and their connections.
func (m *model) relink() {
	dumps := make([]*fingerprint.Data, 0, len(m.panels))
	durations := make([]float64, 0, len(m.panels))
	for _, p := range m.panels {
		dumps = append(dumps, p.Data)
		durations = append(durations, p.Duration())
	}
	xMax := fingerprint.UnifiedRange(dumps, durations...)
	for _, p := range m.panels {
		p.XMax = xMax
	}

	if m.mode != ModeComparison || len(m.panels) != 2 {
		return
	}
	src, qry := m.panels[0].Data.MatchedPoints, m.panels[1].Data.MatchedPoints
	m.top = fingerprint.TopSessions(src, qry, 3)
	m.connections = fingerprint.Connections(src, qry, 3)
	connected := map[int]bool{}
	for _, s := range m.top {
		connected[s.ID] = true
	}
	for _, p := range m.panels {
		p.Connected = connected
	}
	clear(m.rows)
}

func (m model) firstPlayable() int {
	for i, p := range m.panels {
		if p.Engine != nil && p.Engine.Loaded() {
			return i
		}
	}
	return 0
}

func (m model) focused() *Panel {
	if m.focus < 0 || m.focus >= len(m.panels) {
		return nil
	}
	return m.panels[m.focus]
}

func (m model) gridSize() (int, int) {
	n := max(len(m.panels), 1)
	h := (m.height - 1 - footerLines - panelOverhead*n) / n
	w := m.width - gutterWidth - 1
	return max(w, minGridWidth), max(h, minGridHeight)
}

func (m model) layout() []panelRect {
	w, h := m.gridSize()
	rects := make([]panelRect, len(m.panels))
	for i := range m.panels {
		rects[i] = panelRect{
			top:  1 + i*(h+panelOverhead) + 1,
			left: gutterWidth,
			w:    w,
			h:    h,
		}
	}
	return rects
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		for _, p := range m.panels {
			if p.Engine == nil {
				continue
			}
			if f, changed := p.Engine.UpdateUI(); changed {
				p.Frame = f
			} else {
				// state and labels can change without progress, e.g. on stop
				snap := p.Engine.Snapshot()
				p.Frame.State, p.Frame.Status, p.Frame.PlayLabel = snap.State, snap.Status, snap.PlayLabel
			}
		}
		return m, tickCmd(m.refresh)

	case reloadMsg:
		for _, p := range m.panels {
			if p.Role == msg.role {
				p.SetData(msg.data)
			}
		}
		m.relink()
		clear(m.rows)
		m.status = "Reloaded " + filepath.Base(msg.path)
		slog.Info("fingerprint reloaded", "path", msg.path)
		return m, watchFileCmd(msg.role, msg.path)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.focused()
	var e *audio.Engine
	if p != nil {
		e = p.Engine
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.players.Close()
		return m, tea.Quit
	case " ", "space", "p":
		if e != nil {
			e.Toggle()
		}
	case "s":
		if e != nil {
			e.Stop()
		}
	case "r":
		if e != nil {
			e.Restart()
		}
	case "left", "[":
		if e != nil {
			e.Seek(max(0, e.CurrentTime()-seekStep))
		}
	case "right", "]":
		if e != nil {
			e.Seek(min(e.Duration(), e.CurrentTime()+seekStep))
		}
	case "tab":
		m.focus = m.nextPlayable()
		m.cursorOn = false
	case "h":
		m.moveCursor(-1, 0)
	case "l":
		m.moveCursor(1, 0)
	case "k":
		m.moveCursor(0, -1)
	case "j":
		m.moveCursor(0, 1)
	case "c":
		if m.hover == "" {
			m.status = "Nothing under the cursor to copy"
			break
		}
		if err := clipboardWriteAll(m.hover); err != nil {
			m.status = "Clipboard: " + err.Error()
		} else {
			m.status = "Copied point details"
		}
	}
	return m, nil
}

// moveCursor steps the keyboard cursor and updates the tooltip for the
// point under it.
func (m *model) moveCursor(dx, dy int) {
	if m.focus < 0 || m.focus >= len(m.panels) {
		return
	}
	w, h := m.gridSize()
	if !m.cursorOn {
		m.cursorOn = true
		m.cursorX, m.cursorY = w/2, h/2
	} else {
		m.cursorX = max(0, min(w-1, m.cursorX+dx))
		m.cursorY = max(0, min(h-1, m.cursorY+dy))
	}
	m.updateHover(m.focus, m.cursorX, m.cursorY, w, h)
}

func (m *model) updateHover(i, x, y, w, h int) {
	p := m.panels[i]
	if hit, ok := m.grid(i, w, h).HitAt(x, y, m.hoverRadius); ok {
		m.hover = p.Data.HoverText(hit, p.HoverPrefix())
	} else {
		m.hover = ""
	}
}

func (m model) nextPlayable() int {
	for i := 1; i <= len(m.panels); i++ {
		j := (m.focus + i) % len(m.panels)
		if m.panels[j].Engine != nil && m.panels[j].Engine.Loaded() {
			return j
		}
	}
	return m.focus
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	for i, r := range m.layout() {
		x, y := msg.X-r.left, msg.Y-r.top
		if x < 0 || y < 0 || x >= r.w || y >= r.h {
			continue
		}
		p := m.panels[i]

		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if p.Engine != nil && p.Engine.Loaded() {
				m.focus = i
				p.Engine.Seek(p.SeekTime(r.w, x))
			}
			return m, nil
		}

		m.cursorOn = false
		m.updateHover(i, x, y, r.w, r.h)
		return m, nil
	}
	m.hover = ""
	return m, nil
}

// grid returns the rasterized panel i, reusing the cached one if possible.
func (m model) grid(i, w, h int) *Grid {
	if c, ok := m.rows[i]; ok && c.w == w && c.h == h && c.grid != nil {
		return c.grid
	}
	g := m.panels[i].Rasterize(w, h)
	m.rows[i] = cachedRows{w: w, h: h, scrub: -1, cursor: -1, grid: g}
	return g
}

func scrubColumn(p *Panel, w int) int {
	if p.Engine == nil || !p.Engine.Loaded() || p.XMax <= 0 {
		return -1
	}
	x := int(math.Round(p.Frame.Time / p.XMax * float64(w-1)))
	return max(0, min(w-1, x))
}

func (m model) renderRows(i, w, h int) []string {
	p := m.panels[i]
	scrub := scrubColumn(p, w)
	cursor := -1
	if m.cursorOn && i == m.focus {
		cursor = m.cursorY*w + m.cursorX
	}
	grid := m.grid(i, w, h)
	if c := m.rows[i]; c.lines != nil && c.scrub == scrub && c.cursor == cursor {
		return c.lines
	}

	lines := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		b.WriteString(yLabel(p.YMax, y, h))
		var run strings.Builder
		runStyle := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(styleFor(runStyle).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < w; x++ {
			c := grid.At(x, y)
			glyph, key := c.Glyph, ""
			switch {
			case y*w+x == cursor:
				if !c.HasHit {
					glyph = '+'
				}
				key = "cursor"
			case c.HasHit:
				key = c.Color
				if c.Bold {
					key += "!"
				}
			case x == scrub:
				glyph, key = '│', "scrub"
			}
			if key != runStyle {
				flush()
				runStyle = key
			}
			run.WriteRune(glyph)
		}
		flush()
		lines[y] = b.String()
	}

	m.rows[i] = cachedRows{w: w, h: h, scrub: scrub, cursor: cursor, grid: grid, lines: lines}
	return lines
}

var styleCache = map[string]lipgloss.Style{}

func styleFor(key string) lipgloss.Style {
	switch key {
	case "":
		return lipgloss.NewStyle()
	case "scrub":
		return scrubberStyle
	case "cursor":
		return cursorStyle
	}
	if s, ok := styleCache[key]; ok {
		return s
	}
	color, bold := strings.CutSuffix(key, "!")
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(bold)
	styleCache[key] = s
	return s
}

func yLabel(yMax float64, y, h int) string {
	label := ""
	switch y {
	case 0:
		label = fmt.Sprintf("%.0f", yMax)
	case h / 2:
		label = fmt.Sprintf("%.0f", yMax/2)
	case h - 1:
		label = "0"
	}
	return helpStyle.Render(fmt.Sprintf("%7s│", label))
}

func xAxis(xMax float64, w int) string {
	line := []rune(strings.Repeat("─", w))
	put := func(pos int, s string) {
		pos = max(0, min(w-len(s), pos))
		copy(line[pos:], []rune(s))
	}
	put(0, "0s")
	put(w/2-2, fmt.Sprintf("%.1fs", xMax/2))
	label := fmt.Sprintf("%.1fs", xMax)
	put(w-len(label), label)
	return helpStyle.Render(strings.Repeat(" ", gutterWidth-1) + "└" + string(line))
}

func (m model) controls(i int, p *Panel) string {
	marker := "  "
	if i == m.focus {
		marker = focusStyle.Render("▶ ")
	}
	if p.Engine == nil || !p.Engine.Loaded() {
		return marker + statusStyle.Render(p.Role.String()+": no audio")
	}
	f := p.Frame
	status := statusStyle.Render(f.Status)
	if f.State == audio.StateErrored {
		status = errorStyle.Render(f.Status)
	}
	return fmt.Sprintf("%s%s  %s / %s  %s",
		marker,
		focusStyle.Render("["+f.PlayLabel+"]"),
		f.Label,
		display.Clock(p.Duration()),
		status)
}

func (m model) View() string {
	var b strings.Builder
	w, h := m.gridSize()

	b.WriteString(headerStyle.Render(display.Truncate("fpviz · "+m.mode.String()+" view", m.width)))
	b.WriteString("\n")

	for i, p := range m.panels {
		b.WriteString(headerStyle.Render(display.Truncate(p.Heading(), m.width)))
		b.WriteString("\n")
		for _, line := range m.renderRows(i, w, h) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(xAxis(p.XMax, w))
		b.WriteString("\n")
		b.WriteString(m.controls(i, p))
		b.WriteString("\n")
	}

	tip := strings.Split(m.hover, "\n")
	for i := 0; i < tooltipLines; i++ {
		if i < len(tip) && m.hover != "" {
			b.WriteString(tooltipStyle.Render(display.Truncate(tip[i], m.width)))
		}
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(display.Truncate(m.footerStatus(), m.width)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(display.Truncate("space play/pause • s stop • r restart • ←/→ seek • click seek • tab player • hjkl cursor • c copy • q quit", m.width)))
	return b.String()
}

func (m model) footerStatus() string {
	var parts []string
	if m.mode == ModeComparison {
		if len(m.top) == 0 {
			parts = append(parts, "No common sessions")
		} else {
			sessions := make([]string, len(m.top))
			for i, s := range m.top {
				sessions[i] = fmt.Sprintf("%d (%d)", s.ID, s.Matches)
			}
			parts = append(parts, fmt.Sprintf("Top sessions: %s · %d connections", strings.Join(sessions, ", "), len(m.connections)))
		}
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, " · ")
}
