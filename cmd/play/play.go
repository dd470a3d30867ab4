// Package play is headless playback of one audio file with a live progress
// line.
package play

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/common"
	"github.com/gigurra/fpviz/cmd/config"
	"github.com/gigurra/fpviz/cmd/display"
	"github.com/spf13/cobra"
)

type Params struct {
	File        string  `pos:"true" help:"Audio file to play (wav, mp3, pcm, or anything ffmpeg decodes)"`
	Start       float64 `long:"start" optional:"true" help:"Start position in seconds" default:"0"`
	PcmRate     int     `long:"pcm-rate" optional:"true" help:"Sample rate of headerless .pcm files (0 = config)" default:"0"`
	PcmChannels int     `long:"pcm-channels" optional:"true" help:"Channel count of headerless .pcm files (0 = config)" default:"0"`
	PcmFormat   string  `long:"pcm-format" optional:"true" help:"Sample format of headerless .pcm files (default from config)" alts:"int16,int32,float32" strict:"false"`
	Verbose     bool    `short:"v" help:"Enable debug logging"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "play",
		Short:       "Play an audio file with a progress line",
		Long:        "Play an audio file the way the plot viewer does. Keys: space play/pause, s stop, r restart, left/right seek 5s, q quit.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			common.ExitOnError("play", Run(params))
		},
	}.ToCobra()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	seekStep = 5.0
	barWidth = 40
)

type tickMsg time.Time

type model struct {
	engine  *audio.Engine
	title   string
	refresh time.Duration
	frame   audio.Frame
	width   int
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	e := m.engine
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		if f, ok := e.UpdateUI(); ok {
			m.frame = f
		} else {
			m.frame.State, m.frame.Status, m.frame.PlayLabel = e.State(), e.Status(), e.Snapshot().PlayLabel
		}
		return m, tickCmd(m.refresh)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			e.Close()
			return m, tea.Quit
		case " ", "p":
			e.Toggle()
		case "s":
			e.Stop()
		case "r":
			e.Restart()
		case "left", "[":
			e.Seek(max(0, e.CurrentTime()-seekStep))
		case "right", "]":
			e.Seek(min(e.Duration(), e.CurrentTime()+seekStep))
		}
	}
	return m, nil
}

// progressBar renders pos/total as a fixed-width bar.
func progressBar(pos, total float64, width int) string {
	filled := 0
	if total > 0 {
		filled = int(pos / total * float64(width))
	}
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (m model) View() string {
	f := m.frame
	status := statusStyle.Render(f.Status)
	if f.State == audio.StateErrored {
		status = errorStyle.Render(f.Status)
	}

	icon := "⏸"
	if f.State == audio.StatePlaying {
		icon = "▶"
	}

	width := m.width
	if width <= 0 {
		width = display.DefaultTerminalWidth
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(display.Truncate(m.title, width)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s / %s %s %s\n",
		icon,
		f.Clock,
		display.Clock(m.engine.Duration()),
		barStyle.Render(progressBar(f.Time, m.engine.Duration(), barWidth)),
		status)
	b.WriteString(helpStyle.Render("space play/pause • s stop • r restart • ←/→ seek • q quit"))
	b.WriteString("\n")
	return b.String()
}

func Run(params *Params) error {
	if params.File == "" {
		return errors.New("no audio file given")
	}
	closeLog := common.SetupLogging(params.Verbose, true)
	defer closeLog()

	if !audio.AudioAvailable {
		return audio.ErrAudioUnavailable
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if params.PcmRate > 0 {
		cfg.PCM.SampleRate = params.PcmRate
	}
	if params.PcmChannels > 0 {
		cfg.PCM.Channels = params.PcmChannels
	}
	if params.PcmFormat != "" {
		cfg.PCM.Format = params.PcmFormat
	}
	format, err := cfg.PCMFormat()
	if err != nil {
		return err
	}

	src := audio.LoadSource(params.File, format)
	if !src.Loaded() {
		return fmt.Errorf("failed to load %s: %w", params.File, src.Err())
	}

	e := audio.NewEngine(src, cfg.EngineOptions(audio.RoleSource))
	defer e.Close()
	e.Play(params.Start)

	m := model{
		engine:  e,
		title:   display.SanitizeFilename(filepath.Base(params.File)),
		refresh: cfg.RefreshInterval(),
		frame:   e.Snapshot(),
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("player failed: %w", err)
	}
	return nil
}
