package show

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/common"
	"github.com/gigurra/fpviz/cmd/config"
	"github.com/gigurra/fpviz/cmd/display"
	"github.com/gigurra/fpviz/cmd/fingerprint"
	"github.com/spf13/cobra"
)

type Params struct {
	Source      string `short:"s" optional:"true" help:"Fingerprint JSON from the extraction side"`
	Query       string `short:"q" optional:"true" help:"Fingerprint JSON from the matching side"`
	SourceAudio string `long:"source-audio" optional:"true" help:"Audio for the source plot (defaults to audioFilePath in the JSON)"`
	QueryAudio  string `long:"query-audio" optional:"true" help:"Audio for the query plot (defaults to audioFilePath in the JSON)"`
	PcmRate     int    `long:"pcm-rate" optional:"true" help:"Sample rate of headerless .pcm files (0 = config)" default:"0"`
	PcmChannels int    `long:"pcm-channels" optional:"true" help:"Channel count of headerless .pcm files (0 = config)" default:"0"`
	PcmFormat   string `long:"pcm-format" optional:"true" help:"Sample format of headerless .pcm files (default from config)" alts:"int16,int32,float32" strict:"false"`
	Output      string `short:"o" optional:"true" help:"Save the plot as a PNG instead of opening the viewer"`
	Width       int    `long:"width" optional:"true" help:"PNG width in pixels" default:"1200"`
	Spectrogram bool   `long:"spectrogram" help:"Shade the PNG plot background with the audio spectrogram"`
	HighRefresh bool   `long:"high-refresh" help:"Refresh the viewer at ~60 fps instead of ~30 fps"`
	Watch       bool   `short:"w" help:"Reload fingerprint files when they change"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:   "show",
		Short: "Plot fingerprint dumps with synchronized audio playback",
		Long: `Plot the peaks, fingerprint points and matches of one or two fingerprint
dumps. With --source only the extraction view is shown, with --query only
the matching view, and with both a comparison of the two with their top
shared sessions connected.

Keys: space play/pause, s stop, r restart, left/right seek, click to seek,
tab switch player, hjkl move the cursor, c copy the point details, q quit.`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			common.ExitOnError("show", Run(params))
		},
	}.ToCobra()
}

var errNoInput = errors.New("at least one of --source or --query is required")

// input is one side of the view.
type input struct {
	role      audio.Role
	jsonPath  string
	audioPath string
}

func Run(params *Params) error {
	if params.Source == "" && params.Query == "" {
		return errNoInput
	}

	interactive := params.Output == ""
	if interactive && !display.IsTerminal() {
		return errors.New("the viewer needs a terminal, use --output to save a PNG")
	}
	closeLog := common.SetupLogging(params.Verbose, interactive)
	defer closeLog()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, params)
	format, err := cfg.PCMFormat()
	if err != nil {
		return err
	}

	mode := ModeOf(params.Source != "", params.Query != "")
	inputs := []input{
		{role: audio.RoleSource, jsonPath: params.Source, audioPath: params.SourceAudio},
		{role: audio.RoleQuery, jsonPath: params.Query, audioPath: params.QueryAudio},
	}

	players := &audio.Players{}
	defer players.Close()

	var panels []*Panel
	paths := map[audio.Role]string{}
	for _, in := range inputs {
		if in.jsonPath == "" {
			continue
		}
		data, err := fingerprint.Load(in.jsonPath)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", in.jsonPath, err)
		}
		paths[in.role] = in.jsonPath

		var engine *audio.Engine
		if path := resolveAudio(in.audioPath, data); path != "" {
			src := audio.LoadSource(path, format)
			engine = players.Add(audio.NewEngine(src, cfg.EngineOptions(in.role)))
			if !src.Loaded() {
				slog.Warn("audio not loaded, plotting without playback", "role", in.role, "path", path, "error", src.Err())
			}
		}
		panels = append(panels, NewPanel(in.role, mode, data, engine, cfg.Plot.MaxFrequency))
	}

	m := newModel(mode, panels, players, paths, cfg.RefreshInterval(), params.Watch, cfg.Plot.HoverRadius)

	if !interactive {
		opts := DefaultExportOptions()
		if params.Width > 0 {
			opts.Width = params.Width
		}
		opts.Spectrogram = params.Spectrogram
		if err := ExportPNG(params.Output, m.panels, m.connections, opts); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", params.Output)
		return nil
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}

// ModeOf picks the view for the given inputs.
func ModeOf(hasSource, hasQuery bool) Mode {
	switch {
	case hasSource && hasQuery:
		return ModeComparison
	case hasQuery:
		return ModeMatching
	}
	return ModeExtraction
}

// resolveAudio prefers the explicit path, then the dump's audioFilePath if
// that file exists.
func resolveAudio(explicit string, data *fingerprint.Data) string {
	if explicit != "" {
		return explicit
	}
	if data.AudioFilePath == "" {
		return ""
	}
	if _, err := os.Stat(data.AudioFilePath); err != nil {
		slog.Debug("audioFilePath from JSON not found", "path", data.AudioFilePath)
		return ""
	}
	return data.AudioFilePath
}

// applyOverrides copies flags that were set over the loaded config.
func applyOverrides(cfg *config.Config, params *Params) {
	if params.PcmRate > 0 {
		cfg.PCM.SampleRate = params.PcmRate
	}
	if params.PcmChannels > 0 {
		cfg.PCM.Channels = params.PcmChannels
	}
	if params.PcmFormat != "" {
		cfg.PCM.Format = params.PcmFormat
	}
	if params.HighRefresh {
		cfg.Playback.Refresh = config.RefreshHigh
	}
}
