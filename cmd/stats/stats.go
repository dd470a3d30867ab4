// Package stats summarises fingerprint dumps in a table.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/fpviz/cmd/amplitude"
	"github.com/gigurra/fpviz/cmd/common"
	"github.com/gigurra/fpviz/cmd/display"
	"github.com/gigurra/fpviz/cmd/fingerprint"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Files    []string `pos:"true" help:"Fingerprint JSON files"`
	JSON     bool     `long:"json" help:"Output as JSON"`
	Sessions bool     `long:"sessions" help:"Also list the sessions of every file"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "stats",
		Short:       "Summarise fingerprint dumps",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if code := Run(params, os.Stdout, os.Stderr); code != 0 {
				os.Exit(code)
			}
		},
	}.ToCobra()
}

// Summary describes one dump. Quantiles holds the normalized amplitude at
// each of amplitude.Quantiles.
type Summary struct {
	File        string             `json:"file"`
	Title       string             `json:"title"`
	AudioFile   string             `json:"audioFile,omitempty"`
	Counts      fingerprint.Counts `json:"counts"`
	MaxTime     float64            `json:"maxTime"`
	AmplitudeLo float64            `json:"amplitudeMin"`
	AmplitudeHi float64            `json:"amplitudeMax"`
	Quantiles   []float64          `json:"quantiles"`
	Sessions    []SessionSummary   `json:"sessions,omitempty"`
}

type SessionSummary struct {
	ID     int    `json:"id"`
	Points int    `json:"points"`
	Color  string `json:"color"`
}

// Summarize computes the summary of d.
func Summarize(file string, d *fingerprint.Data) Summary {
	norm := amplitude.Normalize(d.Amplitudes())
	s := Summary{
		File:        file,
		Title:       display.SanitizeFilename(d.Title),
		AudioFile:   d.AudioFilePath,
		Counts:      d.Counts(),
		MaxTime:     d.MaxTime(),
		AmplitudeLo: norm.Min,
		AmplitudeHi: norm.Max,
		Quantiles: lo.Map(amplitude.Quantiles, func(q float64, _ int) float64 {
			return amplitude.Percentile(norm.Values, q)
		}),
	}
	if fingerprint.HasSessions(d.MatchedPoints) {
		s.Sessions = lo.Map(fingerprint.GroupBySession(d.MatchedPoints), func(g fingerprint.Session, i int) SessionSummary {
			return SessionSummary{ID: g.ID, Points: len(g.Points), Color: fingerprint.GroupColor(i)}
		})
	}
	return s
}

func Run(params *Params, stdout, stderr io.Writer) int {
	if len(params.Files) == 0 {
		fmt.Fprintln(stderr, "stats: no files given")
		return 1
	}

	var summaries []Summary
	exit := 0
	for _, f := range params.Files {
		d, err := fingerprint.Load(f)
		if err != nil {
			fmt.Fprintf(stderr, "stats: %s: %v\n", f, err)
			exit = 1
			continue
		}
		summaries = append(summaries, Summarize(f, d))
	}

	if params.JSON {
		data, err := json.MarshalIndent(lo.Map(summaries, func(s Summary, _ int) Summary { return s.jsonSafe() }), "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Error marshaling JSON: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(data))
		return exit
	}

	if len(summaries) > 0 {
		RenderTable(stdout, summaries)
	}
	if params.Sessions {
		for _, s := range summaries {
			RenderSessions(stdout, s)
		}
	}
	return exit
}

// jsonSafe replaces NaN quantiles, which encoding/json rejects, with 0.
func (s Summary) jsonSafe() Summary {
	s.Quantiles = lo.Map(s.Quantiles, func(v float64, _ int) float64 {
		if math.IsNaN(v) {
			return 0
		}
		return v
	})
	return s
}

func quantileHeader() table.Row {
	return lo.Map(amplitude.Quantiles, func(q float64, _ int) any { return fmt.Sprintf("p%.0f", q) })
}

func formatQuantile(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

// RenderTable writes one row per dump.
func RenderTable(w io.Writer, summaries []Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if display.IsTerminal() {
		termWidth, _ := display.TerminalSize()
		t.SetAllowedRowLength(termWidth)
	}

	header := table.Row{"File", "Title", "Peaks", "Fingerprint", "Matches", "Sessions", "Span", "Amplitude"}
	header = append(header, quantileHeader()...)
	t.AppendHeader(header)

	for _, s := range summaries {
		row := table.Row{
			display.ShortenPath(s.File, 30),
			display.Truncate(s.Title, 30),
			s.Counts.Peaks,
			s.Counts.Fingerprint,
			s.Counts.Matches,
			s.Counts.Sessions,
			display.Clock(s.MaxTime),
			fmt.Sprintf(amplitude.Format+" .. "+amplitude.Format, s.AmplitudeLo, s.AmplitudeHi),
		}
		for _, q := range s.Quantiles {
			row = append(row, formatQuantile(q))
		}
		t.AppendRow(row)
	}
	t.Render()
}

// RenderSessions lists the sessions of one dump.
func RenderSessions(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n%s\n", filepath.Base(s.File))
	if len(s.Sessions) == 0 {
		fmt.Fprintln(w, "  no sessions")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Session", "Points", "Color"})
	for _, ss := range s.Sessions {
		t.AppendRow(table.Row{ss.ID, ss.Points, ss.Color})
	}
	t.AppendFooter(table.Row{"Total", lo.SumBy(s.Sessions, func(ss SessionSummary) int { return ss.Points }), ""})
	t.Render()
}
