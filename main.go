package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/fpviz/cmd/config"
	"github.com/gigurra/fpviz/cmd/play"
	"github.com/gigurra/fpviz/cmd/show"
	"github.com/gigurra/fpviz/cmd/stats"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "fpviz",
		Short:   "Audio fingerprint visualizer",
		Long:    "Plot audio fingerprint dumps in the terminal or as PNG, with synchronized playback of the analysed audio.",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			show.Cmd(),
			play.Cmd(),
			stats.Cmd(),
			config.Cmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuildInfo := debug.ReadBuildInfo()
	if !hasBuildInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
