package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/fpviz/cmd/common"
	"github.com/spf13/cobra"
)

func Cmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "config",
		Short: "Inspect or create ~/.fpviz/config.json",
		SubCmds: []*cobra.Command{
			showCmd(),
			initCmd(),
		},
	}.ToCobra()
}

func showCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:         "show",
		Short:       "Print the effective configuration",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *boa.NoParams, cmd *cobra.Command, args []string) {
			cfg, err := Load()
			common.ExitOnError("config", err)
			data, _ := json.MarshalIndent(cfg, "", "  ")
			fmt.Println(string(data))
		},
	}.ToCobra()
}

type InitParams struct {
	Force bool `short:"f" help:"Overwrite an existing config file"`
}

func initCmd() *cobra.Command {
	return boa.CmdT[InitParams]{
		Use:         "init",
		Short:       "Write the default configuration",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *InitParams, cmd *cobra.Command, args []string) {
			common.ExitOnError("config", Init(params.Force))
			fmt.Printf("Wrote %s\n", ConfigPath())
		},
	}.ToCobra()
}

// Init writes the default config unless one exists and force is false.
func Init(force bool) error {
	if _, err := os.Stat(ConfigPath()); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", ConfigPath())
	}
	return Save(DefaultConfig())
}
