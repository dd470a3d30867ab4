// Package common holds the pieces every fpviz command shares: flag
// enrichment, state directories and logging setup.
package common

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
)

func DefaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// exit is replaced in tests.
var exit = os.Exit

// ExitOnError reports err as "<command>: <err>" and exits with status 1.
// A nil err is a no-op.
func ExitOnError(command string, err error) {
	exitOnError(os.Stderr, command, err)
}

func exitOnError(w io.Writer, command string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s: %v\n", command, err)
	exit(1)
}
