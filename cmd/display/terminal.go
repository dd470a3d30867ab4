package display

import (
	"os"

	"golang.org/x/term"
)

const (
	DefaultTerminalWidth  = 80
	DefaultTerminalHeight = 24
)

// TerminalSize returns the size of the terminal on stdout, or the defaults
// when stdout is not a terminal.
func TerminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return DefaultTerminalWidth, DefaultTerminalHeight
	}
	return w, h
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
