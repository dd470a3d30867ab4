package display

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Width returns the display width of s in terminal cells, ignoring ANSI codes.
func Width(s string) int {
	return lipgloss.Width(s)
}

// Truncate cuts s to maxWidth cells, ending with "…" if anything was cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}

	result := make([]rune, 0, len(s))
	width := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > maxWidth-1 {
			break
		}
		result = append(result, r)
		width += rw
	}
	return string(result) + "…"
}

// ShortenPath keeps the file name visible and drops leading directories.
func ShortenPath(path string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	path = filepath.ToSlash(path)
	if lipgloss.Width(path) <= maxWidth {
		return path
	}

	name := filepath.Base(path)
	if lipgloss.Width(name)+2 <= maxWidth {
		return "…/" + name
	}
	return Truncate(name, maxWidth)
}

// PadRight pads or truncates s to exactly width cells.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// PadCenter centers s within width cells.
func PadCenter(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w >= width {
		return Truncate(s, width)
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
