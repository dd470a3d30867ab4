package common

import (
	"os"
	"path/filepath"
)

// StateDir is where fpviz keeps its log file (~/.fpviz).
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fpviz")
}

// LogPath returns the path to the log file (~/.fpviz/fpviz.log).
func LogPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "fpviz.log")
}
