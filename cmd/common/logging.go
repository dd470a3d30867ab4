package common

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// SetupLogging configures slog to write to ~/.fpviz/fpviz.log, and also to
// stderr unless the command owns the terminal (TUI mode). It returns a
// function that closes the log file.
func SetupLogging(verbose, interactive bool) func() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var writers []io.Writer
	if !interactive {
		writers = append(writers, os.Stderr)
	}

	closeFn := func() {}
	if logPath := LogPath(); logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
			logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err == nil {
				writers = append(writers, logFile)
				closeFn = func() { _ = logFile.Close() }
			}
		}
	}

	var w io.Writer = io.Discard
	if len(writers) > 0 {
		w = io.MultiWriter(writers...)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return closeFn
}
