package show

import (
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/fingerprint"
)

// watchFileCmd waits for the dump at path to be rewritten and returns the
// freshly parsed data. The directory is watched rather than the file since
// most writers replace the file instead of writing in place.
func watchFileCmd(role audio.Role, path string) tea.Cmd {
	return func() tea.Msg {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Warn("file watch unavailable", "path", path, "error", err)
			return nil
		}
		defer watcher.Close()

		abs, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			slog.Warn("file watch unavailable", "path", path, "error", err)
			return nil
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Partially written files fail to parse, wait for the next event.
				data, err := fingerprint.Load(abs)
				if err != nil {
					slog.Debug("ignoring incomplete fingerprint file", "path", abs, "error", err)
					continue
				}
				return reloadMsg{role: role, path: path, data: data}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				slog.Warn("file watch failed", "path", path, "error", err)
				return nil
			}
		}
	}
}
