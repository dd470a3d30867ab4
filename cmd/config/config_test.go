package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gigurra/fpviz/cmd/audio"
)

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	f, err := cfg.PCMFormat()
	if err != nil {
		t.Fatalf("PCMFormat failed: %v", err)
	}
	if f != audio.DefaultPCMFormat() {
		t.Errorf("PCMFormat = %+v, want %+v", f, audio.DefaultPCMFormat())
	}
	if cfg.RefreshInterval() != 33*time.Millisecond {
		t.Errorf("RefreshInterval = %v, want 33ms", cfg.RefreshInterval())
	}
}

func TestLoadFrom_PartialSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"pcm": {"sample_rate": 16000, "format": "float32"}, "playback": {"refresh": "high"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	f, _ := cfg.PCMFormat()
	want := audio.PCMFormat{SampleRate: 16000, Channels: 1, Format: audio.Float32}
	if f != want {
		t.Errorf("PCMFormat = %+v, want %+v", f, want)
	}
	if cfg.RefreshInterval() != 16*time.Millisecond {
		t.Errorf("RefreshInterval = %v, want 16ms", cfg.RefreshInterval())
	}
	if cfg.Playback.BlockMillis != 100 || cfg.Playback.YieldMillis != 0 {
		t.Errorf("playback defaults = %+v", cfg.Playback)
	}
	if cfg.Plot.MaxFrequency != 5000 {
		t.Errorf("MaxFrequency = %v, want 5000", cfg.Plot.MaxFrequency)
	}

	opts := cfg.EngineOptions(audio.RoleQuery)
	if opts.Role != audio.RoleQuery || opts.BlockDuration != 100*time.Millisecond {
		t.Errorf("EngineOptions = %+v", opts)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad json", `{`},
		{"bad format", `{"pcm": {"format": "int8"}}`},
		{"negative channels", `{"pcm": {"channels": -2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Errorf("LoadFrom(%s) succeeded, want error", tt.content)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Plot.MaxFrequency != 5000 {
		t.Errorf("MaxFrequency = %v, want 5000", cfg.Plot.MaxFrequency)
	}

	if err := Init(false); err == nil {
		t.Error("second Init without force succeeded")
	}
	if err := Init(true); err != nil {
		t.Errorf("Init with force failed: %v", err)
	}
}
