// Package config provides configuration loading for fpviz.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gigurra/fpviz/cmd/audio"
	"github.com/gigurra/fpviz/cmd/common"
)

// Refresh presets for the plot refresh timer.
const (
	RefreshStandard = "standard" // ~30 fps
	RefreshHigh     = "high"     // ~60 fps
)

// Config represents the fpviz configuration file structure.
type Config struct {
	PCM      *PCMConfig      `json:"pcm,omitempty"`
	Playback *PlaybackConfig `json:"playback,omitempty"`
	Plot     *PlotConfig     `json:"plot,omitempty"`
}

// PCMConfig describes headerless .pcm files.
type PCMConfig struct {
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Format     string `json:"format"`
}

// PlaybackConfig tunes the streaming loop and the UI poll.
type PlaybackConfig struct {
	BlockMillis int    `json:"block_ms,omitempty"`
	YieldMillis int    `json:"yield_ms,omitempty"`
	Refresh     string `json:"refresh,omitempty"`
}

// PlotConfig holds display settings.
type PlotConfig struct {
	MaxFrequency float64 `json:"max_frequency,omitempty"`
	HoverRadius  int     `json:"hover_radius,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PCM: &PCMConfig{
			SampleRate: 44100,
			Channels:   1,
			Format:     string(audio.Int16),
		},
		Playback: &PlaybackConfig{
			BlockMillis: 100,
			YieldMillis: 5,
			Refresh:     RefreshStandard,
		},
		Plot: &PlotConfig{
			MaxFrequency: 5000,
			HoverRadius:  1,
		},
	}
}

// ConfigDir returns the fpviz config directory (~/.fpviz).
func ConfigDir() string {
	return common.StateDir()
}

// ConfigPath returns the path to the config file (~/.fpviz/config.json).
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads the config from ~/.fpviz/config.json.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the config from path, filling in defaults for anything
// missing.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	config.applyDefaults()

	if _, err := config.PCMFormat(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.PCM == nil {
		c.PCM = def.PCM
	} else {
		if c.PCM.SampleRate == 0 {
			c.PCM.SampleRate = def.PCM.SampleRate
		}
		if c.PCM.Channels == 0 {
			c.PCM.Channels = def.PCM.Channels
		}
		if c.PCM.Format == "" {
			c.PCM.Format = def.PCM.Format
		}
	}

	if c.Playback == nil {
		c.Playback = def.Playback
	} else {
		if c.Playback.BlockMillis <= 0 {
			c.Playback.BlockMillis = def.Playback.BlockMillis
		}
		if c.Playback.YieldMillis < 0 {
			c.Playback.YieldMillis = 0
		}
		if c.Playback.Refresh == "" {
			c.Playback.Refresh = def.Playback.Refresh
		}
	}

	if c.Plot == nil {
		c.Plot = def.Plot
	} else {
		if c.Plot.MaxFrequency <= 0 {
			c.Plot.MaxFrequency = def.Plot.MaxFrequency
		}
		if c.Plot.HoverRadius <= 0 {
			c.Plot.HoverRadius = def.Plot.HoverRadius
		}
	}
}

// Save saves the config to ~/.fpviz/config.json.
func Save(config *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}

// PCMFormat returns the configured headerless PCM format.
func (c *Config) PCMFormat() (audio.PCMFormat, error) {
	format, err := audio.ParseSampleFormat(c.PCM.Format)
	if err != nil {
		return audio.PCMFormat{}, err
	}
	f := audio.PCMFormat{SampleRate: c.PCM.SampleRate, Channels: c.PCM.Channels, Format: format}
	return f, f.Validate()
}

// RefreshInterval returns the UI poll interval for the configured preset.
// Unknown presets fall back to the standard rate.
func (c *Config) RefreshInterval() time.Duration {
	return RefreshInterval(c.Playback.Refresh)
}

// RefreshInterval maps a preset name to its interval.
func RefreshInterval(preset string) time.Duration {
	if preset == RefreshHigh {
		return 16 * time.Millisecond
	}
	return 33 * time.Millisecond
}

// EngineOptions returns playback tuning for an engine with role r.
func (c *Config) EngineOptions(r audio.Role) audio.Options {
	return audio.Options{
		Role:          r,
		BlockDuration: time.Duration(c.Playback.BlockMillis) * time.Millisecond,
		Yield:         time.Duration(c.Playback.YieldMillis) * time.Millisecond,
	}
}
