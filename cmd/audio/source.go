package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrAudioUnavailable = errors.New("audio support unavailable in this build")
	ErrNoPath           = errors.New("no audio path given")
)

// audioSupported gates every load and play. Tests override it so the engine
// can run against fake devices in builds without a sound backend.
var audioSupported = AudioAvailable

// Source is a decoded audio file. It is immutable once loaded; a failed load
// leaves it without samples and every playback operation on it is a no-op.
type Source struct {
	path   string
	format PCMFormat
	log    *slog.Logger

	buf        *Buffer
	sampleRate int
	err        error
}

// NewSource prepares a source for path. format governs headerless .pcm files
// and the raw fallback only.
func NewSource(path string, format PCMFormat) *Source {
	return &Source{
		path:   path,
		format: format,
		log:    slog.Default().With("audio", filepath.Base(path)),
	}
}

// LoadSource creates and loads a source in one step. The returned source is
// never nil; check Loaded.
func LoadSource(path string, format PCMFormat) *Source {
	s := NewSource(path, format)
	s.Load()
	return s
}

// NewBufferSource wraps an already decoded buffer.
func NewBufferSource(name string, buf *Buffer, sampleRate int) *Source {
	return &Source{
		path:       name,
		format:     PCMFormat{SampleRate: sampleRate, Channels: buf.Channels, Format: buf.Format},
		log:        slog.Default().With("audio", name),
		buf:        buf,
		sampleRate: sampleRate,
	}
}

// Load decodes the file. It never panics or returns an error; the outcome is
// reported as a bool and the cause is kept in Err.
func (s *Source) Load() bool {
	s.buf, s.sampleRate, s.err = nil, 0, nil

	if err := s.load(); err != nil {
		s.err = err
		s.log.Warn("audio load failed", "path", s.path, "error", err)
		return false
	}
	s.log.Info("audio loaded", "path", s.path, "rate", s.sampleRate,
		"channels", s.buf.Channels, "format", s.buf.Format,
		"duration", fmt.Sprintf("%.2fs", s.Duration()))
	return true
}

func (s *Source) load() error {
	if !audioSupported {
		return ErrAudioUnavailable
	}
	if s.path == "" {
		return ErrNoPath
	}
	if _, err := os.Stat(s.path); err != nil {
		return err
	}

	var (
		buf  *Buffer
		rate int
		err  error
	)
	if strings.EqualFold(filepath.Ext(s.path), ".pcm") {
		buf, err = ReadPCMFile(s.path, s.format)
		rate = s.format.SampleRate
	} else {
		buf, rate, err = DecodeFile(context.Background(), s.path)
	}

	if err != nil {
		s.log.Info("decode failed, reading as raw int16 pcm", "path", s.path, "error", err)
		fallback := PCMFormat{SampleRate: s.format.SampleRate, Channels: 1, Format: Int16}
		if fallback.SampleRate <= 0 {
			fallback.SampleRate = DefaultPCMFormat().SampleRate
		}
		buf, err = ReadPCMFile(s.path, fallback)
		if err != nil {
			return fmt.Errorf("raw pcm fallback: %w", err)
		}
		rate = fallback.SampleRate
	}
	if rate <= 0 {
		return fmt.Errorf("invalid sample rate %d", rate)
	}

	s.buf, s.sampleRate = buf, rate
	return nil
}

func (s *Source) Path() string { return s.path }

func (s *Source) Loaded() bool { return s != nil && s.buf != nil }

func (s *Source) Err() error { return s.err }

func (s *Source) Buffer() *Buffer { return s.buf }

func (s *Source) SampleRate() int { return s.sampleRate }

// Channels is the configured channel count used when mono data feeds a device.
func (s *Source) Channels() int { return max(s.format.Channels, 1) }

// Duration is frames / sample rate, or 0 if nothing is loaded.
func (s *Source) Duration() float64 {
	if !s.Loaded() || s.sampleRate <= 0 {
		return 0
	}
	return float64(s.buf.Frames()) / float64(s.sampleRate)
}
