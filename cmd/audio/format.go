package audio

import (
	"fmt"
	"strings"
)

// SampleFormat is the encoding of a single sample in a raw PCM file.
type SampleFormat string

const (
	Int16   SampleFormat = "int16"
	Int32   SampleFormat = "int32"
	Float32 SampleFormat = "float32"
	Float64 SampleFormat = "float64"
)

// Bytes returns the width of one sample in bytes.
func (f SampleFormat) Bytes() int {
	switch f {
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// ParseSampleFormat parses a sample format name. Only the formats that may
// appear in a headerless .pcm file are accepted.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch SampleFormat(strings.ToLower(strings.TrimSpace(s))) {
	case Int16:
		return Int16, nil
	case Int32:
		return Int32, nil
	case Float32:
		return Float32, nil
	}
	return "", fmt.Errorf("unsupported pcm format %q (want int16, int32 or float32)", s)
}

// PCMFormat describes how to interpret a headerless PCM file.
type PCMFormat struct {
	SampleRate int
	Channels   int
	Format     SampleFormat
}

// DefaultPCMFormat is 44.1 kHz mono int16.
func DefaultPCMFormat() PCMFormat {
	return PCMFormat{SampleRate: 44100, Channels: 1, Format: Int16}
}

func (f PCMFormat) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", f.Channels)
	}
	if f.Format.Bytes() == 0 {
		return fmt.Errorf("unknown sample format %q", f.Format)
	}
	return nil
}

func (f PCMFormat) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %s", f.SampleRate, f.Channels, f.Format)
}
