package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/cmder"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
)

var ErrUnsupportedContainer = errors.New("unsupported audio container")

// wavFormatFloat is the WAVE_FORMAT_IEEE_FLOAT format tag.
const wavFormatFloat = 3

// decodeTimeout bounds each external decoder invocation.
const decodeTimeout = 60 * time.Second

// runExternal runs an external program and returns its stdout.
var runExternal = func(ctx context.Context, args ...string) (string, error) {
	result := cmder.New(args...).
		WithAttemptTimeout(decodeTimeout).
		Run(ctx)
	if result.Err != nil {
		return "", result.Err
	}
	return result.StdOut, nil
}

// DecodeFile decodes a container audio file and returns its samples and
// native sample rate.
func DecodeFile(ctx context.Context, path string) (*Buffer, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return decodeWAV(path)
	case ".mp3":
		return decodeMP3(path)
	default:
		return decodeFFmpeg(ctx, path)
	}
}

func decodeWAV(path string) (*Buffer, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid wav file", path)
	}
	if dec.WavAudioFormat == wavFormatFloat {
		return decodeFloatWAV(dec, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	channels := int(dec.NumChans)
	rate := int(dec.SampleRate)
	if buf.Format != nil {
		channels = buf.Format.NumChannels
		rate = buf.Format.SampleRate
	}

	switch depth := int(dec.BitDepth); {
	case depth == 8:
		// 8-bit wav is unsigned
		samples := make([]int16, len(buf.Data))
		for i, v := range buf.Data {
			samples[i] = int16((v - 128) << 8)
		}
		return NewInt16Buffer(samples, channels), rate, nil
	case depth <= 16:
		samples := make([]int16, len(buf.Data))
		for i, v := range buf.Data {
			samples[i] = int16(v)
		}
		return NewInt16Buffer(samples, channels), rate, nil
	case depth <= 32:
		shift := 32 - depth
		samples := make([]int32, len(buf.Data))
		for i, v := range buf.Data {
			samples[i] = int32(v) << shift
		}
		return NewInt32Buffer(samples, channels), rate, nil
	default:
		return nil, 0, fmt.Errorf("%s: unsupported bit depth %d", path, depth)
	}
}

// decodeFloatWAV reads the data chunk of an IEEE float wav as raw little
// endian samples. The wav decoder only hands out integer buffers.
func decodeFloatWAV(dec *wav.Decoder, path string) (*Buffer, int, error) {
	format := PCMFormat{SampleRate: int(dec.SampleRate), Channels: int(dec.NumChans)}
	switch dec.BitDepth {
	case 32:
		format.Format = Float32
	case 64:
		format.Format = Float64
	default:
		return nil, 0, fmt.Errorf("%s: unsupported float bit depth %d", path, dec.BitDepth)
	}

	if !dec.WasPCMAccessed() {
		if err := dec.FwdToPCM(); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
	}
	data := make([]byte, dec.PCMSize)
	n, err := io.ReadFull(dec.PCMChunk, data)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	buf, err := DecodePCM(data[:n], format)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return buf, format.SampleRate, nil
}

func decodeMP3(path string) (*Buffer, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	defer streamer.Close()

	channels := max(format.NumChannels, 1)
	samples, err := drain(streamer, channels)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return NewFloat64Buffer(samples, channels), int(format.SampleRate), nil
}

// drain reads a streamer to the end as interleaved float64 samples.
func drain(s beep.Streamer, channels int) ([]float64, error) {
	var out []float64
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			out = append(out, frame[0])
			if channels > 1 {
				out = append(out, frame[1])
			}
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}

// decodeFFmpeg hands anything else to ffmpeg, asking for s16le at the file's
// native rate and channel count.
func decodeFFmpeg(ctx context.Context, path string) (*Buffer, int, error) {
	probe, err := runExternal(ctx, "ffprobe", "-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels",
		"-of", "csv=p=0", path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w %q: %v", ErrUnsupportedContainer, filepath.Ext(path), err)
	}
	rate, channels, err := parseProbe(probe)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	raw, err := runExternal(ctx, "ffmpeg", "-v", "error", "-nostdin",
		"-i", path,
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(rate), "-ac", strconv.Itoa(channels),
		"-")
	if err != nil {
		return nil, 0, fmt.Errorf("ffmpeg %s: %w", path, err)
	}

	buf, err := DecodePCM([]byte(raw), PCMFormat{SampleRate: rate, Channels: channels, Format: Int16})
	if err != nil {
		return nil, 0, err
	}
	return buf, rate, nil
}

// parseProbe parses ffprobe's "rate,channels" line.
func parseProbe(out string) (int, int, error) {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(out), "\n", 2)[0])
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected ffprobe output %q", line)
	}
	rate, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || rate <= 0 {
		return 0, 0, fmt.Errorf("bad sample rate in ffprobe output %q", line)
	}
	channels, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || channels <= 0 {
		return 0, 0, fmt.Errorf("bad channel count in ffprobe output %q", line)
	}
	return rate, channels, nil
}
