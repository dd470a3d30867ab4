package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// SpectrogramFFTSize is the analysis window length in samples.
const SpectrogramFFTSize = 1024

// Spectrogram computes a cols x rows magnitude image of the first channel of
// buf, covering 0..maxFreq Hz over 0..maxTime seconds. Row 0 is maxFreq.
// Magnitudes are in dB scaled to 0..1 relative to the loudest bin.
func Spectrogram(buf *Buffer, sampleRate int, maxTime, maxFreq float64, cols, rows int) [][]float64 {
	if buf.Frames() < SpectrogramFFTSize || sampleRate <= 0 || cols <= 0 || rows <= 0 || maxTime <= 0 || maxFreq <= 0 {
		return nil
	}

	out := make([][]float64, rows)
	for y := range out {
		out[y] = make([]float64, cols)
	}

	win := window.Hann(SpectrogramFFTSize)
	frame := make([]float64, SpectrogramFFTSize)
	binHz := float64(sampleRate) / SpectrogramFFTSize
	peak := math.Inf(-1)

	for x := 0; x < cols; x++ {
		t := float64(x) / float64(cols) * maxTime
		start := int(t*float64(sampleRate)) - SpectrogramFFTSize/2
		start = max(0, min(buf.Frames()-SpectrogramFFTSize, start))

		block := buf.Block(start, SpectrogramFFTSize, 1)
		if len(block) < SpectrogramFFTSize {
			continue
		}
		for i, v := range block {
			frame[i] = float64(v) * win[i]
		}
		coeffs := fft.FFTReal(frame)

		for y := 0; y < rows; y++ {
			f := (1 - float64(y)/float64(rows)) * maxFreq
			idx := int(f / binHz)
			if idx <= 0 || idx >= SpectrogramFFTSize/2 {
				out[y][x] = math.Inf(-1)
				continue
			}
			db := 20 * math.Log10(cmplx.Abs(coeffs[idx])+1e-9)
			out[y][x] = db
			peak = max(peak, db)
		}
	}

	// 80 dB of dynamic range below the loudest bin.
	for y := range out {
		for x := range out[y] {
			v := (out[y][x] - (peak - 80)) / 80
			if math.IsNaN(v) {
				v = 0
			}
			out[y][x] = max(0, min(1, v))
		}
	}
	return out
}
