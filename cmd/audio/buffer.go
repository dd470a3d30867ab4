package audio

// Buffer holds decoded interleaved samples in their native type. Exactly one
// of the typed slices is populated. A Buffer is read-only once built and may
// be shared between sequential playbacks.
type Buffer struct {
	Format   SampleFormat
	Channels int

	i16 []int16
	i32 []int32
	f32 []float32
	f64 []float64
}

func NewInt16Buffer(data []int16, channels int) *Buffer {
	return &Buffer{Format: Int16, Channels: max(channels, 1), i16: trimFrames(data, channels)}
}

func NewInt32Buffer(data []int32, channels int) *Buffer {
	return &Buffer{Format: Int32, Channels: max(channels, 1), i32: trimFrames(data, channels)}
}

func NewFloat32Buffer(data []float32, channels int) *Buffer {
	return &Buffer{Format: Float32, Channels: max(channels, 1), f32: trimFrames(data, channels)}
}

func NewFloat64Buffer(data []float64, channels int) *Buffer {
	return &Buffer{Format: Float64, Channels: max(channels, 1), f64: trimFrames(data, channels)}
}

// trimFrames drops a trailing partial frame.
func trimFrames[T any](data []T, channels int) []T {
	if channels <= 1 {
		return data
	}
	return data[:len(data)-len(data)%channels]
}

// Len returns the total number of samples across all channels.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	switch b.Format {
	case Int16:
		return len(b.i16)
	case Int32:
		return len(b.i32)
	case Float32:
		return len(b.f32)
	case Float64:
		return len(b.f64)
	}
	return 0
}

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return b.Len() / b.Channels
}

// Int16s returns the raw samples of an int16 buffer, or nil.
func (b *Buffer) Int16s() []int16 { return b.i16 }

// Int32s returns the raw samples of an int32 buffer, or nil.
func (b *Buffer) Int32s() []int32 { return b.i32 }

// Float32s returns the raw samples of a float32 buffer, or nil.
func (b *Buffer) Float32s() []float32 { return b.f32 }

// Float64s returns the raw samples of a float64 buffer, or nil.
func (b *Buffer) Float64s() []float64 { return b.f64 }

// sample returns sample i (interleaved index) scaled to float32.
// Integer formats are divided by 2^(bits-1).
func (b *Buffer) sample(i int) float32 {
	switch b.Format {
	case Int16:
		return float32(b.i16[i]) / 32768
	case Int32:
		return float32(float64(b.i32[i]) / 2147483648)
	case Float32:
		return b.f32[i]
	case Float64:
		return float32(b.f64[i])
	}
	return 0
}

// clipThreshold marks samples that can only come from a misdetected format.
const clipThreshold = 10

// Block converts frames [start, start+n) into interleaved float32 samples for
// a device with outChannels channels. Mono data is replicated across every
// output channel. Multi-channel data keeps its first outChannels channels and
// pads missing ones with silence. If any converted sample has a magnitude
// above clipThreshold, the whole block is clipped to [-1, 1].
func (b *Buffer) Block(start, n, outChannels int) []float32 {
	frames := b.Frames()
	if start < 0 {
		start = 0
	}
	if start >= frames || n <= 0 || outChannels <= 0 {
		return nil
	}
	n = min(n, frames-start)

	out := make([]float32, n*outChannels)
	outOfRange := false
	for f := 0; f < n; f++ {
		base := (start + f) * b.Channels
		for c := 0; c < outChannels; c++ {
			var v float32
			switch {
			case b.Channels == 1:
				v = b.sample(base)
			case c < b.Channels:
				v = b.sample(base + c)
			}
			if v > clipThreshold || v < -clipThreshold {
				outOfRange = true
			}
			out[f*outChannels+c] = v
		}
	}

	if outOfRange {
		for i, v := range out {
			out[i] = max(-1, min(1, v))
		}
	}
	return out
}
