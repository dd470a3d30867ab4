package audio

// Device opens output streams. One stream lives for exactly one playback run.
type Device interface {
	Open(sampleRate, channels int) (OutputStream, error)
}

// OutputStream accepts interleaved float32 blocks. Write may block until the
// device has room for the block.
type OutputStream interface {
	Write(samples []float32) error
	Close() error
}

// Drainer is implemented by streams that can wait for queued audio to finish
// playing before Close.
type Drainer interface {
	Drain()
}
