//go:build (linux && cgo) || windows || darwin

package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// The speaker can only be initialized once per process, so every stream is
// mixed into it at a fixed rate and resampled if needed.
const mixerRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(mixerRate, mixerRate.N(time.Second/10))
	})
	return speakerErr
}

// DefaultDevice returns the system speaker.
func DefaultDevice() Device {
	return speakerDevice{}
}

type speakerDevice struct{}

var errStreamClosed = errors.New("stream closed")

func (speakerDevice) Open(sampleRate, channels int) (OutputStream, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid stream format %d Hz, %d ch", sampleRate, channels)
	}
	if err := initSpeaker(); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}

	q := &blockQueue{
		channels: channels,
		rate:     beep.SampleRate(sampleRate),
		blocks:   make(chan [][2]float64, 2),
		done:     make(chan struct{}),
	}

	var s beep.Streamer = q
	if q.rate != mixerRate {
		s = beep.Resample(4, q.rate, mixerRate, q)
	}
	speaker.Play(s)
	return q, nil
}

// blockQueue bridges blocking writes from the playback goroutine to the
// speaker's pull-based mixer. Stream never blocks; it plays silence on
// underrun and ends once the queue is closed.
type blockQueue struct {
	channels int
	rate     beep.SampleRate

	blocks  chan [][2]float64
	done    chan struct{}
	closed  atomic.Bool
	pending atomic.Int64 // frames written but not yet streamed

	// touched only from Stream, under the speaker lock
	current [][2]float64
}

func (q *blockQueue) Write(samples []float32) error {
	if q.closed.Load() {
		return errStreamClosed
	}
	frames := len(samples) / q.channels
	block := make([][2]float64, frames)
	for i := range block {
		base := i * q.channels
		left := float64(samples[base])
		right := left
		if q.channels > 1 {
			right = float64(samples[base+1])
		}
		block[i] = [2]float64{left, right}
	}

	q.pending.Add(int64(frames))
	select {
	case q.blocks <- block:
		return nil
	case <-q.done:
		q.pending.Add(-int64(frames))
		return errStreamClosed
	}
}

func (q *blockQueue) Stream(samples [][2]float64) (int, bool) {
	if q.closed.Load() {
		return 0, false
	}
	for i := range samples {
		if len(q.current) == 0 {
			select {
			case q.current = <-q.blocks:
			default:
			}
		}
		if len(q.current) == 0 {
			samples[i] = [2]float64{}
			continue
		}
		samples[i] = q.current[0]
		q.current = q.current[1:]
		q.pending.Add(-1)
	}
	return len(samples), true
}

func (q *blockQueue) Err() error { return nil }

// Drain waits until everything written so far has been handed to the mixer.
func (q *blockQueue) Drain() {
	deadline := time.Now().Add(q.rate.D(int(max(q.pending.Load(), 0))) + time.Second)
	for q.pending.Load() > 0 && !q.closed.Load() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

// Close drops queued audio; the mixer removes the stream on its next pull.
func (q *blockQueue) Close() error {
	if q.closed.CompareAndSwap(false, true) {
		close(q.done)
	}
	return nil
}
