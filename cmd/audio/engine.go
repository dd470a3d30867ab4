package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gigurra/fpviz/cmd/display"
)

const (
	DefaultBlockDuration = 100 * time.Millisecond
	DefaultYield         = 5 * time.Millisecond

	// errorStatusLen is how much of an error message fits in the status field.
	errorStatusLen = 10
)

// Options configure an Engine. Zero values fall back to defaults.
type Options struct {
	Role          Role
	Device        Device
	BlockDuration time.Duration
	Yield         time.Duration
	Logger        *slog.Logger
}

// Frame is the display-ready snapshot handed to the UI by UpdateUI.
type Frame struct {
	Time      float64
	Clock     string // MM:SS
	Label     string // e.g. "Source: 01:05"
	PlayLabel string // "Play Source" or "Pause Source"
	Reset     bool   // playback completed since the last poll
	State     State
	Status    string
}

// Engine plays one Source. At most one streaming goroutine is active per
// engine; it is cancelled cooperatively through the state, which it polls
// once per block.
type Engine struct {
	src  *Source
	opts Options
	log  *slog.Logger

	// mu serializes state transitions. Reads of the atomics below never take it.
	mu         sync.Mutex
	status     string
	state      atomic.Int32
	generation atomic.Uint64

	currentTime   atomic.Uint64 // float64 bits
	startSample   atomic.Int64
	updatePending atomic.Bool
	finished      atomic.Bool

	wg sync.WaitGroup
}

// NewEngine creates an idle engine for src. src may be nil or unloaded, in
// which case every operation is a logged no-op.
func NewEngine(src *Source, opts Options) *Engine {
	if opts.Device == nil {
		opts.Device = DefaultDevice()
	}
	if opts.BlockDuration <= 0 {
		opts.BlockDuration = DefaultBlockDuration
	}
	if opts.Yield < 0 {
		opts.Yield = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		src:  src,
		opts: opts,
		log:  logger.With("player", opts.Role.String()),
	}
	e.state.Store(int32(StateIdle))
	if src.Loaded() {
		e.status = "Ready"
	} else {
		e.status = "No audio"
	}
	return e
}

// Play starts streaming from startTime seconds. A start beyond the end of the
// audio (or before its start) plays from the beginning. Calling Play while
// already playing is a no-op.
func (e *Engine) Play(startTime float64) {
	if !audioSupported {
		e.log.Warn("play ignored: audio unavailable")
		return
	}
	if !e.src.Loaded() {
		e.log.Warn("play ignored: no audio loaded")
		return
	}

	rate := float64(e.src.SampleRate())
	frames := e.src.Buffer().Frames()
	start := int64(math.Floor(startTime * rate))
	if math.IsNaN(startTime) || start < 0 || start >= int64(frames) {
		start = 0
		startTime = 0
	}

	e.mu.Lock()
	if e.State() == StatePlaying {
		e.mu.Unlock()
		e.log.Warn("play ignored: already playing")
		return
	}
	e.finished.Store(false)
	e.startSample.Store(start)
	e.setTime(startTime)
	e.state.Store(int32(StatePlaying))
	gen := e.generation.Add(1)
	e.status = "Playing"
	e.wg.Add(1)
	e.mu.Unlock()

	e.log.Debug("play", "start", startTime, "sample", start)
	go e.stream(gen, int(start))
}

// Stop requests the streaming goroutine to halt. It does not wait; the
// goroutine observes the request within one block.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.State() == StatePlaying {
		e.state.Store(int32(StateStopped))
		e.status = "Stopped"
	}
	e.finished.Store(false)
	e.mu.Unlock()
}

// Seek moves the playback position. If the engine was playing it restarts
// streaming from t.
func (e *Engine) Seek(t float64) {
	if !e.src.Loaded() {
		e.log.Warn("seek ignored: no audio loaded")
		return
	}
	if math.IsNaN(t) || t < 0 {
		t = 0
	}

	wasPlaying := e.Playing()
	e.Stop()
	e.setTime(t)
	e.startSample.Store(int64(math.Floor(t * float64(e.src.SampleRate()))))
	e.finished.Store(false)
	e.updatePending.Store(true)
	if wasPlaying {
		e.Play(t)
	}
}

// Restart plays from the beginning regardless of the current position.
func (e *Engine) Restart() {
	e.Stop()
	e.Seek(0)
	e.Play(0)
}

// Toggle is the play button action: pause if playing, start over if the
// position is at the end, otherwise play from the current position.
func (e *Engine) Toggle() {
	switch {
	case e.Playing():
		e.Stop()
	case e.CurrentTime() >= e.Duration()-0.1:
		e.Restart()
	default:
		e.Play(e.CurrentTime())
	}
}

// UpdateUI is polled by the host on its refresh timer. It returns false
// unless progress was published since the last call. The Reset signal is
// delivered exactly once per completed playback.
func (e *Engine) UpdateUI() (Frame, bool) {
	if !e.updatePending.Swap(false) {
		return Frame{}, false
	}

	f := e.Snapshot()
	f.Reset = e.finished.CompareAndSwap(true, false)
	if f.Reset {
		f.PlayLabel = "Play " + e.opts.Role.String()
	}
	return f, true
}

// Snapshot returns the current display values without consuming any flags.
func (e *Engine) Snapshot() Frame {
	t := e.CurrentTime()
	clock := display.Clock(t)
	state := e.State()

	playLabel := "Play " + e.opts.Role.String()
	if state == StatePlaying {
		playLabel = "Pause " + e.opts.Role.String()
	}

	return Frame{
		Time:      t,
		Clock:     clock,
		Label:     e.opts.Role.String() + ": " + clock,
		PlayLabel: playLabel,
		State:     state,
		Status:    e.Status(),
	}
}

// Close stops playback and waits for the streaming goroutine to exit.
func (e *Engine) Close() {
	e.Stop()
	e.wg.Wait()
}

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) Playing() bool { return e.State() == StatePlaying }

func (e *Engine) Role() Role { return e.opts.Role }

func (e *Engine) Source() *Source { return e.src }

func (e *Engine) Loaded() bool { return e.src.Loaded() }

func (e *Engine) Duration() float64 { return e.src.Duration() }

func (e *Engine) CurrentTime() float64 {
	return math.Float64frombits(e.currentTime.Load())
}

// StartSample is the sample offset of the most recent play or seek.
func (e *Engine) StartSample() int64 { return e.startSample.Load() }

// Finished reports a completion not yet consumed by UpdateUI.
func (e *Engine) Finished() bool { return e.finished.Load() }

func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) setTime(t float64) {
	e.currentTime.Store(math.Float64bits(t))
}

// active reports whether the goroutine of generation gen should keep going.
func (e *Engine) active(gen uint64) bool {
	return e.generation.Load() == gen && e.State() == StatePlaying
}

func (e *Engine) stream(gen uint64, start int) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.fail(gen, fmt.Errorf("playback panic: %v", r))
		}
	}()

	buf := e.src.Buffer()
	frames := buf.Frames()
	if start >= frames {
		e.fail(gen, fmt.Errorf("nothing to play"))
		return
	}

	channels := buf.Channels
	if channels == 1 {
		channels = e.src.Channels()
	}
	rate := e.src.SampleRate()

	out, err := e.opts.Device.Open(rate, channels)
	if err != nil {
		e.fail(gen, err)
		return
	}
	defer func() {
		if err := out.Close(); err != nil {
			e.log.Warn("closing output stream", "error", err)
		}
	}()

	blockSize := max(int(math.Round(float64(rate)*e.opts.BlockDuration.Seconds())), 1)
	for offset := start; offset < frames; offset += blockSize {
		if !e.active(gen) {
			e.log.Debug("playback cancelled", "at", e.CurrentTime())
			return
		}

		block := buf.Block(offset, blockSize, channels)
		if err := out.Write(block); err != nil {
			e.log.Warn("block write failed", "offset", offset, "error", err)
		}

		if !e.publish(gen, float64(offset+len(block)/channels)/float64(rate)) {
			return
		}

		if e.opts.Yield > 0 {
			time.Sleep(e.opts.Yield)
		}
	}

	if !e.active(gen) {
		return
	}
	if d, ok := out.(Drainer); ok {
		d.Drain()
	}
	e.complete(gen)
}

// publish records progress unless a stop, seek or newer play has happened
// since generation gen started.
func (e *Engine) publish(gen uint64, t float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active(gen) {
		return false
	}
	e.setTime(t)
	e.updatePending.Store(true)
	return true
}

func (e *Engine) complete(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation.Load() != gen || e.State() != StatePlaying {
		return
	}
	e.state.Store(int32(StateIdle))
	e.status = "Ready"
	e.finished.Store(true)
	e.updatePending.Store(true)
	e.log.Debug("playback finished")
}

func (e *Engine) fail(gen uint64, err error) {
	e.log.Error("playback failed", "error", err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation.Load() != gen || e.State() != StatePlaying {
		return
	}
	e.state.Store(int32(StateErrored))
	e.status = "Error: " + truncateRunes(err.Error(), errorStatusLen)
	e.finished.Store(false)
	e.updatePending.Store(true)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
