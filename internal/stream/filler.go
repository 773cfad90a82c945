// ABOUTME: Padding-driven control loop that keeps the device ring topped up
// ABOUTME: Each iteration writes exactly enough frames to reach the target padding
package stream

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/ringplay/pkg/audio/output"
)

const (
	// DefaultTargetLatency is the fraction of the ring kept filled
	DefaultTargetLatency = 1.0 / 60.0

	DefaultIdleInterval = 2 * time.Millisecond
)

// TargetPadding is the number of queued frames the filler aims for
func TargetPadding(capacity int, fraction float64) int {
	return int(math.Round(float64(capacity) * fraction))
}

// FramesToWrite is how far padding sits below target. It may be zero or negative.
func FramesToWrite(target, padding int) int {
	return target - padding
}

// FillerConfig tunes the control loop
type FillerConfig struct {
	TargetLatency float64
	IdleInterval  time.Duration
	Volume        *Volume
}

// Result describes one control-loop iteration
type Result struct {
	Padding  int
	Frames   int // window size, 0 when nothing was acquired
	Silence  int // frames of the window zero-filled after the source ended
	Finished bool
}

// Stats tracks filler metrics
type Stats struct {
	Iterations     int64
	IdleIterations int64
	Windows        int64
	FramesWritten  int64
	SilenceFrames  int64
	LastPadding    int
	Capacity       int
	Target         int
}

// Filler moves frames from a source into a device's ring buffer
type Filler struct {
	device   output.Device
	source   FrameSource
	capacity int
	target   int
	idle     time.Duration
	volume   *Volume
	finished atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	stats Stats
}

// NewFiller creates a filler for a device opened with the given ring capacity
func NewFiller(device output.Device, source FrameSource, capacity int, cfg FillerConfig) *Filler {
	if cfg.TargetLatency <= 0 {
		cfg.TargetLatency = DefaultTargetLatency
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = DefaultIdleInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	target := TargetPadding(capacity, cfg.TargetLatency)

	return &Filler{
		device:   device,
		source:   source,
		capacity: capacity,
		target:   target,
		idle:     cfg.IdleInterval,
		volume:   cfg.Volume,
		ctx:      ctx,
		cancel:   cancel,
		stats:    Stats{Capacity: capacity, Target: target},
	}
}

// Target returns the target padding in frames
func (f *Filler) Target() int {
	return f.target
}

// Step runs one iteration: top the ring up to the target padding
func (f *Filler) Step() (Result, error) {
	if f.finished.Load() {
		return Result{Finished: true}, nil
	}

	padding, err := f.device.Padding()
	if err != nil {
		return Result{}, deviceErr("padding", err)
	}

	res := Result{Padding: padding}
	frames := FramesToWrite(f.target, padding)
	if frames <= 0 {
		f.record(res)
		return res, nil
	}

	w, err := f.device.Acquire(frames)
	if err != nil {
		return Result{}, deviceErr("acquire", err)
	}

	multiplier := f.volume.multiplier()
	finished := f.finished.Load()
	for i := 0; i < frames; i++ {
		if !finished {
			left, right, ok := f.source.NextFrame()
			if ok {
				w.SetFrame(i, applyVolume(left, multiplier), applyVolume(right, multiplier))
				continue
			}
			finished = true
			f.finished.Store(true)
		}
		w.SetFrame(i, 0, 0)
		res.Silence++
	}

	if err := f.device.Commit(w); err != nil {
		return Result{}, deviceErr("commit", err)
	}

	res.Frames = frames
	res.Finished = finished
	f.record(res)
	return res, nil
}

func (f *Filler) record(res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stats.Iterations++
	f.stats.LastPadding = res.Padding
	if res.Frames == 0 {
		f.stats.IdleIterations++
		return
	}
	f.stats.Windows++
	f.stats.FramesWritten += int64(res.Frames)
	f.stats.SilenceFrames += int64(res.Silence)
}

// Run steps until ctx is cancelled, Stop is called or the source finishes.
// Stop requests are seen between iterations, never inside a window.
func (f *Filler) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.ctx.Done():
			return nil
		default:
		}

		res, err := f.Step()
		if err != nil {
			return err
		}
		if res.Finished {
			return nil
		}

		// the device never blocks us, so wait a little before polling again
		select {
		case <-ctx.Done():
			return nil
		case <-f.ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends Run at the next iteration boundary
func (f *Filler) Stop() {
	f.cancel()
}

// Finished reports whether the source has run dry; safe to call while Run is active
func (f *Filler) Finished() bool {
	return f.finished.Load()
}

// Stats returns filler statistics
func (f *Filler) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}
