// ABOUTME: Oto-based ring buffer output device
// ABOUTME: An oto player pulls PCM from the ring buffer through an io.Reader
package output

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/ringplay/pkg/audio/encode"
	"github.com/ebitengine/oto/v3"
)

const (
	otoFrameBytes = OutputChannels * OutputBitsPerSample / 8
	otoBufferSize = 20 * time.Millisecond
)

// oto allows a single context per process
var (
	otoShared     *oto.Context
	otoSharedRate int
	otoSharedMu   sync.Mutex
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoSharedMu.Lock()
	defer otoSharedMu.Unlock()

	if otoShared != nil {
		if otoSharedRate != sampleRate {
			return nil, fmt.Errorf("%w: oto context already running at %dHz, cannot reopen at %dHz",
				ErrUnsupportedConfig, otoSharedRate, sampleRate)
		}
		if err := otoShared.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
		return otoShared, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: OutputChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   otoBufferSize,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoShared = ctx
	otoSharedRate = sampleRate
	return ctx, nil
}

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	ringBuffer *RingBuffer
	reader     *ringReader
	started    bool
	mu         sync.Mutex
}

// NewOto creates a new Oto output
func NewOto() Device {
	return &Oto{}
}

// Open initializes the oto context and a player bound to the ring buffer
func (o *Oto) Open(cfg Config) (int, error) {
	capacity, err := cfg.Validate()
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return 0, ErrAlreadyOpen
	}

	ctx, err := sharedOtoContext(cfg.SampleRate)
	if err != nil {
		return 0, err
	}

	o.otoCtx = ctx
	o.ringBuffer = NewRingBuffer(capacity, cfg.Channels)
	o.reader = &ringReader{}
	o.reader.ring.Store(o.ringBuffer)
	o.player = ctx.NewPlayer(o.reader)
	o.player.SetBufferSize(int(otoBufferSize.Seconds()*float64(cfg.SampleRate)) * otoFrameBytes)

	log.Printf("Audio output initialized: %dHz, %d channels, %d frame ring (oto)",
		cfg.SampleRate, cfg.Channels, capacity)

	return capacity, nil
}

// ringReader adapts the ring buffer to the io.Reader oto pulls from.
// oto calls Read from Play and from its own goroutine, so it must not take Oto.mu.
type ringReader struct {
	ring    atomic.Pointer[RingBuffer]
	samples []int16
}

// Read always returns whole frames, silence when the ring runs dry
func (r *ringReader) Read(p []byte) (int, error) {
	frames := len(p) / otoFrameBytes
	if frames == 0 {
		return 0, nil
	}

	rb := r.ring.Load()

	total := frames * OutputChannels
	if cap(r.samples) < total {
		r.samples = make([]int16, total)
	}
	samples := r.samples[:total]

	if rb != nil {
		rb.Read(samples)
	} else {
		for i := range samples {
			samples[i] = 0
		}
	}
	encode.PutPCM16(p, samples)
	return frames * otoFrameBytes, nil
}

func (o *Oto) ring() (*RingBuffer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ringBuffer == nil {
		return nil, ErrNotOpen
	}
	return o.ringBuffer, nil
}

// Padding counts ring frames plus frames oto has already pulled but not played
func (o *Oto) Padding() (int, error) {
	rb, err := o.ring()
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	buffered := 0
	if o.player != nil {
		buffered = o.player.BufferedSize() / otoFrameBytes
	}
	o.mu.Unlock()

	return rb.Padding() + buffered, nil
}

// Acquire opens a write window
func (o *Oto) Acquire(frames int) (*Window, error) {
	rb, err := o.ring()
	if err != nil {
		return nil, err
	}
	return rb.Acquire(frames)
}

// Commit publishes a window to the player
func (o *Oto) Commit(w *Window) error {
	rb, err := o.ring()
	if err != nil {
		return err
	}
	return rb.Commit(w)
}

// Start begins playback
func (o *Oto) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return ErrNotOpen
	}
	if !o.started {
		o.player.Play()
		o.started = true
	}
	return nil
}

// Stop pauses playback
func (o *Oto) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil && o.started {
		o.player.Pause()
		o.started = false
	}
	return nil
}

// Close releases the player and suspends the shared context
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		if err := o.player.Close(); err != nil {
			log.Printf("Warning: oto player close error: %v", err)
		}
		o.player = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			log.Printf("Warning: oto context suspend error: %v", err)
		}
		o.otoCtx = nil
	}
	if o.reader != nil {
		o.reader.ring.Store(nil)
		o.reader = nil
	}
	o.ringBuffer = nil
	o.started = false
	return nil
}

// Stats returns ring buffer counters, zero when closed
func (o *Oto) Stats() RingStats {
	o.mu.Lock()
	rb := o.ringBuffer
	o.mu.Unlock()

	if rb == nil {
		return RingStats{}
	}
	return rb.Stats()
}
