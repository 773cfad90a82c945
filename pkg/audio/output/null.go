// ABOUTME: Headless output device driven by a software clock
// ABOUTME: Drains the ring buffer at the configured sample rate without audio hardware
package output

import (
	"context"
	"log"
	"sync"
	"time"
)

const nullTick = 5 * time.Millisecond

// Null consumes the ring buffer in real time and discards (or hands off) the audio
type Null struct {
	ring       *RingBuffer
	sampleRate int
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}

	// OnConsume, if set, receives every block of consumed samples
	OnConsume func(samples []int16)

	carry float64
	block []int16
	mu    sync.Mutex
}

// NewNull creates a headless device
func NewNull() *Null {
	return &Null{}
}

// Open creates the ring buffer
func (n *Null) Open(cfg Config) (int, error) {
	capacity, err := cfg.Validate()
	if err != nil {
		return 0, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ring != nil {
		return 0, ErrAlreadyOpen
	}
	n.ring = NewRingBuffer(capacity, cfg.Channels)
	n.sampleRate = cfg.SampleRate

	log.Printf("Null output opened: %dHz, %d frame ring", cfg.SampleRate, capacity)
	return capacity, nil
}

func (n *Null) ringBuffer() (*RingBuffer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ring == nil {
		return nil, ErrNotOpen
	}
	return n.ring, nil
}

// Padding returns committed, unplayed frames
func (n *Null) Padding() (int, error) {
	rb, err := n.ringBuffer()
	if err != nil {
		return 0, err
	}
	return rb.Padding(), nil
}

// Acquire opens a write window
func (n *Null) Acquire(frames int) (*Window, error) {
	rb, err := n.ringBuffer()
	if err != nil {
		return nil, err
	}
	return rb.Acquire(frames)
}

// Commit publishes a window
func (n *Null) Commit(w *Window) error {
	rb, err := n.ringBuffer()
	if err != nil {
		return err
	}
	return rb.Commit(w)
}

// Start launches the software clock
func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ring == nil {
		return ErrNotOpen
	}
	if n.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.done = make(chan struct{})
	n.running = true
	go n.clock(ctx, n.done)
	return nil
}

func (n *Null) clock(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(nullTick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n.Advance(now.Sub(last))
			last = now
		}
	}
}

// Advance consumes elapsed worth of frames from the ring buffer
func (n *Null) Advance(elapsed time.Duration) int {
	n.mu.Lock()
	rb := n.ring
	if rb == nil {
		n.mu.Unlock()
		return 0
	}

	exact := elapsed.Seconds()*float64(n.sampleRate) + n.carry
	frames := int(exact)
	n.carry = exact - float64(frames)

	onConsume := n.OnConsume
	if onConsume == nil {
		n.mu.Unlock()
		return rb.Discard(frames)
	}

	if cap(n.block) < frames*OutputChannels {
		n.block = make([]int16, frames*OutputChannels)
	}
	block := n.block[:frames*OutputChannels]
	n.mu.Unlock()

	read := rb.Read(block)
	onConsume(block)
	return read
}

// Stop halts the software clock
func (n *Null) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = false
	cancel, done := n.cancel, n.done
	n.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Close stops the clock and drops the ring buffer
func (n *Null) Close() error {
	if err := n.Stop(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.ring = nil
	return nil
}

// Stats returns the ring counters, zero when closed
func (n *Null) Stats() RingStats {
	rb, err := n.ringBuffer()
	if err != nil {
		return RingStats{}
	}
	return rb.Stats()
}
