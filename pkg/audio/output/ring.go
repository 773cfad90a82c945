// ABOUTME: Frame ring buffer with an acquire/commit write protocol
// ABOUTME: Shared by every output backend as the device-side ring buffer
package output

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrWindowOpen     = errors.New("a write window is already open")
	ErrWindowNotOpen  = errors.New("window is not the open window")
	ErrInvalidWindow  = errors.New("window size must be positive")
	ErrWindowTooLarge = errors.New("window larger than free space")
)

// Window is an exclusive write handle over frames of the ring buffer.
// Samples are interleaved; nothing written is visible to the consumer
// until the window is committed.
type Window struct {
	frames   int
	channels int
	samples  []int16
	done     bool
}

// Frames returns the number of frames the window holds
func (w *Window) Frames() int { return w.frames }

// Samples returns the interleaved sample slice to fill
func (w *Window) Samples() []int16 { return w.samples }

// SetFrame writes one stereo frame at index i
func (w *Window) SetFrame(i int, left, right int16) {
	w.samples[i*w.channels] = left
	w.samples[i*w.channels+1] = right
}

// RingBuffer is a fixed-capacity circular buffer of interleaved int16 frames.
//
// One producer acquires and commits windows, one consumer reads. The mutex
// only guards the indices; committed frames become readable atomically at
// Commit.
type RingBuffer struct {
	buffer   []int16
	scratch  []int16
	channels int
	size     int // capacity in frames
	readPos  int // frame index
	count    int // valid frames
	open     *Window

	underruns int64
	consumed  int64
	committed int64

	mu sync.Mutex
}

// NewRingBuffer creates a ring buffer with capacity frames of channels samples
func NewRingBuffer(capacity, channels int) *RingBuffer {
	return &RingBuffer{
		buffer:   make([]int16, capacity*channels),
		scratch:  make([]int16, capacity*channels),
		channels: channels,
		size:     capacity,
	}
}

// Capacity returns the capacity in frames
func (rb *RingBuffer) Capacity() int {
	return rb.size
}

// Padding returns the number of committed frames not yet consumed
func (rb *RingBuffer) Padding() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of frames a window may currently cover
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}

// Acquire opens a window of exactly frames frames
func (rb *RingBuffer) Acquire(frames int) (*Window, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.open != nil {
		return nil, ErrWindowOpen
	}
	if frames <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, frames)
	}
	if frames > rb.size-rb.count {
		return nil, fmt.Errorf("%w: %d frames requested, %d free", ErrWindowTooLarge, frames, rb.size-rb.count)
	}

	w := &Window{
		frames:   frames,
		channels: rb.channels,
		samples:  rb.scratch[:frames*rb.channels],
	}
	rb.open = w
	return w, nil
}

// Commit publishes the open window to the consumer
func (rb *RingBuffer) Commit(w *Window) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if w == nil || w != rb.open || w.done {
		return ErrWindowNotOpen
	}

	writePos := (rb.readPos + rb.count) % rb.size
	n := copy(rb.buffer[writePos*rb.channels:], w.samples)
	if n < len(w.samples) {
		copy(rb.buffer, w.samples[n:])
	}

	rb.count += w.frames
	rb.committed += int64(w.frames)
	w.done = true
	w.samples = nil
	rb.open = nil
	return nil
}

// Read fills dst with whole frames, zero-filling on underrun.
// It returns the number of frames that came from the buffer.
func (rb *RingBuffer) Read(dst []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	want := len(dst) / rb.channels
	n := want
	if n > rb.count {
		n = rb.count
	}

	start := rb.readPos * rb.channels
	copied := copy(dst[:n*rb.channels], rb.buffer[start:])
	if copied < n*rb.channels {
		copy(dst[copied:n*rb.channels], rb.buffer)
	}

	for i := n * rb.channels; i < len(dst); i++ {
		dst[i] = 0
	}

	rb.readPos = (rb.readPos + n) % rb.size
	rb.count -= n
	rb.consumed += int64(n)
	if n < want {
		rb.underruns++
	}
	return n
}

// Discard drops up to frames frames without copying them
func (rb *RingBuffer) Discard(frames int) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := frames
	if n > rb.count {
		n = rb.count
	}
	rb.readPos = (rb.readPos + n) % rb.size
	rb.count -= n
	rb.consumed += int64(n)
	if n < frames {
		rb.underruns++
	}
	return n
}

// Reset empties the buffer and abandons any open window
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos = 0
	rb.count = 0
	if rb.open != nil {
		rb.open.done = true
		rb.open = nil
	}
}

// RingStats is a snapshot of ring buffer counters
type RingStats struct {
	Capacity  int
	Padding   int
	Committed int64
	Consumed  int64
	Underruns int64
}

// Stats returns the current counters
func (rb *RingBuffer) Stats() RingStats {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return RingStats{
		Capacity:  rb.size,
		Padding:   rb.count,
		Committed: rb.committed,
		Consumed:  rb.consumed,
		Underruns: rb.underruns,
	}
}
