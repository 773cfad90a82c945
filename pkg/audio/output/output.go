// ABOUTME: Audio output device interface definition
// ABOUTME: Ring-buffer device contract shared by all playback backends
package output

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	// OutputChannels is the only channel count the stream path produces
	OutputChannels = 2
	// OutputBitsPerSample is the only sample width the stream path produces
	OutputBitsPerSample = 16

	DefaultBufferDuration = 2 * time.Second
)

var (
	ErrNotOpen           = errors.New("output device not open")
	ErrAlreadyOpen       = errors.New("output device already open")
	ErrUnsupportedConfig = errors.New("unsupported output config")
	ErrUnknownBackend    = errors.New("unknown output backend")
)

// Config describes the stream a device is opened with
type Config struct {
	SampleRate     int
	Channels       int
	BitsPerSample  int
	BufferDuration time.Duration
}

// Device is a hardware output exposing a fixed-size ring buffer.
//
// The producer polls Padding, acquires a window no larger than the free
// space, fills it and commits it. The device consumes committed frames at
// its own clock once started.
type Device interface {
	// Open configures the stream and returns the ring capacity in frames
	Open(cfg Config) (int, error)

	// Padding returns frames committed but not yet played
	Padding() (int, error)

	// Acquire opens a write window of exactly frames frames
	Acquire(frames int) (*Window, error)

	// Commit makes the window's frames playable
	Commit(w *Window) error

	// Start begins consuming the ring buffer
	Start() error

	// Stop pauses consumption
	Stop() error

	// Close releases device resources
	Close() error
}

// StatsReporter is implemented by devices that expose ring counters
type StatsReporter interface {
	Stats() RingStats
}

// Validate checks cfg and returns the ring capacity it implies
func (cfg Config) Validate() (int, error) {
	if cfg.SampleRate <= 0 {
		return 0, fmt.Errorf("%w: sample rate %d", ErrUnsupportedConfig, cfg.SampleRate)
	}
	if cfg.Channels != OutputChannels {
		return 0, fmt.Errorf("%w: %d channels (supported: 2)", ErrUnsupportedConfig, cfg.Channels)
	}
	if cfg.BitsPerSample != OutputBitsPerSample {
		return 0, fmt.Errorf("%w: %d-bit (supported: 16)", ErrUnsupportedConfig, cfg.BitsPerSample)
	}
	duration := cfg.BufferDuration
	if duration == 0 {
		duration = DefaultBufferDuration
	}
	capacity := int(duration.Seconds() * float64(cfg.SampleRate))
	if capacity <= 0 {
		return 0, fmt.Errorf("%w: buffer duration %v", ErrUnsupportedConfig, cfg.BufferDuration)
	}
	return capacity, nil
}

var backends = map[string]func() Device{
	"malgo": NewMalgo,
	"oto":   NewOto,
	"null":  func() Device { return NewNull() },
}

// New creates a device for the named backend
func New(backend string) (Device, error) {
	ctor, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, backend, Backends())
	}
	return ctor(), nil
}

// Backends lists the available backend names
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
