// ABOUTME: Audio type definitions
// ABOUTME: Defines the PCM format and the borrowed clip view over decoded WAV data
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// 16-bit audio range constants
	MaxInt16 = 32767
	MinInt16 = -32768

	// BitsPerSample is the only sample width handled by the playback path
	BitsPerSample = 16

	bytesPerSample = BitsPerSample / 8
)

var (
	ErrInvalidFormat = errors.New("invalid audio format")
	ErrSampleIndex   = errors.New("sample index out of range")
)

// Format describes a PCM stream
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Validate checks that the format is one the playback path can handle
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("%w: %d channels (supported: 1, 2)", ErrInvalidFormat, f.Channels)
	}
	if f.BitDepth != BitsPerSample {
		return fmt.Errorf("%w: bit depth %d (supported: 16)", ErrInvalidFormat, f.BitDepth)
	}
	return nil
}

// BlockAlign returns the size of one frame in bytes
func (f Format) BlockAlign() int {
	return f.Channels * f.BitDepth / 8
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz %dch %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}

// Clip is an immutable view of decoded 16-bit PCM audio.
//
// The sample bytes are borrowed from the buffer the clip was parsed from and
// stay valid only while that buffer is alive. Samples are little-endian and
// interleaved, Channels samples per frame.
type Clip struct {
	format Format
	data   []byte
}

// NewClip wraps interleaved little-endian 16-bit sample bytes without copying them.
// A trailing odd byte is ignored.
func NewClip(format Format, data []byte) (*Clip, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Clip{
		format: format,
		data:   data[:len(data)-len(data)%bytesPerSample],
	}, nil
}

// Format returns the clip format
func (c *Clip) Format() Format { return c.format }

// SampleRate returns the clip sample rate in Hz
func (c *Clip) SampleRate() int { return c.format.SampleRate }

// Channels returns the number of interleaved channels
func (c *Clip) Channels() int { return c.format.Channels }

// BitsPerSample is always 16
func (c *Clip) BitsPerSample() int { return c.format.BitDepth }

// NumSamples returns the total interleaved sample count
func (c *Clip) NumSamples() int { return len(c.data) / bytesPerSample }

// NumFrames returns the number of complete frames
func (c *Clip) NumFrames() int { return c.NumSamples() / c.format.Channels }

// Bytes returns the raw sample bytes (borrowed, do not modify)
func (c *Clip) Bytes() []byte { return c.data }

// Sample decodes interleaved sample i
func (c *Clip) Sample(i int) (int16, error) {
	if i < 0 || i >= c.NumSamples() {
		return 0, fmt.Errorf("%w: %d (samples: %d)", ErrSampleIndex, i, c.NumSamples())
	}
	return c.sample(i), nil
}

// sample decodes sample i without bounds reporting; callers guarantee the index
func (c *Clip) sample(i int) int16 {
	return int16(binary.LittleEndian.Uint16(c.data[i*bytesPerSample:]))
}

// FrameSample returns the sample of channel ch in frame, panicking on a bad index
func (c *Clip) FrameSample(frame, ch int) int16 {
	return c.sample(frame*c.format.Channels + ch)
}

// DurationSeconds returns NumFrames / SampleRate
func (c *Clip) DurationSeconds() float64 {
	return float64(c.NumFrames()) / float64(c.format.SampleRate)
}

// Duration returns the clip length as a time.Duration
func (c *Clip) Duration() time.Duration {
	return time.Duration(c.DurationSeconds() * float64(time.Second))
}

// ClampInt16 truncates v toward zero and clamps it to the 16-bit range
func ClampInt16(v float64) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}
