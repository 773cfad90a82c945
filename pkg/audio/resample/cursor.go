// ABOUTME: Fractional playback position over a clip
// ABOUTME: Advances by speed per output frame and wraps or stops at the clip end
package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
)

// ErrEmptyClip is returned when a cursor is created over a clip with no frames
var ErrEmptyClip = errors.New("clip has zero duration")

// Cursor tracks the playback position in seconds of source time.
//
// After every Advance the position satisfies 0 <= position < duration, or
// the cursor is stopped. Cursor is not safe for concurrent use.
type Cursor struct {
	position   float64
	speed      float64
	duration   float64
	looping    bool
	stopped    bool
	sampleRate int
	numFrames  int
}

// NewCursor creates a cursor at position 0
func NewCursor(clip *audio.Clip, speed float64, looping bool) (*Cursor, error) {
	if clip == nil || clip.NumFrames() == 0 {
		return nil, ErrEmptyClip
	}
	duration := clip.DurationSeconds()
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: %d frames at %dHz", ErrEmptyClip, clip.NumFrames(), clip.SampleRate())
	}

	return &Cursor{
		speed:      speed,
		duration:   duration,
		looping:    looping,
		sampleRate: clip.SampleRate(),
		numFrames:  clip.NumFrames(),
	}, nil
}

// Advance moves the cursor forward by one output frame at outputSampleRate.
// It returns false once playback has reached the end of a non-looping clip.
func (c *Cursor) Advance(outputSampleRate int) bool {
	if c.stopped {
		return false
	}

	c.position += c.speed / float64(outputSampleRate)

	// one frame of advance is far shorter than the clip, so a single wrap suffices
	switch {
	case c.position >= c.duration:
		if !c.looping {
			c.stop()
			return false
		}
		c.position -= c.duration
	case c.position < 0:
		if !c.looping {
			c.stop()
			return false
		}
		c.position += c.duration
	}

	if c.position >= c.duration || c.position < 0 {
		// a speed larger than the whole clip per frame
		c.position = math.Mod(c.position, c.duration)
		if c.position < 0 {
			c.position += c.duration
		}
	}
	return true
}

func (c *Cursor) stop() {
	c.stopped = true
	c.position = c.duration
}

// FrameIndices maps the position to the two source frames surrounding it and
// the interpolation factor between them. next wraps to frame 0 at the end of
// the clip regardless of looping so interpolation never reads past the data.
func (c *Cursor) FrameIndices() (prev, next int, t float64) {
	coord := c.position * float64(c.sampleRate)
	prev = int(math.Floor(coord))

	switch {
	case prev < 0:
		prev = 0
	case prev >= c.numFrames:
		prev = c.numFrames - 1
	}

	t = coord - float64(prev)
	if t < 0 {
		t = 0
	} else if t >= 1 {
		t = math.Nextafter(1, 0)
	}

	next = (prev + 1) % c.numFrames
	return prev, next, t
}

// Position returns the playback position in seconds
func (c *Cursor) Position() float64 { return c.position }

// Duration returns the clip duration in seconds
func (c *Cursor) Duration() float64 { return c.duration }

// Speed returns the playback speed multiplier
func (c *Cursor) Speed() float64 { return c.speed }

// SetSpeed changes the playback speed; negative plays in reverse
func (c *Cursor) SetSpeed(speed float64) { c.speed = speed }

// Looping reports whether the cursor wraps at the clip end
func (c *Cursor) Looping() bool { return c.looping }

// SetLooping toggles looping
func (c *Cursor) SetLooping(looping bool) { c.looping = looping }

// Stopped reports whether a non-looping clip has played to its end
func (c *Cursor) Stopped() bool { return c.stopped }

// Seek moves to seconds, wrapped into the clip, and clears the stopped state
func (c *Cursor) Seek(seconds float64) {
	pos := math.Mod(seconds, c.duration)
	if pos < 0 {
		pos += c.duration
	}
	c.position = pos
	c.stopped = false
}

// Reset rewinds to the start
func (c *Cursor) Reset() {
	c.Seek(0)
}
