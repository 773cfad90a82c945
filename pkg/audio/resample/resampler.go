// ABOUTME: Linear interpolation resampler for clip playback
// ABOUTME: Produces one stereo output frame from the cursor position
package resample

import "github.com/Resonate-Protocol/ringplay/pkg/audio"

// Resampler reads interpolated stereo frames out of a clip
type Resampler struct {
	clip *audio.Clip
}

// New creates a resampler for clip
func New(clip *audio.Clip) *Resampler {
	return &Resampler{clip: clip}
}

// Clip returns the clip being resampled
func (r *Resampler) Clip() *audio.Clip { return r.clip }

// NextFrame returns the frame at the cursor position, interpolating between
// the two nearest source frames. Mono sources are duplicated to both outputs.
// The cursor is not advanced.
func (r *Resampler) NextFrame(c *Cursor) (left, right int16) {
	prev, next, t := c.FrameIndices()

	// right is channel 1 for stereo and channel 0 for mono;
	// this only holds for 1 or 2 channels
	rightCh := r.clip.Channels() - 1

	prevLeft := float64(r.clip.FrameSample(prev, 0))
	nextLeft := float64(r.clip.FrameSample(next, 0))
	prevRight := float64(r.clip.FrameSample(prev, rightCh))
	nextRight := float64(r.clip.FrameSample(next, rightCh))

	// convex interpolation between two int16 values stays in range
	left = int16(lerp(prevLeft, nextLeft, t))
	right = int16(lerp(prevRight, nextRight, t))
	return left, right
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
