// ABOUTME: Frame sources feeding the stream filler
// ABOUTME: ClipSource resamples a clip through a cursor, ToneSource generates a sine
package stream

import (
	"math"
	"sync"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
	"github.com/Resonate-Protocol/ringplay/pkg/audio/resample"
)

// FrameSource produces one stereo output frame per call.
// ok is false once the source has no more frames.
type FrameSource interface {
	NextFrame() (left, right int16, ok bool)
}

// ClipSource plays a clip at a variable speed. Its controls are safe to call
// from other goroutines and take effect between frames.
type ClipSource struct {
	clip       *audio.Clip
	cursor     *resample.Cursor
	resampler  *resample.Resampler
	outputRate int
	mu         sync.Mutex
}

// NewClipSource creates a source producing frames at outputRate
func NewClipSource(clip *audio.Clip, outputRate int, speed float64, looping bool) (*ClipSource, error) {
	cursor, err := resample.NewCursor(clip, speed, looping)
	if err != nil {
		return nil, err
	}
	return &ClipSource{
		clip:       clip,
		cursor:     cursor,
		resampler:  resample.New(clip),
		outputRate: outputRate,
	}, nil
}

// NextFrame reads the frame at the cursor, then advances it
func (s *ClipSource) NextFrame() (int16, int16, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor.Stopped() {
		return 0, 0, false
	}
	left, right := s.resampler.NextFrame(s.cursor)
	s.cursor.Advance(s.outputRate)
	return left, right, true
}

// Clip returns the clip being played
func (s *ClipSource) Clip() *audio.Clip { return s.clip }

// Position returns the playback position in seconds
func (s *ClipSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Position()
}

// Duration returns the clip length in seconds
func (s *ClipSource) Duration() float64 {
	return s.cursor.Duration()
}

// Speed returns the playback speed
func (s *ClipSource) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Speed()
}

// SetSpeed changes the playback speed
func (s *ClipSource) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.SetSpeed(speed)
}

// Looping reports whether the clip repeats
func (s *ClipSource) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Looping()
}

// SetLooping toggles looping
func (s *ClipSource) SetLooping(looping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.SetLooping(looping)
}

// Seek jumps to seconds and resumes a finished clip
func (s *ClipSource) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Seek(seconds)
}

// Finished reports whether a non-looping clip has ended
func (s *ClipSource) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Stopped()
}

// ToneSource generates an endless sine wave on both channels
type ToneSource struct {
	frequency  float64
	amplitude  float64
	outputRate int
	time       float64
}

// NewToneSource creates a sine generator
func NewToneSource(frequency float64, amplitude int16, outputRate int) *ToneSource {
	return &ToneSource{
		frequency:  frequency,
		amplitude:  float64(amplitude),
		outputRate: outputRate,
	}
}

// NextFrame returns the next sine sample duplicated to both channels
func (s *ToneSource) NextFrame() (int16, int16, bool) {
	y := int16(s.amplitude * math.Sin(2*math.Pi*s.frequency*s.time))
	s.time += 1.0 / float64(s.outputRate)
	// keep the phase small so float precision does not drift
	if period := 1.0 / s.frequency; s.time >= period {
		s.time -= period
	}
	return y, y, true
}
