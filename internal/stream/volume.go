// ABOUTME: Software volume control for the stream
// ABOUTME: Scales samples by a 0-100 volume with mute and clamps to 16-bit
package stream

import (
	"sync/atomic"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
)

// Volume is a 0-100 level plus mute flag, safe for concurrent use
type Volume struct {
	level atomic.Int32
	muted atomic.Bool
}

// NewVolume creates a volume at level, clamped to 0-100
func NewVolume(level int) *Volume {
	v := &Volume{}
	v.Set(level)
	return v
}

// Set changes the level
func (v *Volume) Set(level int) {
	v.level.Store(int32(clampVolume(level)))
}

// Level returns the current level
func (v *Volume) Level() int {
	return int(v.level.Load())
}

// SetMuted mutes or unmutes
func (v *Volume) SetMuted(muted bool) {
	v.muted.Store(muted)
}

// Muted reports whether output is muted
func (v *Volume) Muted() bool {
	return v.muted.Load()
}

func (v *Volume) multiplier() float64 {
	if v == nil {
		return 1.0
	}
	return getVolumeMultiplier(v.Level(), v.Muted())
}

// applyVolume scales one sample; a multiplier of 1 returns it unchanged
func applyVolume(sample int16, multiplier float64) int16 {
	if multiplier == 1.0 {
		return sample
	}
	return audio.ClampInt16(float64(sample) * multiplier)
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

// clampVolume limits volume to 0-100
func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
