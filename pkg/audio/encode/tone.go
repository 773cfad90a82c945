// ABOUTME: Sine tone generator
// ABOUTME: Produces 16-bit PCM sine waves as samples or as an in-memory clip
package encode

import (
	"fmt"
	"math"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
)

const (
	DefaultToneHz     = 440.0 // A4
	DefaultToneVolume = 3000
)

// ToneConfig describes a generated sine wave
type ToneConfig struct {
	Frequency float64
	Amplitude int16
	Seconds   float64
	Format    audio.Format
}

// Tone renders the configured sine wave as interleaved samples, the same value on every channel
func Tone(cfg ToneConfig) ([]int16, error) {
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("tone frequency must be positive, got %f", cfg.Frequency)
	}
	if cfg.Seconds <= 0 {
		return nil, fmt.Errorf("tone length must be positive, got %f", cfg.Seconds)
	}

	frames := int(cfg.Seconds * float64(cfg.Format.SampleRate))
	samples := make([]int16, frames*cfg.Format.Channels)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(cfg.Format.SampleRate)
		v := int16(float64(cfg.Amplitude) * math.Sin(2*math.Pi*cfg.Frequency*t))
		for ch := 0; ch < cfg.Format.Channels; ch++ {
			samples[i*cfg.Format.Channels+ch] = v
		}
	}
	return samples, nil
}

// ToneClip renders a tone into a freshly allocated clip that owns its bytes
func ToneClip(cfg ToneConfig) (*audio.Clip, error) {
	samples, err := Tone(cfg)
	if err != nil {
		return nil, err
	}
	return audio.NewClip(cfg.Format, PCM16(samples))
}
