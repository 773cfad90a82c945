// ABOUTME: Audio encoding package for 16-bit PCM output
// ABOUTME: Provides PCM16 packing, sine tone generation and WAV writing
// Package encode produces 16-bit PCM data.
//
//   - PCM16 / PutPCM16: int16 samples to little-endian bytes
//   - Tone / ToneClip: sine wave generation
//   - WriteWAV: WAV files via github.com/go-audio/wav
//
// Example:
//
//	samples, err := encode.Tone(encode.ToneConfig{
//	    Frequency: 440,
//	    Amplitude: 3000,
//	    Seconds:   2,
//	    Format:    audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16},
//	})
//	err = encode.WriteWAV(f, format, samples, nil)
package encode
