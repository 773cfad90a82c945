// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and the Clip view over 16-bit PCM data
// Package audio provides fundamental audio types for 16-bit PCM playback.
//
// This package defines core types used throughout ringplay:
//   - Format: Describes a PCM stream (sample rate, channels, bit depth)
//   - Clip: An immutable, borrowed view of interleaved 16-bit samples
//
// A Clip never owns its bytes. It is a sub-slice of the buffer the WAV file
// was loaded into, so the buffer must outlive every Clip parsed from it.
//
// Example:
//
//	clip, err := audio.NewClip(audio.Format{
//	    SampleRate: 48000,
//	    Channels:   2,
//	    BitDepth:   16,
//	}, pcmBytes)
//
//	left := clip.FrameSample(0, 0)
package audio
