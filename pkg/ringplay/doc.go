// ABOUTME: High-level ringplay library API
// ABOUTME: Provides a simple Player for most use cases
// Package ringplay plays 16-bit PCM WAV clips through a ring buffer output.
//
// This is the main entry point for most library users. A Player loads a
// clip, then streams it at an adjustable speed, looping or once, keeping
// the device's ring buffer a small fraction full so controls take effect
// with low latency.
//
// For lower-level control, see the audio, decode, resample and output packages.
//
// Example:
//
//	player, err := ringplay.NewPlayer(ringplay.PlayerConfig{
//	    Backend: "malgo",
//	    Loop:    true,
//	})
//	err = player.Load("Testing48kHz.wav")
//	err = player.Play(ctx)
package ringplay
