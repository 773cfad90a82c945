// ABOUTME: Audio output package for ring buffer playback devices
// ABOUTME: Provides the Device interface, RingBuffer and malgo/oto/null backends
// Package output provides ring-buffer playback devices.
//
// Every backend exposes the same contract: Open returns the ring capacity
// in frames, Padding reports committed-but-unplayed frames, and writes go
// through an Acquire/Commit window. Backends: malgo (miniaudio), oto, and
// null (software clock, no hardware).
//
// Example:
//
//	dev, err := output.New("malgo")
//	capacity, err := dev.Open(output.Config{SampleRate: 44100, Channels: 2, BitsPerSample: 16})
//	w, err := dev.Acquire(frames)
//	w.SetFrame(0, left, right)
//	err = dev.Commit(w)
package output
