// Package stream feeds PCM frames into an output device's ring buffer.
//
// A Filler polls the device padding and writes exactly enough frames to
// bring it back to a target fraction of the ring's capacity. Frames come
// from a FrameSource, usually a ClipSource that resamples a decoded clip at
// a variable speed. A Session owns the device for the duration of one
// playback and releases it on every exit path.
package stream
