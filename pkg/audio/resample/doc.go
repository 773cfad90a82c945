// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Cursor tracks fractional playback position, Resampler interpolates frames
// Package resample plays a clip back at an arbitrary speed and output rate.
//
// A Cursor holds the position in seconds of source time. Each output frame
// advances it by speed/outputRate, so the playback rate depends only on
// speed and not on the clip's own sample rate. The Resampler turns the
// position into a stereo frame by interpolating between the two nearest
// source frames.
//
// Example:
//
//	cursor, err := resample.NewCursor(clip, 1.0, true)
//	r := resample.New(clip)
//	for i := range frames {
//	    left, right := r.NextFrame(cursor)
//	    if !cursor.Advance(44100) {
//	        break
//	    }
//	}
package resample
