// ABOUTME: WAV decoding package
// ABOUTME: Parses in-memory RIFF/WAVE PCM files into audio.Clip views
// Package decode parses 16-bit PCM RIFF/WAVE files.
//
// Parse never copies sample data and never overlays structs on the input;
// every header field is extracted with explicit bounds checks. Rejections are
// *ParseError values wrapping one of the Err* kinds.
//
// Example:
//
//	data, err := loader.LoadEntireFile("Testing48kHz.wav")
//	clip, err := decode.Parse(data)
//	if errors.Is(err, decode.ErrUnsupportedCodec) {
//	    // not PCM
//	}
package decode
