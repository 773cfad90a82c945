// ABOUTME: WAV file writer
// ABOUTME: Writes 16-bit PCM WAV files through go-audio/wav
package encode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVInfo is optional metadata written as a LIST/INFO chunk after the samples
type WAVInfo struct {
	Title    string
	Artist   string
	Software string
}

// WriteWAV encodes interleaved samples as a PCM WAV file.
// The writer must be seekable so the chunk sizes can be patched on close.
func WriteWAV(w io.WriteSeeker, format audio.Format, samples []int16, info *WAVInfo) error {
	if err := format.Validate(); err != nil {
		return err
	}
	if len(samples)%format.Channels != 0 {
		return fmt.Errorf("%d samples is not a whole number of %d-channel frames", len(samples), format.Channels)
	}

	enc := wav.NewEncoder(w, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM)
	if info != nil {
		enc.Metadata = &wav.Metadata{
			Title:    info.Title,
			Artist:   info.Artist,
			Software: info.Software,
		}
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: format.BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}
