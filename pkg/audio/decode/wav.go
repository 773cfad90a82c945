// ABOUTME: RIFF/WAVE PCM parser
// ABOUTME: Walks the chunk list and returns a Clip borrowing the data chunk bytes
package decode

import (
	"encoding/binary"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
)

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	minFmtSize      = 16

	formatPCM = 1
)

// Parse validates a complete RIFF/WAVE file held in data and returns a clip
// whose samples alias the data chunk payload. data must not be modified or
// released while the clip is in use.
func Parse(data []byte) (*audio.Clip, error) {
	if len(data) < riffHeaderSize {
		return nil, parseErr(ErrMalformedContainer, 0, "%d bytes is shorter than the RIFF header", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return nil, parseErr(ErrMalformedContainer, 0, "container tag %q", data[0:4])
	}
	if string(data[8:12]) != "WAVE" {
		return nil, parseErr(ErrMalformedContainer, 8, "form tag %q", data[8:12])
	}

	var (
		format   audio.Format
		samples  []byte
		haveFmt  bool
		haveData bool
	)

	offset := riffHeaderSize
	for offset+chunkHeaderSize <= len(data) && !(haveFmt && haveData) {
		id := string(data[offset : offset+4])
		size := uint64(binary.LittleEndian.Uint32(data[offset+4:]))
		body := offset + chunkHeaderSize
		inBounds := uint64(body)+size <= uint64(len(data))

		switch id {
		case "fmt ":
			if !inBounds {
				return nil, parseErr(ErrOutOfBounds, offset, "fmt chunk declares %d bytes, %d remain", size, len(data)-body)
			}
			f, err := parseFormat(data[body:body+int(size)], body)
			if err != nil {
				return nil, err
			}
			format = f
			haveFmt = true
		case "data":
			if !inBounds {
				return nil, parseErr(ErrOutOfBounds, offset, "data chunk declares %d bytes, %d remain", size, len(data)-body)
			}
			samples = data[body : body+int(size)]
			haveData = true
		default:
			if !inBounds {
				// an unknown chunk running past the end exhausts the input
				offset = len(data)
				continue
			}
		}

		// chunks are word aligned: odd payloads carry one pad byte
		offset = body + int(size) + int(size&1)
	}

	if !haveFmt {
		return nil, parseErr(ErrTruncatedFile, len(data), "no fmt chunk")
	}
	if !haveData {
		return nil, parseErr(ErrTruncatedFile, len(data), "no data chunk")
	}

	return audio.NewClip(format, samples)
}

// parseFormat decodes a fmt chunk payload that starts at offset in the file
func parseFormat(p []byte, offset int) (audio.Format, error) {
	if len(p) < minFmtSize {
		return audio.Format{}, parseErr(ErrOutOfBounds, offset, "fmt payload is %d bytes, need %d", len(p), minFmtSize)
	}

	formatTag := binary.LittleEndian.Uint16(p[0:2])
	channels := int(binary.LittleEndian.Uint16(p[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(p[4:8]))
	byteRate := int(binary.LittleEndian.Uint32(p[8:12]))
	blockAlign := int(binary.LittleEndian.Uint16(p[12:14]))
	bitsPerSample := int(binary.LittleEndian.Uint16(p[14:16]))

	if formatTag != formatPCM {
		return audio.Format{}, parseErr(ErrUnsupportedCodec, offset, "format tag %#x (PCM only)", formatTag)
	}
	if channels != 1 && channels != 2 {
		return audio.Format{}, parseErr(ErrUnsupportedLayout, offset+2, "%d channels (supported: 1, 2)", channels)
	}
	if bitsPerSample != audio.BitsPerSample {
		return audio.Format{}, parseErr(ErrUnsupportedLayout, offset+14, "%d bits per sample (supported: 16)", bitsPerSample)
	}
	if sampleRate == 0 {
		return audio.Format{}, parseErr(ErrInconsistentHeader, offset+4, "sample rate is zero")
	}
	if blockAlign != channels*bitsPerSample/8 {
		return audio.Format{}, parseErr(ErrInconsistentHeader, offset+12, "block align %d for %d channels of %d bits", blockAlign, channels, bitsPerSample)
	}
	if byteRate != sampleRate*blockAlign {
		return audio.Format{}, parseErr(ErrInconsistentHeader, offset+8, "byte rate %d, expected %d", byteRate, sampleRate*blockAlign)
	}

	return audio.Format{
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitsPerSample,
	}, nil
}
