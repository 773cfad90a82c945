// ABOUTME: Tests for the WAV parser
// ABOUTME: Covers valid files, every rejection kind and chunk alignment
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/ringplay/pkg/audio"
	"github.com/Resonate-Protocol/ringplay/pkg/audio/encode"
)

type fmtFields struct {
	formatTag     uint16
	channels      uint16
	sampleRate    uint32
	byteRate      uint32
	blockAlign    uint16
	bitsPerSample uint16
}

func pcmFmt(channels uint16, sampleRate uint32) fmtFields {
	blockAlign := channels * 2
	return fmtFields{
		formatTag:     1,
		channels:      channels,
		sampleRate:    sampleRate,
		byteRate:      sampleRate * uint32(blockAlign),
		blockAlign:    blockAlign,
		bitsPerSample: 16,
	}
}

func fmtPayload(f fmtFields) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, f.formatTag)
	binary.Write(buf, binary.LittleEndian, f.channels)
	binary.Write(buf, binary.LittleEndian, f.sampleRate)
	binary.Write(buf, binary.LittleEndian, f.byteRate)
	binary.Write(buf, binary.LittleEndian, f.blockAlign)
	binary.Write(buf, binary.LittleEndian, f.bitsPerSample)
	return buf.Bytes()
}

type chunk struct {
	id      string
	size    uint32 // declared size; 0 means len(payload)
	payload []byte
	noPad   bool
}

// createWAV assembles a RIFF/WAVE file from the given chunks
func createWAV(chunks ...chunk) []byte {
	body := new(bytes.Buffer)
	body.WriteString("WAVE")
	for _, c := range chunks {
		size := c.size
		if size == 0 {
			size = uint32(len(c.payload))
		}
		body.WriteString(c.id)
		binary.Write(body, binary.LittleEndian, size)
		body.Write(c.payload)
		if len(c.payload)%2 == 1 && !c.noPad {
			body.WriteByte(0)
		}
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func dataPayload(samples ...int16) []byte {
	return encode.PCM16(samples)
}

func TestParseMonoRoundTrip(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767}
	data := createWAV(
		chunk{id: "fmt ", payload: fmtPayload(pcmFmt(1, 8000))},
		chunk{id: "data", payload: dataPayload(samples...)},
	)

	clip, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if clip.Channels() != 1 {
		t.Errorf("expected 1 channel, got %d", clip.Channels())
	}
	if clip.SampleRate() != 8000 {
		t.Errorf("expected 8000Hz, got %d", clip.SampleRate())
	}
	if clip.BitsPerSample() != 16 {
		t.Errorf("expected 16 bits, got %d", clip.BitsPerSample())
	}
	if clip.NumSamples() != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), clip.NumSamples())
	}
	for i, want := range samples {
		got, err := clip.Sample(i)
		if err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestParseBorrowsInput(t *testing.T) {
	data := createWAV(
		chunk{id: "fmt ", payload: fmtPayload(pcmFmt(2, 44100))},
		chunk{id: "data", payload: dataPayload(1, 2, 3, 4)},
	)

	clip, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	raw := clip.Bytes()
	if &raw[0] != &data[len(data)-8] {
		t.Error("expected clip samples to alias the input buffer")
	}
}

func TestParseSkipsUnknownAndOddChunks(t *testing.T) {
	data := createWAV(
		chunk{id: "LIST", payload: []byte("odd")},
		chunk{id: "fmt ", payload: fmtPayload(pcmFmt(2, 48000))},
		chunk{id: "fact", payload: []byte{1, 2, 3, 4, 5}},
		chunk{id: "data", payload: dataPayload(10, -10, 20, -20)},
	)

	clip, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if clip.NumFrames() != 2 {
		t.Fatalf("expected 2 frames, got %d", clip.NumFrames())
	}
	if got := clip.FrameSample(1, 1); got != -20 {
		t.Errorf("expected -20, got %d", got)
	}
}

func TestParseDataBeforeFmt(t *testing.T) {
	data := createWAV(
		chunk{id: "data", payload: dataPayload(5, 6)},
		chunk{id: "fmt ", payload: fmtPayload(pcmFmt(1, 8000))},
	)

	clip, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if clip.NumSamples() != 2 {
		t.Errorf("expected 2 samples, got %d", clip.NumSamples())
	}
}

func TestParseExtendedFmtPayload(t *testing.T) {
	// 18-byte fmt with cbSize = 0
	payload := append(fmtPayload(pcmFmt(1, 8000)), 0, 0)
	data := createWAV(
		chunk{id: "fmt ", payload: payload},
		chunk{id: "data", payload: dataPayload(1)},
	)

	if _, err := Parse(data); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	badCodec := pcmFmt(1, 8000)
	badCodec.formatTag = 3

	eightBit := pcmFmt(1, 8000)
	eightBit.bitsPerSample = 8
	eightBit.blockAlign = 1
	eightBit.byteRate = 8000

	sixChannels := pcmFmt(6, 8000)

	badAlign := pcmFmt(2, 8000)
	badAlign.blockAlign = 2

	badRate := pcmFmt(2, 8000)
	badRate.byteRate = 1234

	zeroRate := pcmFmt(1, 0)

	good := fmtPayload(pcmFmt(1, 8000))

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformedContainer},
		{"short header", []byte("RIFF"), ErrMalformedContainer},
		{"not riff", append([]byte("RIFX\x00\x00\x00\x00WAVE"), good...), ErrMalformedContainer},
		{"not wave", append([]byte("RIFF\x00\x00\x00\x00AVI "), good...), ErrMalformedContainer},
		{"no chunks", createWAV(), ErrTruncatedFile},
		{"no data", createWAV(chunk{id: "fmt ", payload: good}), ErrTruncatedFile},
		{"no fmt", createWAV(chunk{id: "data", payload: dataPayload(1, 2)}), ErrTruncatedFile},
		{"float codec", createWAV(
			chunk{id: "fmt ", payload: fmtPayload(badCodec)},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrUnsupportedCodec},
		{"8 bit", createWAV(
			chunk{id: "fmt ", payload: fmtPayload(eightBit)},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrUnsupportedLayout},
		{"six channels", createWAV(
			chunk{id: "fmt ", payload: fmtPayload(sixChannels)},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrUnsupportedLayout},
		{"bad block align", createWAV(
			chunk{id: "fmt ", payload: fmtPayload(badAlign)},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrInconsistentHeader},
		{"bad byte rate", createWAV(
			chunk{id: "fmt ", payload: fmtPayload(badRate)},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrInconsistentHeader},
		{"zero sample rate", createWAV(
			chunk{id: "fmt ", payload: fmtPayload(zeroRate)},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrInconsistentHeader},
		{"short fmt", createWAV(
			chunk{id: "fmt ", payload: good[:12]},
			chunk{id: "data", payload: dataPayload(1)},
		), ErrOutOfBounds},
		{"truncated data", createWAV(
			chunk{id: "fmt ", payload: good},
			chunk{id: "data", size: 100, payload: dataPayload(1, 2)},
		), ErrOutOfBounds},
		{"truncated fmt", createWAV(
			chunk{id: "fmt ", size: 64, payload: good},
		), ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip, err := Parse(tt.data)
			if err == nil {
				t.Fatalf("expected %v, got clip %+v", tt.want, clip)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("expected *ParseError, got %T", err)
			}
		})
	}
}

func TestParseUnknownChunkPastEnd(t *testing.T) {
	data := createWAV(
		chunk{id: "fmt ", payload: fmtPayload(pcmFmt(1, 8000))},
		chunk{id: "junk", size: 1000, payload: []byte{0, 0}},
	)

	_, err := Parse(data)
	if !errors.Is(err, ErrTruncatedFile) {
		t.Errorf("expected ErrTruncatedFile, got %v", err)
	}
}

func TestParseOddDataChunkPadding(t *testing.T) {
	// a 3-byte data chunk carries one pad byte; the trailing half sample is ignored
	data := createWAV(
		chunk{id: "fmt ", payload: fmtPayload(pcmFmt(1, 8000))},
		chunk{id: "data", payload: []byte{0x10, 0x00, 0x7F}},
	)

	clip, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if clip.NumSamples() != 1 {
		t.Errorf("expected 1 sample, got %d", clip.NumSamples())
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse([]byte("RIFF\x00\x00\x00\x00WAVX"))
	if err == nil {
		t.Fatal("expected error")
	}
	want := `wav: malformed RIFF/WAVE container at offset 8: form tag "WAVX"`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestParseGoAudioEncodedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	format := audio.Format{SampleRate: 22050, Channels: 2, BitDepth: 16}
	samples := []int16{100, -100, 200, -200, 300, -300}
	if err := encode.WriteWAV(f, format, samples, &encode.WAVInfo{Title: "parse test"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	clip, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if clip.Format() != format {
		t.Errorf("expected %v, got %v", format, clip.Format())
	}
	for i, want := range samples {
		got, _ := clip.Sample(i)
		if got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}
