// ABOUTME: Entry point for the sine tone WAV generator
// ABOUTME: Writes a 16-bit PCM test clip for the player
package main

import (
	"flag"
	"log"
	"os"

	"github.com/Resonate-Protocol/ringplay/internal/version"
	"github.com/Resonate-Protocol/ringplay/pkg/audio"
	"github.com/Resonate-Protocol/ringplay/pkg/audio/encode"
)

var (
	out      = flag.String("out", "tone.wav", "Output WAV file")
	freq     = flag.Float64("freq", encode.DefaultToneHz, "Tone frequency in Hz")
	seconds  = flag.Float64("seconds", 2.0, "Clip length in seconds")
	rate     = flag.Int("rate", 48000, "Sample rate in Hz")
	channels = flag.Int("channels", 2, "Channel count (1 or 2)")
	volume   = flag.Int("volume", encode.DefaultToneVolume, "Peak amplitude (0-32767)")
)

func main() {
	flag.Parse()

	if *volume < 0 || *volume > audio.MaxInt16 {
		log.Fatalf("volume %d outside 0-%d", *volume, audio.MaxInt16)
	}

	format := audio.Format{SampleRate: *rate, Channels: *channels, BitDepth: audio.BitsPerSample}
	samples, err := encode.Tone(encode.ToneConfig{
		Frequency: *freq,
		Amplitude: int16(*volume),
		Seconds:   *seconds,
		Format:    format,
	})
	if err != nil {
		log.Fatalf("Failed to generate tone: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	info := &encode.WAVInfo{
		Title:    "Sine",
		Artist:   version.Manufacturer,
		Software: version.String(),
	}
	if err := encode.WriteWAV(f, format, samples, info); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to close %s: %v", *out, err)
	}

	log.Printf("Wrote %s: %v, %.2fs, %.0fHz", *out, format, *seconds, *freq)
}
