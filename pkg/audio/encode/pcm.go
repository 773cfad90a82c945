// ABOUTME: PCM audio encoder
// ABOUTME: Packs int16 samples into little-endian 16-bit PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"
)

// PCM16 converts int16 samples to little-endian PCM bytes
func PCM16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	PutPCM16(out, samples)
	return out
}

// PutPCM16 writes samples into dst, which must hold 2 bytes per sample
func PutPCM16(dst []byte, samples []int16) {
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(sample))
	}
}

// DecodePCM16 converts little-endian PCM bytes back to int16 samples
func DecodePCM16(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("odd PCM16 byte count: %d", len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}
