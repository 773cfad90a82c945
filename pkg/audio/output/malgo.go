// ABOUTME: Malgo-based ring buffer output device
// ABOUTME: Uses miniaudio via malgo; the device callback drains the ring buffer
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/ringplay/pkg/audio/encode"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	started    bool

	ringBuffer *RingBuffer
	cbSamples  []int16 // callback scratch, only touched by the audio thread
	mu         sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo() Device {
	return &Malgo{}
}

// Open initializes the playback device with a ring of cfg.BufferDuration
func (m *Malgo) Open(cfg Config) (int, error) {
	capacity, err := cfg.Validate()
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return 0, ErrAlreadyOpen
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	m.ringBuffer = NewRingBuffer(capacity, cfg.Channels)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		m.ringBuffer = nil
		return 0, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.device = device
	m.sampleRate = cfg.SampleRate

	log.Printf("Audio output initialized: %dHz, %d channels, 16-bit, %d frame ring (malgo)",
		cfg.SampleRate, cfg.Channels, capacity)

	return capacity, nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	rb := m.ringBuffer
	if rb == nil {
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	total := int(frameCount) * OutputChannels
	if cap(m.cbSamples) < total {
		m.cbSamples = make([]int16, total)
	}
	samples := m.cbSamples[:total]

	rb.Read(samples)
	encode.PutPCM16(pOutput, samples)
}

func (m *Malgo) ring() (*RingBuffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ringBuffer == nil {
		return nil, ErrNotOpen
	}
	return m.ringBuffer, nil
}

// Padding returns committed, unplayed frames
func (m *Malgo) Padding() (int, error) {
	rb, err := m.ring()
	if err != nil {
		return 0, err
	}
	return rb.Padding(), nil
}

// Acquire opens a write window
func (m *Malgo) Acquire(frames int) (*Window, error) {
	rb, err := m.ring()
	if err != nil {
		return nil, err
	}
	return rb.Acquire(frames)
}

// Commit publishes a window to the callback
func (m *Malgo) Commit(w *Window) error {
	rb, err := m.ring()
	if err != nil {
		return err
	}
	return rb.Commit(w)
}

// Start starts the device
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrNotOpen
	}
	if m.started {
		return nil
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	m.started = true
	return nil
}

// Stop stops the device, leaving unplayed frames in the ring
func (m *Malgo) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil || !m.started {
		return nil
	}
	m.started = false
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.device != nil {
		if m.started {
			if err := m.device.Stop(); err != nil {
				log.Printf("Warning: device stop error: %v", err)
			}
			m.started = false
		}
		m.device.Uninit()
		m.device = nil
	}
	m.ringBuffer = nil
}

// Stats returns ring buffer counters, zero when closed
func (m *Malgo) Stats() RingStats {
	m.mu.Lock()
	rb := m.ringBuffer
	m.mu.Unlock()

	if rb == nil {
		return RingStats{}
	}
	return rb.Stats()
}
