// ABOUTME: Playback session owning one output device for one source
// ABOUTME: Opens, starts, fills, drains, stops and closes the device on every path
package stream

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/ringplay/pkg/audio/output"
)

var ErrSessionStarted = errors.New("session already started")

// SessionConfig configures a playback session
type SessionConfig struct {
	SampleRate     int
	BufferDuration time.Duration
	TargetLatency  float64
	IdleInterval   time.Duration

	// DrainTimeout bounds how long a finished source's tail may play out
	DrainTimeout time.Duration

	Volume *Volume
}

// Session plays one source through one device
type Session struct {
	id      string
	device  output.Device
	source  FrameSource
	config  SessionConfig
	volume  *Volume
	started atomic.Bool

	stopOnce sync.Once
	stopCh   chan struct{}

	mu     sync.Mutex
	filler *Filler
}

// NewSession creates a session. The device must not be open yet.
func NewSession(device output.Device, source FrameSource, config SessionConfig) *Session {
	if config.IdleInterval <= 0 {
		config.IdleInterval = DefaultIdleInterval
	}
	if config.TargetLatency <= 0 {
		config.TargetLatency = DefaultTargetLatency
	}
	volume := config.Volume
	if volume == nil {
		volume = NewVolume(100)
	}

	return &Session{
		id:     uuid.New().String(),
		device: device,
		source: source,
		config: config,
		volume: volume,
		stopCh: make(chan struct{}),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Volume returns the session's volume control
func (s *Session) Volume() *Volume {
	return s.volume
}

// Run plays the source until it finishes, ctx is cancelled or Stop is called
func (s *Session) Run(ctx context.Context) (err error) {
	if !s.started.CompareAndSwap(false, true) {
		return ErrSessionStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	capacity, err := s.device.Open(output.Config{
		SampleRate:     s.config.SampleRate,
		Channels:       output.OutputChannels,
		BitsPerSample:  output.OutputBitsPerSample,
		BufferDuration: s.config.BufferDuration,
	})
	if err != nil {
		return deviceErr("open", err)
	}
	defer func() {
		if cerr := s.device.Close(); cerr != nil {
			log.Printf("Session %s: close failed: %v", s.shortID(), cerr)
			if err == nil {
				err = deviceErr("close", cerr)
			}
		}
	}()

	filler := NewFiller(s.device, s.source, capacity, FillerConfig{
		TargetLatency: s.config.TargetLatency,
		IdleInterval:  s.config.IdleInterval,
		Volume:        s.volume,
	})
	s.mu.Lock()
	s.filler = filler
	s.mu.Unlock()

	log.Printf("Session %s: device open, capacity=%d frames, target padding=%d frames",
		s.shortID(), capacity, filler.Target())

	if err := s.device.Start(); err != nil {
		return deviceErr("start", err)
	}
	defer func() {
		if serr := s.device.Stop(); serr != nil {
			log.Printf("Session %s: stop failed: %v", s.shortID(), serr)
			if err == nil {
				err = deviceErr("stop", serr)
			}
		}
	}()

	if err := filler.Run(ctx); err != nil {
		log.Printf("Session %s: stream error: %v", s.shortID(), err)
		return err
	}

	if filler.Finished() && s.config.DrainTimeout > 0 {
		if err := s.drain(ctx); err != nil {
			return err
		}
	}

	stats := filler.Stats()
	log.Printf("Session %s: finished, windows=%d, frames=%d, silence=%d",
		s.shortID(), stats.Windows, stats.FramesWritten, stats.SilenceFrames)
	return nil
}

// drain waits for the device to play what is queued
func (s *Session) drain(ctx context.Context) error {
	timer := time.NewTimer(s.config.DrainTimeout)
	defer timer.Stop()
	ticker := time.NewTicker(s.config.IdleInterval)
	defer ticker.Stop()

	for {
		padding, err := s.device.Padding()
		if err != nil {
			return deviceErr("padding", err)
		}
		if padding == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			log.Printf("Session %s: drain timed out with %d frames queued", s.shortID(), padding)
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends the session. Safe to call from any goroutine, more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Stats returns the filler statistics, zero before the device is open
func (s *Session) Stats() Stats {
	s.mu.Lock()
	filler := s.filler
	s.mu.Unlock()

	if filler == nil {
		return Stats{}
	}
	return filler.Stats()
}

func (s *Session) shortID() string {
	return s.id[:8]
}
