// ABOUTME: High-level Player API for ring buffer playback
// ABOUTME: Loads a WAV clip and streams it to an output device with live controls
package ringplay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/ringplay/internal/loader"
	"github.com/Resonate-Protocol/ringplay/internal/stream"
	"github.com/Resonate-Protocol/ringplay/pkg/audio"
	"github.com/Resonate-Protocol/ringplay/pkg/audio/decode"
	"github.com/Resonate-Protocol/ringplay/pkg/audio/output"
)

var (
	ErrNoSource       = errors.New("nothing loaded")
	ErrAlreadyPlaying = errors.New("already playing")
	ErrClosed         = errors.New("player closed")
)

// FrameSource produces stereo output frames; see NewToneSource
type FrameSource = stream.FrameSource

// PlayerConfig holds player configuration
type PlayerConfig struct {
	// Backend names the output device: "malgo", "oto" or "null" (default: malgo)
	Backend string

	// Device overrides Backend with a ready-made device
	Device output.Device

	// SampleRate is the output rate in Hz (default: 44100)
	SampleRate int

	// BufferDuration is the device ring size (default: 2s)
	BufferDuration time.Duration

	// TargetLatency is the fraction of the ring kept filled (default: 1/60)
	TargetLatency float64

	// IdleInterval is the wait between fill iterations (default: 2ms)
	IdleInterval time.Duration

	// DrainTimeout lets the tail of a non-looping clip play out (default: none)
	DrainTimeout time.Duration

	// Speed is the initial playback speed (default: 1.0)
	Speed float64

	// Loop repeats the clip
	Loop bool

	// Volume is the initial volume (0-100, default: 100 when nil)
	Volume *int

	// OnStateChange is called when playback state changes
	OnStateChange func(PlayerState)

	// OnError is called when playback fails
	OnError func(error)
}

// PlayerState describes the current state
type PlayerState struct {
	State      string // "idle", "loaded", "playing", "stopped"
	File       string
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64 // seconds
	Speed      float64
	Looping    bool
	Volume     int
	Muted      bool
}

// PlayerStats contains playback statistics
type PlayerStats struct {
	Position      float64 // seconds
	Padding       int
	Capacity      int
	Target        int
	Windows       int64
	FramesWritten int64
	SilenceFrames int64
	Underruns     int64
}

// Player streams one loaded clip or source at a time
type Player struct {
	config PlayerConfig
	device output.Device
	volume *stream.Volume

	mu      sync.Mutex
	state   PlayerState
	data    []byte // backing buffer the clip borrows from
	clip    *audio.Clip
	source  FrameSource
	clipSrc *stream.ClipSource
	session *stream.Session
	closed  bool
}

// NewPlayer creates a new player with the given configuration
func NewPlayer(config PlayerConfig) (*Player, error) {
	// Set defaults
	if config.Backend == "" {
		config.Backend = "malgo"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	if config.BufferDuration == 0 {
		config.BufferDuration = output.DefaultBufferDuration
	}
	if config.TargetLatency == 0 {
		config.TargetLatency = stream.DefaultTargetLatency
	}
	if config.IdleInterval == 0 {
		config.IdleInterval = stream.DefaultIdleInterval
	}
	if config.Speed == 0 {
		config.Speed = 1.0
	}
	level := 100
	if config.Volume != nil {
		level = *config.Volume
	}

	if config.SampleRate < 0 {
		return nil, fmt.Errorf("invalid sample rate %d", config.SampleRate)
	}
	if config.TargetLatency < 0 || config.TargetLatency > 1 {
		return nil, fmt.Errorf("invalid target latency %v", config.TargetLatency)
	}
	if level < 0 || level > 100 {
		return nil, fmt.Errorf("invalid volume: %d (must be 0-100)", level)
	}

	device := config.Device
	if device == nil {
		d, err := output.New(config.Backend)
		if err != nil {
			return nil, err
		}
		device = d
	}

	volume := stream.NewVolume(level)

	return &Player{
		config: config,
		device: device,
		volume: volume,
		state: PlayerState{
			State:   "idle",
			Speed:   config.Speed,
			Looping: config.Loop,
			Volume:  volume.Level(),
		},
	}, nil
}

// Load reads and decodes a WAV file, replacing whatever was loaded
func (p *Player) Load(path string) error {
	data, err := loader.LoadEntireFile(path)
	if err != nil {
		return err
	}

	clip, err := decode.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := p.load(path, data, clip); err != nil {
		return err
	}

	log.Printf("Loaded %s: %v, %d frames, %.2fs", path, clip.Format(), clip.NumFrames(), clip.DurationSeconds())
	return nil
}

// LoadClip plays an already decoded clip
func (p *Player) LoadClip(name string, clip *audio.Clip) error {
	return p.load(name, nil, clip)
}

func (p *Player) load(name string, data []byte, clip *audio.Clip) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.session != nil {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}

	src, err := stream.NewClipSource(clip, p.config.SampleRate, p.state.Speed, p.state.Looping)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("cannot play %s: %w", name, err)
	}

	format := clip.Format()
	p.data = data
	p.clip = clip
	p.source = src
	p.clipSrc = src
	p.state.State = "loaded"
	p.state.File = name
	p.state.SampleRate = format.SampleRate
	p.state.Channels = format.Channels
	p.state.BitDepth = format.BitDepth
	p.state.Duration = clip.DurationSeconds()
	p.mu.Unlock()

	p.notifyStateChange()
	return nil
}

// LoadSource plays a custom frame source instead of a clip
func (p *Player) LoadSource(name string, source FrameSource) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.session != nil {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}

	p.data = nil
	p.clip = nil
	p.clipSrc = nil
	p.source = source
	p.state.State = "loaded"
	p.state.File = name
	p.state.SampleRate = p.config.SampleRate
	p.state.Channels = output.OutputChannels
	p.state.BitDepth = output.OutputBitsPerSample
	p.state.Duration = 0
	p.mu.Unlock()

	p.notifyStateChange()
	return nil
}

// Play streams the loaded source until it ends, ctx is cancelled or Stop is called.
// It blocks; run it in a goroutine for asynchronous playback.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.source == nil {
		p.mu.Unlock()
		return ErrNoSource
	}
	if p.session != nil {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}

	session := stream.NewSession(p.device, p.source, stream.SessionConfig{
		SampleRate:     p.config.SampleRate,
		BufferDuration: p.config.BufferDuration,
		TargetLatency:  p.config.TargetLatency,
		IdleInterval:   p.config.IdleInterval,
		DrainTimeout:   p.config.DrainTimeout,
		Volume:         p.volume,
	})
	p.session = session
	p.state.State = "playing"
	p.mu.Unlock()

	log.Printf("Playback started (session %s)", session.ID())
	p.notifyStateChange()

	err := session.Run(ctx)

	p.mu.Lock()
	p.session = nil
	p.state.State = "stopped"
	// a finished clip restarts from the top on the next Play
	if p.clipSrc != nil && p.clipSrc.Finished() {
		p.clipSrc.Seek(0)
	}
	p.mu.Unlock()

	if err != nil {
		log.Printf("Playback error: %v", err)
		if p.config.OnError != nil {
			p.config.OnError(err)
		}
	} else {
		log.Printf("Playback stopped")
	}
	p.notifyStateChange()
	return err
}

// Stop ends playback; Play returns once the device is released
func (p *Player) Stop() {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session != nil {
		session.Stop()
	}
}

// Playing reports whether a session is running
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// SetSpeed changes playback speed; negative plays backwards
func (p *Player) SetSpeed(speed float64) error {
	if speed == 0 {
		return errors.New("speed must not be 0")
	}

	p.mu.Lock()
	p.state.Speed = speed
	if p.clipSrc != nil {
		p.clipSrc.SetSpeed(speed)
	}
	p.mu.Unlock()

	p.notifyStateChange()
	return nil
}

// SetLooping toggles looping
func (p *Player) SetLooping(looping bool) {
	p.mu.Lock()
	p.state.Looping = looping
	if p.clipSrc != nil {
		p.clipSrc.SetLooping(looping)
	}
	p.mu.Unlock()

	p.notifyStateChange()
}

// Seek jumps to a position in seconds
func (p *Player) Seek(seconds float64) {
	p.mu.Lock()
	src := p.clipSrc
	p.mu.Unlock()

	if src != nil {
		src.Seek(seconds)
	}
}

// SetVolume sets playback volume (0-100)
func (p *Player) SetVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("invalid volume: %d (must be 0-100)", volume)
	}

	p.volume.Set(volume)
	p.mu.Lock()
	p.state.Volume = volume
	p.mu.Unlock()

	p.notifyStateChange()
	return nil
}

// Mute mutes or unmutes audio
func (p *Player) Mute(muted bool) {
	p.volume.SetMuted(muted)
	p.mu.Lock()
	p.state.Muted = muted
	p.mu.Unlock()

	p.notifyStateChange()
}

// Status returns current player state
func (p *Player) Status() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Clip returns the loaded clip, nil for custom sources
func (p *Player) Clip() *audio.Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clip
}

// Stats returns playback statistics
func (p *Player) Stats() PlayerStats {
	p.mu.Lock()
	session := p.session
	src := p.clipSrc
	p.mu.Unlock()

	var stats PlayerStats
	if src != nil {
		stats.Position = src.Position()
	}
	if session != nil {
		s := session.Stats()
		stats.Padding = s.LastPadding
		stats.Capacity = s.Capacity
		stats.Target = s.Target
		stats.Windows = s.Windows
		stats.FramesWritten = s.FramesWritten
		stats.SilenceFrames = s.SilenceFrames
	}
	if reporter, ok := p.device.(output.StatsReporter); ok {
		stats.Underruns = reporter.Stats().Underruns
	}
	return stats
}

// Close stops playback and releases the loaded clip
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	session := p.session
	p.data = nil
	p.clip = nil
	p.mu.Unlock()

	if session != nil {
		session.Stop()
	}
	return nil
}

// notifyStateChange calls the state change callback if set
func (p *Player) notifyStateChange() {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(p.Status())
	}
}

// NewToneSource creates an endless sine source at the player's output rate
func (p *Player) NewToneSource(frequency float64, amplitude int16) FrameSource {
	return stream.NewToneSource(frequency, amplitude, p.config.SampleRate)
}
