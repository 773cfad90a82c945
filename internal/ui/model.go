// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines playback state, rendering and key handling
package ui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/ringplay/internal/version"
)

const (
	speedStep  = 0.25
	volumeStep = 5
)

// Model represents the TUI state
type Model struct {
	// Clip
	file       string
	sampleRate int
	channels   int
	bitDepth   int
	duration   float64

	// Device
	backend    string
	outputRate int
	capacity   int
	target     int

	// Playback
	state    string
	position float64
	speed    float64
	looping  bool
	volume   int
	muted    bool

	// Stats
	padding   int
	windows   int64
	frames    int64
	silence   int64
	underruns int64

	// Debug
	showDebug bool

	ctrl *PlaybackControl

	// Dimensions
	width  int
	height int
}

// StatusMsg carries stream information that changes rarely
type StatusMsg struct {
	File       string
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	Backend    string
	OutputRate int
	Capacity   int
	Target     int
	State      string
}

// ProgressMsg carries the current playback position and counters
type ProgressMsg struct {
	Position  float64
	Speed     float64
	Looping   bool
	Volume    int
	Muted     bool
	Padding   int
	Windows   int64
	Frames    int64
	Silence   int64
	Underruns int64
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case ProgressMsg:
		m.applyProgress(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderClipInfo()
	s += m.renderControls()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders product and playback state
func (m Model) renderHeader() string {
	title := fmt.Sprintf("%s %s", version.Product, version.Version)
	return fmt.Sprintf(`┌─ %-50s ┐
│ State:   %-43s │
├──────────────────────────────────────────────────────┤
`, title, m.state)
}

// renderClipInfo renders the clip and device format
func (m Model) renderClipInfo() string {
	if m.file == "" {
		return "│ No clip loaded                                       │\n"
	}

	s := fmt.Sprintf("│ File:    %-43s │\n", truncate(m.file, 43))
	s += fmt.Sprintf("│ Format:  %-43s │\n",
		fmt.Sprintf("%dHz %s %d-bit, %s", m.sampleRate, channelName(m.channels), m.bitDepth, formatSeconds(m.duration)))
	s += fmt.Sprintf("│ Output:  %-43s │\n",
		fmt.Sprintf("%s @ %dHz", m.backend, m.outputRate))
	return s
}

// renderControls renders position, speed and volume
func (m Model) renderControls() string {
	loopText := "off"
	if m.looping {
		loopText = "on"
	}
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	progress := 0
	if m.duration > 0 {
		progress = int(math.Round(m.position / m.duration * 100))
	}

	s := "│                                                      │\n"
	s += fmt.Sprintf("│ Pos:     [%s] %-22s │\n",
		renderBar(progress, 100, 20), fmt.Sprintf("%s / %s", formatSeconds(m.position), formatSeconds(m.duration)))
	s += fmt.Sprintf("│ Speed:   %-43s │\n", fmt.Sprintf("%+.2fx  Loop: %s", m.speed, loopText))
	s += fmt.Sprintf("│ Volume:  [%s] %d%%%s%-25s │\n", renderBar(m.volume, 100, 10), m.volume, muteIcon, "")
	return s
}

// renderStats renders ring buffer statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Ring:    %-43s │
│ Stats:   %-43s │
│                                                      │
`, fmt.Sprintf("%d/%d frames (target %d)", m.padding, m.capacity, m.target),
		fmt.Sprintf("Windows: %d  Silence: %d  Underruns: %d", m.windows, m.silence, m.underruns))
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Speed  r:Reverse  l:Loop  +/-:Volume  m:Mute  q:Quit │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Frames written: %-34d │
│   Position: %-40.6f │
`, m.frames, m.position)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.quit()
		return m, tea.Quit
	case "up":
		m.setSpeed(m.speed + speedStep)
	case "down":
		m.setSpeed(m.speed - speedStep)
	case "r":
		m.setSpeed(-m.speed)
	case "l":
		m.looping = !m.looping
		m.ctrl.send(ControlMsg{Kind: ControlLoop, Looping: m.looping})
	case "+", "=", "right":
		m.setVolume(m.volume + volumeStep)
	case "-", "left":
		m.setVolume(m.volume - volumeStep)
	case "m":
		m.muted = !m.muted
		m.ctrl.send(ControlMsg{Kind: ControlMute, Muted: m.muted})
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// setSpeed changes speed, stepping over zero since a stalled cursor never advances
func (m *Model) setSpeed(speed float64) {
	if math.Abs(speed) < speedStep/2 {
		if speed < m.speed {
			speed = -speedStep
		} else {
			speed = speedStep
		}
	}
	m.speed = speed
	m.ctrl.send(ControlMsg{Kind: ControlSpeed, Speed: speed})
}

func (m *Model) setVolume(volume int) {
	if volume > 100 {
		volume = 100
	}
	if volume < 0 {
		volume = 0
	}
	if volume == m.volume {
		return
	}
	m.volume = volume
	m.ctrl.send(ControlMsg{Kind: ControlVolume, Volume: volume})
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.File != "" {
		m.file = msg.File
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
		m.duration = msg.Duration
	}
	if msg.Backend != "" {
		m.backend = msg.Backend
		m.outputRate = msg.OutputRate
	}
	if msg.Capacity != 0 {
		m.capacity = msg.Capacity
		m.target = msg.Target
	}
	if msg.State != "" {
		m.state = msg.State
	}
}

// applyProgress replaces the playback snapshot
func (m *Model) applyProgress(msg ProgressMsg) {
	m.position = msg.Position
	m.speed = msg.Speed
	m.looping = msg.Looping
	m.volume = msg.Volume
	m.muted = msg.Muted
	m.padding = msg.Padding
	m.windows = msg.Windows
	m.frames = msg.Frames
	m.silence = msg.Silence
	m.underruns = msg.Underruns
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d.%d", total/60, total%60, int((seconds-float64(total))*10))
}
