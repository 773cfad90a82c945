// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the channels carrying user controls
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ControlKind identifies what a ControlMsg changes
type ControlKind int

const (
	ControlSpeed ControlKind = iota
	ControlLoop
	ControlVolume
	ControlMute
)

// ControlMsg is a user request from the TUI to the player
type ControlMsg struct {
	Kind    ControlKind
	Speed   float64
	Looping bool
	Volume  int
	Muted   bool
}

// QuitMsg signals the user asked to quit
type QuitMsg struct{}

// PlaybackControl holds channels for control communication
type PlaybackControl struct {
	Changes chan ControlMsg
	Quit    chan QuitMsg
}

// NewPlaybackControl creates a new control handler
func NewPlaybackControl() *PlaybackControl {
	return &PlaybackControl{
		Changes: make(chan ControlMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// send delivers a control without blocking the UI
func (c *PlaybackControl) send(msg ControlMsg) {
	if c == nil {
		return
	}
	select {
	case c.Changes <- msg:
	default:
	}
}

func (c *PlaybackControl) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- QuitMsg{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *PlaybackControl) Model {
	return Model{
		speed:   1.0,
		looping: true,
		volume:  100,
		state:   "idle",
		ctrl:    ctrl,
	}
}

// Run creates the TUI program; the caller starts it
func Run(ctrl *PlaybackControl) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
