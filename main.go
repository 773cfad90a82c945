// ABOUTME: Entry point for the ringplay WAV player
// ABOUTME: Loads configuration, plays the clip and drives the TUI
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/ringplay/internal/config"
	"github.com/Resonate-Protocol/ringplay/internal/ui"
	"github.com/Resonate-Protocol/ringplay/internal/version"
	"github.com/Resonate-Protocol/ringplay/pkg/ringplay"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		config.Usage(os.Stderr)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println(version.String())
		return
	}

	useTUI := !cfg.NoTUI

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s: file=%s backend=%s rate=%dHz speed=%.2f loop=%v latency=%.4f",
		version.String(), cfg.File, cfg.Backend, cfg.SampleRate, cfg.Speed, cfg.Loop, cfg.Latency)

	// TUI setup
	var tuiProg *tea.Program
	var ctrl *ui.PlaybackControl

	if useTUI {
		ctrl = ui.NewPlaybackControl()
		tuiProg, err = ui.Run(ctrl)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg tea.Msg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	player, err := ringplay.NewPlayer(ringplay.PlayerConfig{
		Backend:        cfg.Backend,
		SampleRate:     cfg.SampleRate,
		BufferDuration: cfg.Buffer,
		TargetLatency:  cfg.Latency,
		DrainTimeout:   cfg.DrainTimeout,
		Speed:          cfg.Speed,
		Loop:           cfg.Loop,
		Volume:         &cfg.Volume,
		OnStateChange: func(state ringplay.PlayerState) {
			updateTUI(ui.StatusMsg{
				File:       state.File,
				SampleRate: state.SampleRate,
				Channels:   state.Channels,
				BitDepth:   state.BitDepth,
				Duration:   state.Duration,
				State:      state.State,
			})
		},
		OnError: func(err error) {
			log.Printf("Player error: %v", err)
		},
	})
	if err != nil {
		exit(tuiProg, "Failed to create player: %v", err)
	}

	updateTUI(ui.StatusMsg{Backend: cfg.Backend, OutputRate: cfg.SampleRate})

	if err := player.Load(cfg.File); err != nil {
		exit(tuiProg, "Failed to load %s: %v", cfg.File, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if ctrl != nil {
		go handleControls(ctx, player, ctrl)
	}
	if tuiProg != nil {
		go statsUpdateLoop(ctx, player, updateTUI)
	}

	done := make(chan error, 1)
	go func() { done <- player.Play(ctx) }()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var quit <-chan ui.QuitMsg
	if ctrl != nil {
		quit = ctrl.Quit
	}

	select {
	case err = <-done:
		if err == nil {
			log.Printf("Playback finished")
		}
	case <-quit:
		log.Printf("Received quit signal from TUI")
		player.Stop()
		err = <-done
	case <-sigChan:
		log.Printf("Shutdown signal received")
		player.Stop()
		err = <-done
	}

	if closeErr := player.Close(); closeErr != nil {
		log.Printf("Error closing player: %v", closeErr)
	}
	if tuiProg != nil {
		tuiProg.Quit()
		tuiProg.Wait()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "playback failed: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Player stopped")
}

// exit shuts the TUI down before reporting a fatal error
func exit(tuiProg *tea.Program, format string, args ...any) {
	if tuiProg != nil {
		tuiProg.Quit()
		tuiProg.Wait()
	}
	log.Printf(format, args...)
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// handleControls applies TUI requests to the player
func handleControls(ctx context.Context, player *ringplay.Player, ctrl *ui.PlaybackControl) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ctrl.Changes:
			switch msg.Kind {
			case ui.ControlSpeed:
				log.Printf("Speed change: %.2f", msg.Speed)
				if err := player.SetSpeed(msg.Speed); err != nil {
					log.Printf("Speed change rejected: %v", err)
				}
			case ui.ControlLoop:
				log.Printf("Looping: %v", msg.Looping)
				player.SetLooping(msg.Looping)
			case ui.ControlVolume:
				log.Printf("Volume change: %d%%", msg.Volume)
				if err := player.SetVolume(msg.Volume); err != nil {
					log.Printf("Volume change rejected: %v", err)
				}
			case ui.ControlMute:
				log.Printf("Muted: %v", msg.Muted)
				player.Mute(msg.Muted)
			}
		}
	}
}

// statsUpdateLoop periodically updates TUI with playback statistics
func statsUpdateLoop(ctx context.Context, player *ringplay.Player, updateTUI func(tea.Msg)) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := player.Stats()
			state := player.Status()

			if stats.Capacity != 0 {
				updateTUI(ui.StatusMsg{Capacity: stats.Capacity, Target: stats.Target})
			}
			updateTUI(ui.ProgressMsg{
				Position:  stats.Position,
				Speed:     state.Speed,
				Looping:   state.Looping,
				Volume:    state.Volume,
				Muted:     state.Muted,
				Padding:   stats.Padding,
				Windows:   stats.Windows,
				Frames:    stats.FramesWritten,
				Silence:   stats.SilenceFrames,
				Underruns: stats.Underruns,
			})
		}
	}
}
