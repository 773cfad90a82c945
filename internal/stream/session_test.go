// ABOUTME: Tests for playback sessions
// ABOUTME: Verifies device lifecycle ordering and cleanup on every exit path
package stream

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	d := newFakeDevice(1000)
	s := NewSession(d, rampSource(5), SessionConfig{SampleRate: 44100, IdleInterval: time.Millisecond})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"open", "start", "stop", "close"}
	if got := d.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected calls %v, got %v", want, got)
	}
	if stats := s.Stats(); stats.Windows != 1 || stats.Capacity != 1000 || stats.Target != 17 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSessionID(t *testing.T) {
	a := NewSession(newFakeDevice(10), rampSource(1), SessionConfig{})
	b := NewSession(newFakeDevice(10), rampSource(1), SessionConfig{})

	if len(a.ID()) != 36 {
		t.Errorf("expected uuid, got %q", a.ID())
	}
	if a.ID() == b.ID() {
		t.Error("expected unique session ids")
	}
}

func TestSessionOpenError(t *testing.T) {
	d := newFakeDevice(1000)
	d.openErr = errors.New("no device")
	s := NewSession(d, rampSource(5), SessionConfig{SampleRate: 44100})

	err := s.Run(context.Background())
	var devErr *DeviceError
	if !errors.As(err, &devErr) || devErr.Op != "open" {
		t.Fatalf("expected open DeviceError, got %v", err)
	}
	if got := d.Calls(); !reflect.DeepEqual(got, []string{"open"}) {
		t.Errorf("unopened device must not be closed, got %v", got)
	}
}

func TestSessionStartErrorClosesDevice(t *testing.T) {
	d := newFakeDevice(1000)
	d.startErr = errors.New("busy")
	s := NewSession(d, rampSource(5), SessionConfig{SampleRate: 44100})

	err := s.Run(context.Background())
	var devErr *DeviceError
	if !errors.As(err, &devErr) || devErr.Op != "start" {
		t.Fatalf("expected start DeviceError, got %v", err)
	}
	if got := d.Calls(); !reflect.DeepEqual(got, []string{"open", "start", "close"}) {
		t.Errorf("expected close after failed start, got %v", got)
	}
}

func TestSessionStreamErrorReleasesDevice(t *testing.T) {
	d := newFakeDevice(1000)
	d.commitErr = errors.New("device lost")
	s := NewSession(d, rampSource(100), SessionConfig{SampleRate: 44100, IdleInterval: time.Millisecond})

	err := s.Run(context.Background())
	var devErr *DeviceError
	if !errors.As(err, &devErr) || devErr.Op != "commit" {
		t.Fatalf("expected commit DeviceError, got %v", err)
	}
	want := []string{"open", "start", "stop", "close"}
	if got := d.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected calls %v, got %v", want, got)
	}
}

func TestSessionStopFromAnotherGoroutine(t *testing.T) {
	d := newFakeDevice(1000)
	s := NewSession(d, NewToneSource(440, 3000, 44100), SessionConfig{SampleRate: 44100, IdleInterval: time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}

	calls := d.Calls()
	if calls[len(calls)-1] != "close" {
		t.Errorf("expected device closed, got %v", calls)
	}
}

func TestSessionContextCancel(t *testing.T) {
	d := newFakeDevice(1000)
	s := NewSession(d, NewToneSource(440, 3000, 44100), SessionConfig{SampleRate: 44100, IdleInterval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := d.Calls(); !reflect.DeepEqual(got, []string{"open", "start", "stop", "close"}) {
		t.Errorf("unexpected calls %v", got)
	}
}

func TestSessionDrainTimeout(t *testing.T) {
	// nothing consumes the ring, so the drain must give up
	d := newFakeDevice(1000)
	s := NewSession(d, rampSource(5), SessionConfig{
		SampleRate:   44100,
		IdleInterval: time.Millisecond,
		DrainTimeout: 20 * time.Millisecond,
	})

	start := time.Now()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected drain wait, returned after %v", elapsed)
	}
}

func TestSessionRunTwice(t *testing.T) {
	d := newFakeDevice(1000)
	s := NewSession(d, rampSource(1), SessionConfig{SampleRate: 44100, IdleInterval: time.Millisecond})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrSessionStarted) {
		t.Errorf("expected ErrSessionStarted, got %v", err)
	}
}
