// ABOUTME: Tests for the frame ring buffer
// ABOUTME: Tests acquire/commit protocol, wraparound and underrun handling
package output

import (
	"errors"
	"testing"
)

func fill(t *testing.T, rb *RingBuffer, frames int, start int16) {
	t.Helper()
	w, err := rb.Acquire(frames)
	if err != nil {
		t.Fatalf("acquire %d failed: %v", frames, err)
	}
	for i := 0; i < frames; i++ {
		v := start + int16(i)
		w.SetFrame(i, v, -v)
	}
	if err := rb.Commit(w); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}

func TestRingCommitMakesFramesVisible(t *testing.T) {
	rb := NewRingBuffer(8, 2)

	w, err := rb.Acquire(4)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	w.SetFrame(0, 1, 2)

	if rb.Padding() != 0 {
		t.Errorf("expected uncommitted frames to be invisible, padding=%d", rb.Padding())
	}

	if err := rb.Commit(w); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if rb.Padding() != 4 {
		t.Errorf("expected padding 4, got %d", rb.Padding())
	}
	if rb.Free() != 4 {
		t.Errorf("expected 4 free, got %d", rb.Free())
	}
}

func TestRingSingleOpenWindow(t *testing.T) {
	rb := NewRingBuffer(8, 2)

	w, err := rb.Acquire(2)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if _, err := rb.Acquire(2); !errors.Is(err, ErrWindowOpen) {
		t.Errorf("expected ErrWindowOpen, got %v", err)
	}

	if err := rb.Commit(w); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := rb.Commit(w); !errors.Is(err, ErrWindowNotOpen) {
		t.Errorf("expected ErrWindowNotOpen on double commit, got %v", err)
	}
	if err := rb.Commit(nil); !errors.Is(err, ErrWindowNotOpen) {
		t.Errorf("expected ErrWindowNotOpen on nil commit, got %v", err)
	}
}

func TestRingRejectsBadSizes(t *testing.T) {
	rb := NewRingBuffer(8, 2)

	for _, frames := range []int{0, -3} {
		if _, err := rb.Acquire(frames); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("frames=%d: expected ErrInvalidWindow, got %v", frames, err)
		}
	}

	fill(t, rb, 6, 0)
	if _, err := rb.Acquire(3); !errors.Is(err, ErrWindowTooLarge) {
		t.Errorf("expected ErrWindowTooLarge, got %v", err)
	}
}

func TestRingWraparound(t *testing.T) {
	rb := NewRingBuffer(4, 2)

	fill(t, rb, 3, 10)
	out := make([]int16, 4)
	if n := rb.Read(out); n != 2 {
		t.Fatalf("expected 2 frames read, got %d", n)
	}

	// write 3 frames across the end of the buffer
	fill(t, rb, 3, 20)

	out = make([]int16, 8)
	if n := rb.Read(out); n != 4 {
		t.Fatalf("expected 4 frames read, got %d", n)
	}
	want := []int16{12, -12, 20, -20, 21, -21, 22, -22}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}
}

func TestRingUnderrunZeroFills(t *testing.T) {
	rb := NewRingBuffer(4, 2)
	fill(t, rb, 1, 7)

	out := []int16{9, 9, 9, 9, 9, 9}
	if n := rb.Read(out); n != 1 {
		t.Fatalf("expected 1 frame, got %d", n)
	}
	want := []int16{7, -7, 0, 0, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}

	stats := rb.Stats()
	if stats.Underruns != 1 {
		t.Errorf("expected 1 underrun, got %d", stats.Underruns)
	}
	if stats.Consumed != 1 || stats.Committed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRingDiscard(t *testing.T) {
	rb := NewRingBuffer(4, 2)
	fill(t, rb, 3, 0)

	if n := rb.Discard(2); n != 2 {
		t.Errorf("expected 2 discarded, got %d", n)
	}
	if rb.Padding() != 1 {
		t.Errorf("expected padding 1, got %d", rb.Padding())
	}
	if n := rb.Discard(5); n != 1 {
		t.Errorf("expected 1 discarded, got %d", n)
	}
}

func TestRingResetAbandonsWindow(t *testing.T) {
	rb := NewRingBuffer(4, 2)
	fill(t, rb, 2, 0)

	w, err := rb.Acquire(1)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	rb.Reset()

	if rb.Padding() != 0 {
		t.Errorf("expected empty ring after reset, got %d", rb.Padding())
	}
	if err := rb.Commit(w); !errors.Is(err, ErrWindowNotOpen) {
		t.Errorf("expected abandoned window commit to fail, got %v", err)
	}
	if _, err := rb.Acquire(4); err != nil {
		t.Errorf("expected acquire after reset to succeed, got %v", err)
	}
}
