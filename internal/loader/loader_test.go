// ABOUTME: Tests for the whole-file loader
// ABOUTME: Covers missing, empty, directory and normal files
package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEntireFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	want := []byte("RIFF\x04\x00\x00\x00WAVE")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadEntireFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLoadEntireFileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing.wav"), ErrNotFound},
		{"empty", empty, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEntireFile(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadEntireFile(dir); err == nil {
		t.Error("expected error for directory")
	}
}
