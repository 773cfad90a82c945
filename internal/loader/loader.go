// ABOUTME: Whole-file loader for audio input
// ABOUTME: Reads a file into one buffer that decoded clips borrow from
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrEmptyFile = errors.New("file is empty")
)

// LoadEntireFile reads path into memory. The returned buffer must outlive
// any clip parsed from it.
func LoadEntireFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return data, nil
}
