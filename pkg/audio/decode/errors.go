// ABOUTME: WAV parse error taxonomy
// ABOUTME: Sentinel error kinds wrapped by ParseError with the failing offset
package decode

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedContainer = errors.New("malformed RIFF/WAVE container")
	ErrTruncatedFile      = errors.New("truncated file")
	ErrUnsupportedCodec   = errors.New("unsupported codec")
	ErrUnsupportedLayout  = errors.New("unsupported sample layout")
	ErrInconsistentHeader = errors.New("inconsistent format header")
	ErrOutOfBounds        = errors.New("chunk out of bounds")
)

// ParseError reports where and why a WAV buffer was rejected.
// Kind is one of the sentinel errors above and is matched by errors.Is.
type ParseError struct {
	Kind   error
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("wav: %v at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("wav: %v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func parseErr(kind error, offset int, format string, args ...any) error {
	return &ParseError{
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
