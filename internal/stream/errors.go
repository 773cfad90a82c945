// ABOUTME: Stream error types
// ABOUTME: DeviceError wraps output device failures with the failing operation
package stream

import "fmt"

// DeviceError reports a failed output device call. It is fatal to the session.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func deviceErr(op string, err error) error {
	return &DeviceError{Op: op, Err: err}
}
