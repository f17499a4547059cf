package script

import (
	"errors"
	"fmt"
)

// Errors returned by the runner.
var (
	// ErrScript is matched by every error raised while running a chunk.
	ErrScript = errors.New("script error")

	// ErrTimeout indicates a chunk ran past its deadline.
	ErrTimeout = errors.New("script timeout")
)

// Error wraps a failure from a Lua chunk.
type Error struct {
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("lua: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports true for ErrScript.
func (e *Error) Is(target error) bool {
	return target == ErrScript
}
