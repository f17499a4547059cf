// Package patch defines the contract between a history and the code that
// produces and applies patch sets to immutable state values.
package patch

import (
	"errors"
	"fmt"
)

// Errors returned by patch engines.
var (
	// ErrInvalidPatchApplication indicates a patch set was applied to a state
	// it was not derived from. History and state have desynchronized; this is
	// a programmer error and must not be absorbed.
	ErrInvalidPatchApplication = errors.New("invalid patch application")

	// ErrInvalidMutation indicates a mutation cannot be turned into patches,
	// e.g. deleting a path that does not exist.
	ErrInvalidMutation = errors.New("invalid mutation")
)

// Engine produces and applies patch sets for state values of type S.
// M describes a forward edit and O is a single patch operation.
//
// Implementations never modify their inputs. For any (forward, inverse)
// produced by Diff from s:
//
//	Apply(Apply(s, forward), inverse) == s
//	Apply(Apply(next, inverse), forward) == next
type Engine[S, M, O any] interface {
	// Diff applies mutation to state and returns the new state together with
	// the forward patch set and its exact inverse.
	Diff(state S, mutation M) (next S, forward, inverse []O, err error)

	// Apply applies ops in order and returns the resulting state.
	Apply(state S, ops []O) (S, error)
}

// ApplyError describes which operation of a patch set failed to apply.
type ApplyError struct {
	// Index is the position of the failing op within the patch set.
	Index int
	// Op is a short rendering of the failing op.
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply op %d (%s): %v", e.Index, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidPatchApplication for every ApplyError, so callers
// can detect desynchronization without knowing the engine's own errors.
func (e *ApplyError) Is(target error) bool {
	return target == ErrInvalidPatchApplication
}
