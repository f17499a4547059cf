package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded edit. It is never modified after Record returns it.
type Entry[O any] struct {
	ID        uuid.UUID // Stable identity, used by checkpoints
	Label     string    // Human-readable description
	Forward   []O       // Reapplies the edit
	Inverse   []O       // Reverts the edit exactly
	Timestamp time.Time // When the edit was recorded
}

// newEntry copies the patch sets so later caller mutation cannot leak in.
func newEntry[O any](label string, forward, inverse []O) *Entry[O] {
	return &Entry[O]{
		ID:        uuid.New(),
		Label:     label,
		Forward:   clonePatches(forward),
		Inverse:   clonePatches(inverse),
		Timestamp: time.Now(),
	}
}

// Info returns a read-only description of the entry.
func (e *Entry[O]) Info() Info {
	return Info{
		ID:         e.ID,
		Label:      e.Label,
		Timestamp:  e.Timestamp,
		ForwardOps: len(e.Forward),
		InverseOps: len(e.Inverse),
	}
}

// Info provides read-only info about an entry.
// Used for displaying undo/redo history to users.
type Info struct {
	ID         uuid.UUID
	Label      string
	Timestamp  time.Time
	ForwardOps int
	InverseOps int
}

// pendingEdit is a record buffered while a group is open.
type pendingEdit[O any] struct {
	forward []O
	inverse []O
}

// combine folds grouped edits into a single entry. Forward patches run in
// recording order; inverse patches run in the opposite order.
func combine[O any](label string, edits []pendingEdit[O]) *Entry[O] {
	var fwdLen, invLen int
	for _, e := range edits {
		fwdLen += len(e.forward)
		invLen += len(e.inverse)
	}

	forward := make([]O, 0, fwdLen)
	for _, e := range edits {
		forward = append(forward, e.forward...)
	}

	inverse := make([]O, 0, invLen)
	for i := len(edits) - 1; i >= 0; i-- {
		inverse = append(inverse, edits[i].inverse...)
	}

	return &Entry[O]{
		ID:        uuid.New(),
		Label:     label,
		Forward:   forward,
		Inverse:   inverse,
		Timestamp: time.Now(),
	}
}

func clonePatches[O any](ops []O) []O {
	if ops == nil {
		return nil
	}
	out := make([]O, len(ops))
	copy(out, ops)
	return out
}
