package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Common errors for history operations.
var (
	// ErrCheckpointInvalid indicates the checkpointed entry was truncated,
	// evicted, or cleared by Reset.
	ErrCheckpointInvalid = errors.New("checkpoint no longer in history")
)

// StepError reports a failed undo or redo. The cursor is left unchanged.
type StepError struct {
	Direction string // "undo" or "redo"
	Label     string
	ID        uuid.UUID
	Err       error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s %q: %v", e.Direction, e.Label, e.Err)
	}
	return fmt.Sprintf("%s entry %s: %v", e.Direction, e.ID, e.Err)
}

// Unwrap returns the underlying applier error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Applier applies a patch set to a state and returns the resulting state.
// Implementations must not modify state in place.
type Applier[S, O any] interface {
	Apply(state S, ops []O) (S, error)
}

// ApplierFunc adapts a plain function to the Applier interface.
type ApplierFunc[S, O any] func(state S, ops []O) (S, error)

// Apply calls f(state, ops).
func (f ApplierFunc[S, O]) Apply(state S, ops []O) (S, error) {
	return f(state, ops)
}

// History manages a linear log of reversible edits for one state owner.
type History[S, O any] struct {
	mu sync.Mutex

	applier Applier[S, O]

	// entries[cursor] is the most recently applied entry; -1 means none.
	entries []*Entry[O]
	cursor  int

	// Checkpoint bookkeeping: entries evicted from the front so far, and
	// a counter bumped on every Reset.
	base  int64
	epoch uint64

	// Grouping state
	grouping   bool
	groupLabel string
	groupEdits []pendingEdit[O]

	// Configuration
	maxEntries int
	observers  []Observer
}

// New creates an empty history that applies patches through applier.
func New[S, O any](applier Applier[S, O], opts ...Option) *History[S, O] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &History[S, O]{
		applier:    applier,
		cursor:     -1,
		maxEntries: o.maxEntries,
		observers:  o.observers,
	}
}

// Record appends an edit after the cursor and makes it current.
// Any redo future is always discarded first; there is no truncateFuture
// switch, since entries past a new edit can no longer be redone. While a group is open the edit is
// buffered into the group and Record returns nil.
func (h *History[S, O]) Record(forward, inverse []O, opts ...RecordOption) *Entry[O] {
	var ro recordOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupEdits = append(h.groupEdits, pendingEdit[O]{
			forward: clonePatches(forward),
			inverse: clonePatches(inverse),
		})
		return nil
	}

	entry := newEntry(ro.label, forward, inverse)
	events = h.pushLocked(entry)
	return entry
}

// pushLocked truncates the future, appends entry and enforces the cap.
func (h *History[S, O]) pushLocked(entry *Entry[O]) []Event {
	var events []Event

	if dropped := h.truncateLocked(); dropped > 0 {
		events = append(events, h.eventLocked(EventTruncated, "", dropped))
	}

	h.entries = append(h.entries, entry)
	h.cursor = len(h.entries) - 1

	evicted := h.evictLocked()
	events = append(events, h.eventLocked(EventRecorded, entry.Label, 0))
	if evicted > 0 {
		events = append(events, h.eventLocked(EventEvicted, "", evicted))
	}
	return events
}

// truncateLocked drops every entry after the cursor.
func (h *History[S, O]) truncateLocked() int {
	keep := h.cursor + 1
	dropped := len(h.entries) - keep
	if dropped <= 0 {
		return 0
	}
	clear(h.entries[keep:])
	h.entries = h.entries[:keep]
	return dropped
}

// evictLocked enforces maxEntries. Applied entries go first, oldest first;
// if the log is still too long the far end of the redo future is dropped.
func (h *History[S, O]) evictLocked() int {
	if h.maxEntries <= 0 || len(h.entries) <= h.maxEntries {
		return 0
	}

	excess := len(h.entries) - h.maxEntries

	front := min(excess, h.cursor+1)
	if front > 0 {
		clear(h.entries[:front])
		h.entries = h.entries[front:]
		h.cursor -= front
		h.base += int64(front)
	}

	if tail := excess - front; tail > 0 {
		keep := len(h.entries) - tail
		clear(h.entries[keep:])
		h.entries = h.entries[:keep]
	}

	return excess
}

// Undo applies the inverse of the current entry to current and moves the
// cursor back. With nothing to undo it returns current unchanged.
func (h *History[S, O]) Undo(current S) (S, error) {
	next, _, err := h.UndoStep(current)
	return next, err
}

// UndoStep is Undo that also reports whether the cursor moved. An open
// group is closed first and is the entry undone.
func (h *History[S, O]) UndoStep(current S) (S, bool, error) {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	events = h.closeGroupLocked()

	if h.cursor < 0 {
		return current, false, nil
	}

	entry := h.entries[h.cursor]
	next, err := h.applier.Apply(current, entry.Inverse)
	if err != nil {
		return current, false, &StepError{Direction: "undo", Label: entry.Label, ID: entry.ID, Err: err}
	}

	h.cursor--
	events = append(events, h.eventLocked(EventUndone, entry.Label, 0))
	return next, true, nil
}

// Redo applies the forward patches of the entry after the cursor and moves
// the cursor ahead. With nothing to redo it returns current unchanged.
func (h *History[S, O]) Redo(current S) (S, error) {
	next, _, err := h.RedoStep(current)
	return next, err
}

// RedoStep is Redo that also reports whether the cursor moved.
func (h *History[S, O]) RedoStep(current S) (S, bool, error) {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	events = h.closeGroupLocked()

	if h.cursor >= len(h.entries)-1 {
		return current, false, nil
	}

	entry := h.entries[h.cursor+1]
	next, err := h.applier.Apply(current, entry.Forward)
	if err != nil {
		return current, false, &StepError{Direction: "redo", Label: entry.Label, ID: entry.ID, Err: err}
	}

	h.cursor++
	events = append(events, h.eventLocked(EventRedone, entry.Label, 0))
	return next, true, nil
}

// Back moves the cursor back one step and returns the entry whose Inverse
// the caller must now apply. It returns false when there is nothing to undo.
func (h *History[S, O]) Back() (*Entry[O], bool) {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	events = h.closeGroupLocked()
	if h.cursor < 0 {
		return nil, false
	}

	entry := h.entries[h.cursor]
	h.cursor--
	events = append(events, h.eventLocked(EventUndone, entry.Label, 0))
	return entry, true
}

// Forward moves the cursor ahead one step and returns the entry whose
// Forward patches the caller must now apply. It returns false when there is
// nothing to redo.
func (h *History[S, O]) Forward() (*Entry[O], bool) {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	events = h.closeGroupLocked()
	if h.cursor >= len(h.entries)-1 {
		return nil, false
	}

	h.cursor++
	entry := h.entries[h.cursor]
	events = append(events, h.eventLocked(EventRedone, entry.Label, 0))
	return entry, true
}

// Reset removes all entries and any open group. The caller's state is not
// touched; it simply becomes the new start of history.
func (h *History[S, O]) Reset() {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := len(h.entries)
	h.entries = nil
	h.cursor = -1
	h.base = 0
	h.epoch++
	h.grouping = false
	h.groupLabel = ""
	h.groupEdits = nil

	events = []Event{h.eventLocked(EventReset, "", dropped)}
}

// UndoCount returns the number of undo steps available.
func (h *History[S, O]) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor + 1
}

// RedoCount returns the number of redo steps available.
func (h *History[S, O]) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries) - 1 - h.cursor
}

// CanUndo returns true if undo is available.
func (h *History[S, O]) CanUndo() bool {
	return h.UndoCount() > 0
}

// CanRedo returns true if redo is available.
func (h *History[S, O]) CanRedo() bool {
	return h.RedoCount() > 0
}

// Len returns the number of entries in the log.
func (h *History[S, O]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Version returns the cursor: the index of the most recently applied entry,
// or -1 when none is applied.
func (h *History[S, O]) Version() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Current returns the most recently applied entry.
func (h *History[S, O]) Current() (*Entry[O], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 {
		return nil, false
	}
	return h.entries[h.cursor], true
}

// Entry returns the entry at index i of the log.
func (h *History[S, O]) Entry(i int) (*Entry[O], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.entries) {
		return nil, false
	}
	return h.entries[i], true
}

// UndoInfo returns info about available undo steps, oldest first.
func (h *History[S, O]) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, 0, h.cursor+1)
	for _, entry := range h.entries[:h.cursor+1] {
		result = append(result, entry.Info())
	}
	return result
}

// RedoInfo returns info about available redo steps, next step first.
func (h *History[S, O]) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, 0, len(h.entries)-1-h.cursor)
	for _, entry := range h.entries[h.cursor+1:] {
		result = append(result, entry.Info())
	}
	return result
}

// PeekUndo returns info about the next undo step without taking it.
func (h *History[S, O]) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		return Info{}, false
	}
	return h.entries[h.cursor].Info(), true
}

// PeekRedo returns info about the next redo step without taking it.
func (h *History[S, O]) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.entries)-1 {
		return Info{}, false
	}
	return h.entries[h.cursor+1].Info(), true
}

// SetMaxEntries changes the entry cap. If the log is already longer, entries
// are evicted immediately. Zero or a negative value removes the cap.
func (h *History[S, O]) SetMaxEntries(max int) {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if evicted := h.evictLocked(); evicted > 0 {
		events = []Event{h.eventLocked(EventEvicted, "", evicted)}
	}
}

// MaxEntries returns the entry cap, or 0 when unbounded.
func (h *History[S, O]) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxEntries < 0 {
		return 0
	}
	return h.maxEntries
}

func (h *History[S, O]) eventLocked(kind EventKind, label string, discarded int) Event {
	return Event{
		Kind:      kind,
		Label:     label,
		Discarded: discarded,
		UndoCount: h.cursor + 1,
		RedoCount: len(h.entries) - 1 - h.cursor,
	}
}

// notify must be called without holding the lock.
func (h *History[S, O]) notify(events []Event) {
	for _, ev := range events {
		for _, fn := range h.observers {
			fn(ev)
		}
	}
}
