package history

import "github.com/google/uuid"

// BeginGroup starts an edit group.
// Edits recorded while grouping are combined into a single undo unit.
func (h *History[S, O]) BeginGroup(label string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupLabel = label
	h.groupEdits = nil
}

// EndGroup finishes an edit group and records it as one entry.
// An empty group records nothing.
func (h *History[S, O]) EndGroup() {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	events = h.closeGroupLocked()
}

// closeGroupLocked records the open group, if any.
func (h *History[S, O]) closeGroupLocked() []Event {
	if !h.grouping {
		return nil
	}

	edits := h.groupEdits
	label := h.groupLabel
	h.grouping = false
	h.groupLabel = ""
	h.groupEdits = nil

	if len(edits) == 0 {
		return nil
	}
	return h.pushLocked(combine(label, edits))
}

// CancelGroup discards the open group without adding it to history.
// Note: edits already applied to the state are not reverted.
func (h *History[S, O]) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupLabel = ""
	h.groupEdits = nil
}

// IsGrouping returns true if an edit group is open.
func (h *History[S, O]) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// GroupScope provides a convenient way to group edits using defer.
// Usage:
//
//	func renameAll(h *history.History[Doc, Op]) {
//	    defer h.GroupScope("Rename all").End()
//	    // ... multiple records ...
//	}
type GroupScope struct {
	end    func()
	cancel func()
	active bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History[S, O]) GroupScope(label string) *GroupScope {
	h.BeginGroup(label)
	return &GroupScope{
		end:    h.EndGroup,
		cancel: h.CancelGroup,
		active: true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.end()
		g.active = false
	}
}

// Cancel cancels the group scope without recording it.
func (g *GroupScope) Cancel() {
	if g.active {
		g.cancel()
		g.active = false
	}
}

// Transaction runs fn within a group. If fn returns an error the group is
// cancelled; otherwise it is recorded as one entry.
func (h *History[S, O]) Transaction(label string, fn func() error) error {
	h.BeginGroup(label)

	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}

	h.EndGroup()
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	position int64 // absolute log position of the applied entry, -1 for the start
	id       uuid.UUID
	epoch    uint64
}

// CreateCheckpoint creates a checkpoint at the current cursor. An open group
// is closed first so the checkpoint covers its edits.
func (h *History[S, O]) CreateCheckpoint() Checkpoint {
	var events []Event
	defer func() { h.notify(events) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	events = h.closeGroupLocked()

	cp := Checkpoint{position: -1, epoch: h.epoch}
	if h.cursor >= 0 {
		cp.position = h.base + int64(h.cursor)
		cp.id = h.entries[h.cursor].ID
	}
	return cp
}

// resolve maps a checkpoint to a cursor value in the current log.
func (h *History[S, O]) resolve(cp Checkpoint) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cp.epoch != h.epoch {
		return 0, ErrCheckpointInvalid
	}

	if cp.position < 0 {
		if h.base != 0 {
			return 0, ErrCheckpointInvalid
		}
		return -1, nil
	}

	idx := cp.position - h.base
	if idx < 0 || idx >= int64(len(h.entries)) || h.entries[idx].ID != cp.id {
		return 0, ErrCheckpointInvalid
	}
	return int(idx), nil
}

// UndoToCheckpoint undoes every entry applied since the checkpoint and
// returns the state reached with the number of entries undone. On failure the
// state reached so far is returned along with the error.
func (h *History[S, O]) UndoToCheckpoint(cp Checkpoint, current S) (S, int, error) {
	h.EndGroup()

	steps := 0
	for {
		target, err := h.resolve(cp)
		if err != nil {
			return current, steps, err
		}
		if h.Version() <= target {
			return current, steps, nil
		}

		next, moved, err := h.UndoStep(current)
		if err != nil {
			return current, steps, err
		}
		if !moved {
			return current, steps, nil
		}
		current = next
		steps++
	}
}

// RedoToCheckpoint redoes entries until the cursor reaches the checkpoint.
// This only works if the redo future still holds the checkpointed entry.
func (h *History[S, O]) RedoToCheckpoint(cp Checkpoint, current S) (S, int, error) {
	h.EndGroup()

	steps := 0
	for {
		target, err := h.resolve(cp)
		if err != nil {
			return current, steps, err
		}
		if h.Version() >= target {
			return current, steps, nil
		}

		next, moved, err := h.RedoStep(current)
		if err != nil {
			return current, steps, err
		}
		if !moved {
			return current, steps, nil
		}
		current = next
		steps++
	}
}
