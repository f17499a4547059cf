// Package history provides linear undo/redo over immutable state values.
//
// The history never touches state directly. Each recorded edit is an Entry
// holding a forward patch set and its exact inverse; stepping backward or
// forward hands the matching patch set to an Applier, which produces the
// next immutable state.
//
// # Log and Cursor
//
// Entries are kept in one ordered log. The cursor (Version) indexes the most
// recently applied entry, or -1 when nothing is applied:
//
//	h := history.New[Doc, Op](engine)
//
//	h.Record(forward, inverse, history.WithLabel("Set title"))
//
//	state, err = h.Undo(state) // applies inverse, cursor moves back
//	state, err = h.Redo(state) // applies forward, cursor moves ahead
//
// UndoCount and RedoCount are derived from the cursor and the log length, so
// UndoCount()+RedoCount() == Len() always holds.
//
// # Truncation
//
// The timeline is linear. Recording while a redo future is pending discards
// that future; it can never be reached again.
//
// # Boundaries
//
// Undo at the start of history and Redo at the end are no-ops that return the
// given state unchanged; UndoStep and RedoStep also report whether the cursor
// moved. Only an Applier failure is reported as an error, and
// it leaves the cursor where it was.
//
// # Grouping
//
// Several records can be folded into one undo unit:
//
//	h.BeginGroup("Rename field")
//	// ... multiple edits ...
//	h.EndGroup()
//
// # Checkpoints
//
// A Checkpoint remembers a cursor position so callers can walk back to it
// with UndoToCheckpoint or forward with RedoToCheckpoint.
package history
