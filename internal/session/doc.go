// Package session ties one state value to its undo history.
//
// A Session owns a state.Container, a history.History and the patch.Engine
// that connects them. Edits flow through Edit: the engine diffs the current
// state against a mutation, the container stores the result, and the
// history records the forward and inverse patch sets. Undo and Redo read
// the state, step the history and write the result back.
//
// There is no package-level state. Callers create a Session per document
// and pass the handle to whatever needs it.
package session
