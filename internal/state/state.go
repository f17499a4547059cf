// Package state holds the current value of an immutable state.
//
// A Container knows nothing about history. Callers that want undo and redo
// pair it with a history.History, typically through a session.Session.
package state

// Container stores the current state value and counts replacements.
// It is not safe for concurrent use; the owner serializes access.
type Container[S any] struct {
	value    S
	revision uint64
}

// New returns a container holding initial at revision 0.
func New[S any](initial S) *Container[S] {
	return &Container[S]{value: initial}
}

// Get returns the current value.
func (c *Container[S]) Get() S {
	return c.value
}

// Set stores v as the current value.
func (c *Container[S]) Set(v S) {
	c.value = v
	c.revision++
}

// Replace installs a fresh value, as when a new document is loaded.
func (c *Container[S]) Replace(v S) {
	c.Set(v)
}

// Revision returns the number of times the value has been written.
func (c *Container[S]) Revision() uint64 {
	return c.revision
}
