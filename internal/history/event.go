package history

// EventKind identifies what changed in a History.
type EventKind int

const (
	// EventRecorded indicates a new entry was appended at the cursor.
	EventRecorded EventKind = iota

	// EventUndone indicates the cursor moved back one entry.
	EventUndone

	// EventRedone indicates the cursor moved forward one entry.
	EventRedone

	// EventReset indicates the log was cleared.
	EventReset

	// EventTruncated indicates a pending redo future was discarded.
	EventTruncated

	// EventEvicted indicates entries were dropped to honor the max entries cap.
	EventEvicted
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventRecorded:
		return "recorded"
	case EventUndone:
		return "undone"
	case EventRedone:
		return "redone"
	case EventReset:
		return "reset"
	case EventTruncated:
		return "truncated"
	case EventEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Event describes a completed History transition.
type Event struct {
	Kind EventKind

	// Label is the label of the entry involved, if any.
	Label string

	// Discarded is the number of entries dropped by truncation, eviction,
	// or reset.
	Discarded int

	// Counts after the transition.
	UndoCount int
	RedoCount int
}

// Observer is called after a History transition completes.
// Observers run outside the History lock and may call back into it.
type Observer func(Event)
