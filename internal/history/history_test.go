package history

import (
	"errors"
	"fmt"
	"testing"
)

// edit is a test patch op: it rewrites the whole state from one value to another.
type edit struct {
	from, to string
}

var errMismatch = errors.New("state mismatch")

// applyEdits is a strict applier: every op must match the state it is applied to.
func applyEdits(state string, ops []edit) (string, error) {
	for i, op := range ops {
		if state != op.from {
			return "", fmt.Errorf("op %d: have %q want %q: %w", i, state, op.from, errMismatch)
		}
		state = op.to
	}
	return state, nil
}

// Helper to create a history over string states.
func newTestHistory(opts ...Option) *History[string, edit] {
	return New[string, edit](ApplierFunc[string, edit](applyEdits), opts...)
}

// change records an edit from state to next and returns next.
func change(h *History[string, edit], state, next string) string {
	h.Record([]edit{{state, next}}, []edit{{next, state}}, WithLabel(next))
	return next
}

func checkCounts(t *testing.T, h *History[string, edit], undo, redo int) {
	t.Helper()
	if got := h.UndoCount(); got != undo {
		t.Errorf("UndoCount() = %d, want %d", got, undo)
	}
	if got := h.RedoCount(); got != redo {
		t.Errorf("RedoCount() = %d, want %d", got, redo)
	}
	if h.UndoCount()+h.RedoCount() != h.Len() {
		t.Errorf("UndoCount+RedoCount = %d, Len = %d", h.UndoCount()+h.RedoCount(), h.Len())
	}
}

func TestNewHistoryInitialState(t *testing.T) {
	h := newTestHistory()

	checkCounts(t, h, 0, 0)
	if h.Version() != -1 {
		t.Errorf("Version() = %d, want -1", h.Version())
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("new history should have nothing to undo or redo")
	}
	if _, ok := h.Current(); ok {
		t.Error("Current() on empty history should report false")
	}
}

func TestRecordAdvancesCursor(t *testing.T) {
	h := newTestHistory()

	state := "a"
	state = change(h, state, "b")
	checkCounts(t, h, 1, 0)
	if h.Version() != 0 {
		t.Errorf("Version() = %d, want 0", h.Version())
	}

	state = change(h, state, "c")
	checkCounts(t, h, 2, 0)

	cur, ok := h.Current()
	if !ok {
		t.Fatal("Current() returned false after Record")
	}
	if cur.Label != "c" {
		t.Errorf("Current().Label = %q, want %q", cur.Label, "c")
	}
	at, _ := h.Entry(h.Version())
	if at != cur {
		t.Error("entry at cursor is not the recorded entry")
	}
	_ = state
}

func TestRecordCopiesPatches(t *testing.T) {
	h := newTestHistory()

	fwd := []edit{{"a", "b"}}
	inv := []edit{{"b", "a"}}
	entry := h.Record(fwd, inv)

	fwd[0] = edit{"x", "y"}
	inv[0] = edit{"y", "x"}

	if entry.Forward[0] != (edit{"a", "b"}) || entry.Inverse[0] != (edit{"b", "a"}) {
		t.Error("entry patches changed after caller mutation")
	}
	if entry.ID.String() == "" || entry.Timestamp.IsZero() {
		t.Error("entry metadata not set")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")

	undone, err := h.Undo(state)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if undone != "a" {
		t.Errorf("Undo() = %q, want %q", undone, "a")
	}
	checkCounts(t, h, 0, 1)

	redone, err := h.Redo(undone)
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if redone != state {
		t.Errorf("Redo() = %q, want %q", redone, state)
	}
	checkCounts(t, h, 1, 0)
}

func TestFullUndoRestoresStart(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("%d edits", n), func(t *testing.T) {
			h := newTestHistory()
			state := "s0"
			for i := 1; i <= n; i++ {
				state = change(h, state, fmt.Sprintf("s%d", i))
			}

			for i := 0; i < n; i++ {
				var err error
				state, err = h.Undo(state)
				if err != nil {
					t.Fatalf("Undo %d failed: %v", i, err)
				}
			}

			if state != "s0" {
				t.Errorf("state after full undo = %q, want %q", state, "s0")
			}
			checkCounts(t, h, 0, n)
		})
	}
}

func TestUndoAtFloorIsNoop(t *testing.T) {
	h := newTestHistory()

	got, err := h.Undo("unchanged")
	if err != nil {
		t.Fatalf("Undo on empty history returned error: %v", err)
	}
	if got != "unchanged" {
		t.Errorf("Undo() = %q, want input unchanged", got)
	}
	checkCounts(t, h, 0, 0)

	state := change(h, "a", "b")
	state, _ = h.Undo(state)
	got, err = h.Undo(state)
	if err != nil || got != state {
		t.Errorf("Undo past floor = (%q, %v), want (%q, nil)", got, err, state)
	}
	checkCounts(t, h, 0, 1)
}

func TestRedoAtCeilingIsNoop(t *testing.T) {
	h := newTestHistory()

	got, err := h.Redo("unchanged")
	if err != nil || got != "unchanged" {
		t.Errorf("Redo on empty history = (%q, %v)", got, err)
	}

	state := change(h, "a", "b")
	got, err = h.Redo(state)
	if err != nil || got != state {
		t.Errorf("Redo at ceiling = (%q, %v), want (%q, nil)", got, err, state)
	}
	checkCounts(t, h, 1, 0)
}

func TestRecordTruncatesFuture(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")
	state = change(h, state, "c")
	state = change(h, state, "d")

	state, _ = h.Undo(state)
	state, _ = h.Undo(state)
	checkCounts(t, h, 1, 2)
	if state != "b" {
		t.Fatalf("state = %q, want %q", state, "b")
	}

	state = change(h, state, "x")
	checkCounts(t, h, 2, 0)
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}

	got, err := h.Redo(state)
	if err != nil || got != state {
		t.Errorf("Redo after truncation = (%q, %v), want no-op", got, err)
	}

	// The abandoned future must not be reachable by undo either.
	state, _ = h.Undo(state)
	state, _ = h.Undo(state)
	if state != "a" {
		t.Errorf("state after undoing truncated timeline = %q, want %q", state, "a")
	}
}

func TestRecordAfterFullUndo(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")
	state, _ = h.Undo(state)

	state = change(h, state, "z")
	checkCounts(t, h, 1, 0)
	if cur, _ := h.Current(); cur.Label != "z" {
		t.Errorf("Current().Label = %q, want %q", cur.Label, "z")
	}
	state, _ = h.Undo(state)
	if state != "a" {
		t.Errorf("undo = %q, want %q", state, "a")
	}
}

func TestReset(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")
	state = change(h, state, "c")
	state, _ = h.Undo(state)

	h.Reset()

	checkCounts(t, h, 0, 0)
	if h.Version() != -1 || h.Len() != 0 {
		t.Errorf("after Reset Version=%d Len=%d, want -1, 0", h.Version(), h.Len())
	}

	if got, _ := h.Undo(state); got != state {
		t.Error("Undo after Reset should be a no-op")
	}
	if got, _ := h.Redo(state); got != state {
		t.Error("Redo after Reset should be a no-op")
	}
}

func TestUndoApplierFailure(t *testing.T) {
	h := newTestHistory()

	change(h, "a", "b")

	// Current state does not match what the entry was derived from.
	got, err := h.Undo("desynced")
	if err == nil {
		t.Fatal("expected error for mismatched state")
	}
	if !errors.Is(err, errMismatch) {
		t.Errorf("error %v does not wrap applier error", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Direction != "undo" {
		t.Errorf("error %T is not an undo StepError", err)
	}
	if got != "desynced" {
		t.Errorf("state on failure = %q, want input unchanged", got)
	}
	checkCounts(t, h, 1, 0)
}

func TestRedoApplierFailure(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")
	_, _ = h.Undo(state)

	_, err := h.Redo("desynced")
	if !errors.Is(err, errMismatch) {
		t.Fatalf("Redo error = %v, want mismatch", err)
	}
	checkCounts(t, h, 0, 1)
}

func TestBackForward(t *testing.T) {
	h := newTestHistory()

	if _, ok := h.Back(); ok {
		t.Error("Back on empty history should report false")
	}

	state := change(h, "a", "b")

	entry, ok := h.Back()
	if !ok {
		t.Fatal("Back returned false")
	}
	state, err := applyEdits(state, entry.Inverse)
	if err != nil || state != "a" {
		t.Fatalf("applying inverse = (%q, %v)", state, err)
	}
	checkCounts(t, h, 0, 1)

	entry, ok = h.Forward()
	if !ok {
		t.Fatal("Forward returned false")
	}
	state, _ = applyEdits(state, entry.Forward)
	if state != "b" {
		t.Errorf("state = %q, want %q", state, "b")
	}
	if _, ok := h.Forward(); ok {
		t.Error("Forward at ceiling should report false")
	}
}

func TestMaxEntriesEviction(t *testing.T) {
	h := newTestHistory(WithMaxEntries(3))

	state := "s0"
	for i := 1; i <= 5; i++ {
		state = change(h, state, fmt.Sprintf("s%d", i))
	}

	checkCounts(t, h, 3, 0)
	if h.MaxEntries() != 3 {
		t.Errorf("MaxEntries() = %d, want 3", h.MaxEntries())
	}

	for h.CanUndo() {
		var err error
		state, err = h.Undo(state)
		if err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
	}
	if state != "s2" {
		t.Errorf("oldest reachable state = %q, want %q", state, "s2")
	}
}

func TestSetMaxEntriesKeepsTimelineConsistent(t *testing.T) {
	h := newTestHistory()

	state := "s0"
	for i := 1; i <= 5; i++ {
		state = change(h, state, fmt.Sprintf("s%d", i))
	}
	// Cursor at s2: two applied entries, three in the redo future.
	state, _ = h.Undo(state)
	state, _ = h.Undo(state)
	state, _ = h.Undo(state)
	if state != "s2" {
		t.Fatalf("state = %q, want s2", state)
	}

	h.SetMaxEntries(2)
	checkCounts(t, h, 0, 2)

	// Remaining redo entries must still apply on top of the current state.
	state, err := h.Redo(state)
	if err != nil {
		t.Fatalf("Redo after shrink failed: %v", err)
	}
	if state != "s3" {
		t.Errorf("state = %q, want s3", state)
	}
}

func TestUnboundedByDefault(t *testing.T) {
	h := newTestHistory()
	state := "s0"
	for i := 1; i <= 2000; i++ {
		state = change(h, state, fmt.Sprintf("s%d", i))
	}
	if h.Len() != 2000 || h.MaxEntries() != 0 {
		t.Errorf("Len=%d MaxEntries=%d, want 2000, 0", h.Len(), h.MaxEntries())
	}
}

func TestInfoAndPeek(t *testing.T) {
	h := newTestHistory()

	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo on empty history should report false")
	}

	state := change(h, "a", "b")
	state = change(h, state, "c")
	state = change(h, state, "d")
	_, _ = h.Undo(state)

	undo := h.UndoInfo()
	if len(undo) != 2 || undo[0].Label != "b" || undo[1].Label != "c" {
		t.Errorf("UndoInfo() = %+v", undo)
	}
	redo := h.RedoInfo()
	if len(redo) != 1 || redo[0].Label != "d" {
		t.Errorf("RedoInfo() = %+v", redo)
	}

	if info, ok := h.PeekUndo(); !ok || info.Label != "c" {
		t.Errorf("PeekUndo() = %+v, %v", info, ok)
	}
	if info, ok := h.PeekRedo(); !ok || info.Label != "d" || info.ForwardOps != 1 {
		t.Errorf("PeekRedo() = %+v, %v", info, ok)
	}
}

func TestObserverEvents(t *testing.T) {
	var events []Event
	h := newTestHistory(WithObserver(func(ev Event) {
		events = append(events, ev)
	}))

	state := change(h, "a", "b")
	state = change(h, state, "c")
	state, _ = h.Undo(state)
	state = change(h, state, "x")
	state, _ = h.Redo(state) // no-op, no event
	h.Reset()

	want := []EventKind{EventRecorded, EventRecorded, EventUndone, EventTruncated, EventRecorded, EventReset}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Errorf("event %d = %v, want %v", i, events[i].Kind, kind)
		}
	}
	if events[3].Discarded != 1 {
		t.Errorf("truncation discarded %d, want 1", events[3].Discarded)
	}
	if events[5].Discarded != 2 {
		t.Errorf("reset discarded %d, want 2", events[5].Discarded)
	}
	_ = state
}

func TestObserverMayCallBack(t *testing.T) {
	var h *History[string, edit]
	var seen int
	h = newTestHistory(WithObserver(func(ev Event) {
		// Must not deadlock.
		seen = h.UndoCount()
	}))

	change(h, "a", "b")
	if seen != 1 {
		t.Errorf("observer saw UndoCount %d, want 1", seen)
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind     EventKind
		expected string
	}{
		{EventRecorded, "recorded"},
		{EventUndone, "undone"},
		{EventRedone, "redone"},
		{EventReset, "reset"},
		{EventTruncated, "truncated"},
		{EventEvicted, "evicted"},
		{EventKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
