package history

import (
	"errors"
	"testing"
)

func TestGroupRecordsOneEntry(t *testing.T) {
	h := newTestHistory()

	h.BeginGroup("typing")
	if !h.IsGrouping() {
		t.Fatal("IsGrouping() = false after BeginGroup")
	}
	state := change(h, "a", "ab")
	state = change(h, state, "abc")
	h.EndGroup()

	checkCounts(t, h, 1, 0)
	cur, _ := h.Current()
	if cur.Label != "typing" {
		t.Errorf("group label = %q, want %q", cur.Label, "typing")
	}
	if len(cur.Forward) != 2 || len(cur.Inverse) != 2 {
		t.Fatalf("group has %d/%d ops, want 2/2", len(cur.Forward), len(cur.Inverse))
	}

	undone, err := h.Undo(state)
	if err != nil {
		t.Fatalf("Undo group failed: %v", err)
	}
	if undone != "a" {
		t.Errorf("Undo group = %q, want %q", undone, "a")
	}

	redone, err := h.Redo(undone)
	if err != nil || redone != "abc" {
		t.Errorf("Redo group = (%q, %v), want abc", redone, err)
	}
}

func TestRecordInGroupReturnsNil(t *testing.T) {
	h := newTestHistory()
	h.BeginGroup("g")
	if e := h.Record([]edit{{"a", "b"}}, []edit{{"b", "a"}}); e != nil {
		t.Error("Record inside group should return nil")
	}
	h.CancelGroup()
}

func TestEmptyGroupRecordsNothing(t *testing.T) {
	h := newTestHistory()
	h.BeginGroup("empty")
	h.EndGroup()
	checkCounts(t, h, 0, 0)
}

func TestNestedBeginGroupIgnored(t *testing.T) {
	h := newTestHistory()

	h.BeginGroup("outer")
	state := change(h, "a", "b")
	h.BeginGroup("inner")
	change(h, state, "c")
	h.EndGroup()

	checkCounts(t, h, 1, 0)
	cur, _ := h.Current()
	if cur.Label != "outer" {
		t.Errorf("label = %q, want outer", cur.Label)
	}
}

func TestCancelGroup(t *testing.T) {
	h := newTestHistory()

	h.BeginGroup("discard")
	change(h, "a", "b")
	h.CancelGroup()

	if h.IsGrouping() {
		t.Error("IsGrouping() = true after CancelGroup")
	}
	checkCounts(t, h, 0, 0)
}

func TestUndoClosesOpenGroup(t *testing.T) {
	h := newTestHistory()

	h.BeginGroup("g")
	state := change(h, "a", "b")
	state = change(h, state, "c")

	state, err := h.Undo(state)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if state != "a" {
		t.Errorf("Undo with open group = %q, want a", state)
	}
	if h.IsGrouping() {
		t.Error("group still open after Undo")
	}
	checkCounts(t, h, 0, 1)
}

func TestResetClearsGroup(t *testing.T) {
	h := newTestHistory()
	h.BeginGroup("g")
	change(h, "a", "b")
	h.Reset()
	if h.IsGrouping() {
		t.Error("group still open after Reset")
	}
	h.EndGroup()
	checkCounts(t, h, 0, 0)
}

func TestGroupScope(t *testing.T) {
	h := newTestHistory()

	func() {
		defer h.GroupScope("scoped").End()
		state := change(h, "a", "b")
		change(h, state, "c")
	}()

	checkCounts(t, h, 1, 0)

	scope := h.GroupScope("cancelled")
	change(h, "c", "d")
	scope.Cancel()
	scope.End() // no effect after Cancel

	checkCounts(t, h, 1, 0)
}

func TestTransaction(t *testing.T) {
	h := newTestHistory()

	err := h.Transaction("ok", func() error {
		state := change(h, "a", "b")
		change(h, state, "c")
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	checkCounts(t, h, 1, 0)

	boom := errors.New("boom")
	err = h.Transaction("fail", func() error {
		change(h, "c", "d")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Transaction error = %v, want boom", err)
	}
	checkCounts(t, h, 1, 0)
}

func TestCheckpointRoundTrip(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")
	cp := h.CreateCheckpoint()
	state = change(h, state, "c")
	state = change(h, state, "d")

	state, steps, err := h.UndoToCheckpoint(cp, state)
	if err != nil {
		t.Fatalf("UndoToCheckpoint failed: %v", err)
	}
	if state != "b" || steps != 2 {
		t.Errorf("UndoToCheckpoint = (%q, %d), want (b, 2)", state, steps)
	}
	checkCounts(t, h, 1, 2)

	// Already at or behind the checkpoint: nothing to undo.
	again, steps, err := h.UndoToCheckpoint(cp, state)
	if err != nil || again != state || steps != 0 {
		t.Errorf("second UndoToCheckpoint = (%q, %d, %v), want no-op", again, steps, err)
	}
	checkCounts(t, h, 1, 2)
}

func TestRedoToCheckpoint(t *testing.T) {
	h := newTestHistory()

	state := change(h, "a", "b")
	state = change(h, state, "c")
	cp := h.CreateCheckpoint()

	state, _ = h.Undo(state)
	state, _ = h.Undo(state)

	state, steps, err := h.RedoToCheckpoint(cp, state)
	if err != nil {
		t.Fatalf("RedoToCheckpoint failed: %v", err)
	}
	if state != "c" || steps != 2 {
		t.Errorf("RedoToCheckpoint = (%q, %d), want (c, 2)", state, steps)
	}
	checkCounts(t, h, 2, 0)
}

func TestCheckpointAtStart(t *testing.T) {
	h := newTestHistory()
	start := h.CreateCheckpoint()

	state := change(h, "a", "b")
	state = change(h, state, "c")

	state, _, err := h.UndoToCheckpoint(start, state)
	if err != nil || state != "a" {
		t.Errorf("UndoToCheckpoint(start) = (%q, %v), want a", state, err)
	}
}

func TestCheckpointInvalidation(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(h *History[string, edit]) (Checkpoint, string)
	}{
		{
			name: "truncated",
			prepare: func(h *History[string, edit]) (Checkpoint, string) {
				state := change(h, "a", "b")
				cp := h.CreateCheckpoint()
				state, _ = h.Undo(state)
				return cp, change(h, state, "x")
			},
		},
		{
			name: "evicted",
			prepare: func(h *History[string, edit]) (Checkpoint, string) {
				h.SetMaxEntries(1)
				state := change(h, "a", "b")
				cp := h.CreateCheckpoint()
				return cp, change(h, state, "c")
			},
		},
		{
			name: "start evicted",
			prepare: func(h *History[string, edit]) (Checkpoint, string) {
				h.SetMaxEntries(1)
				cp := h.CreateCheckpoint()
				state := change(h, "a", "b")
				return cp, change(h, state, "c")
			},
		},
		{
			name: "reset",
			prepare: func(h *History[string, edit]) (Checkpoint, string) {
				cp := h.CreateCheckpoint()
				state := change(h, "a", "b")
				h.Reset()
				return cp, state
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHistory()
			cp, state := tt.prepare(h)

			got, steps, err := h.UndoToCheckpoint(cp, state)
			if !errors.Is(err, ErrCheckpointInvalid) {
				t.Errorf("UndoToCheckpoint error = %v, want ErrCheckpointInvalid", err)
			}
			if got != state || steps != 0 {
				t.Errorf("invalid checkpoint moved: %q -> %q in %d steps", state, got, steps)
			}
			if _, _, err := h.RedoToCheckpoint(cp, state); !errors.Is(err, ErrCheckpointInvalid) {
				t.Errorf("RedoToCheckpoint error = %v, want ErrCheckpointInvalid", err)
			}
		})
	}
}

func TestUndoStepClosesOpenGroup(t *testing.T) {
	h := newTestHistory()
	state := change(h, "a", "b")

	h.BeginGroup("g")
	state = change(h, state, "c")

	got, moved, err := h.UndoStep(state)
	if err != nil || !moved {
		t.Fatalf("UndoStep = (%q, %v, %v), want a move", got, moved, err)
	}
	if got != "b" {
		t.Errorf("state = %q, want b", got)
	}
	checkCounts(t, h, 1, 1)

	got, moved, err = h.RedoStep(got)
	if err != nil || !moved || got != "c" {
		t.Errorf("RedoStep = (%q, %v, %v), want (c, true, nil)", got, moved, err)
	}

	_, moved, _ = h.RedoStep(got)
	if moved {
		t.Error("RedoStep at the end reported a move")
	}
}

func TestCheckpointClosesOpenGroup(t *testing.T) {
	h := newTestHistory()
	state := change(h, "a", "b")

	h.BeginGroup("g")
	state = change(h, state, "c")
	cp := h.CreateCheckpoint()

	if h.IsGrouping() {
		t.Error("group still open after CreateCheckpoint")
	}
	checkCounts(t, h, 2, 0)

	got, steps, err := h.UndoToCheckpoint(cp, state)
	if err != nil || got != "c" || steps != 0 {
		t.Errorf("UndoToCheckpoint = (%q, %d, %v), want (c, 0, nil)", got, steps, err)
	}
	checkCounts(t, h, 2, 0)
}
