package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dshills/rewind/internal/history"
	"github.com/dshills/rewind/internal/logging"
	"github.com/dshills/rewind/internal/metrics"
	"github.com/dshills/rewind/internal/patch"
	"github.com/dshills/rewind/internal/state"
)

// Session is the single owner of a state value and its history.
// It is safe for concurrent use.
type Session[S, M, O any] struct {
	mu sync.Mutex

	name    string
	engine  patch.Engine[S, M, O]
	state   *state.Container[S]
	history *history.History[S, O]

	// state at BeginGroup, restored by CancelGroup
	groupStart S

	logger  *log.Logger
	metrics *metrics.Metrics
}

// New creates a session holding initial with an empty history.
func New[S, M, O any](engine patch.Engine[S, M, O], initial S, opts ...Option) *Session[S, M, O] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session[S, M, O]{
		name:    o.name,
		engine:  engine,
		state:   state.New(initial),
		logger:  logging.OrDiscard(o.logger).With("session", o.name),
		metrics: o.metrics,
	}
	s.history = history.New(
		history.ApplierFunc[S, O](s.apply),
		history.WithMaxEntries(o.maxEntries),
		history.WithObserver(s.observe),
	)
	return s
}

// apply runs the engine and reports timing.
func (s *Session[S, M, O]) apply(st S, ops []O) (S, error) {
	start := time.Now()
	next, err := s.engine.Apply(st, ops)
	if s.metrics != nil {
		s.metrics.ObserveApply(time.Since(start), err)
	}
	return next, err
}

func (s *Session[S, M, O]) observe(ev history.Event) {
	s.logger.Debug("history "+ev.Kind.String(),
		"label", ev.Label,
		"discarded", ev.Discarded,
		"undo", ev.UndoCount,
		"redo", ev.RedoCount,
	)
	if s.metrics != nil {
		s.metrics.ObserveEvent(ev)
	}
}

// Name returns the session name.
func (s *Session[S, M, O]) Name() string {
	return s.name
}

// State returns the current state value.
func (s *Session[S, M, O]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Get()
}

// Revision returns how many times the state has been written.
func (s *Session[S, M, O]) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Revision()
}

// Edit applies mutation to the current state and records it under label.
// A mutation that changes nothing records nothing.
func (s *Session[S, M, O]) Edit(label string, mutation M) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, forward, inverse, err := s.engine.Diff(s.state.Get(), mutation)
	if err != nil {
		return fmt.Errorf("edit %q: %w", label, err)
	}
	if len(forward) == 0 {
		return nil
	}

	s.state.Set(next)
	s.history.Record(forward, inverse, history.WithLabel(label))
	return nil
}

// Commit records an edit whose patches were produced outside the session,
// e.g. by a recipe. next must be the result of applying forward to State().
func (s *Session[S, M, O]) Commit(label string, next S, forward, inverse []O) {
	if len(forward) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Set(next)
	s.history.Record(forward, inverse, history.WithLabel(label))
}

// Undo reverts the most recent applied entry, closing an open group first.
// It reports false at the start of history.
func (s *Session[S, M, O]) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, moved, err := s.history.UndoStep(s.state.Get())
	if err != nil {
		s.logger.Error("undo failed", "err", err)
		return false, err
	}
	if moved {
		s.state.Set(next)
	}
	return moved, nil
}

// Redo reapplies the next undone entry. It reports false when there is
// nothing to redo.
func (s *Session[S, M, O]) Redo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, moved, err := s.history.RedoStep(s.state.Get())
	if err != nil {
		s.logger.Error("redo failed", "err", err)
		return false, err
	}
	if moved {
		s.state.Set(next)
	}
	return moved, nil
}

// Reset discards the history and keeps the current state.
func (s *Session[S, M, O]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
}

// Load replaces the state with a fresh value and discards the history.
func (s *Session[S, M, O]) Load(v S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Replace(v)
	s.history.Reset()
}

// UndoCount returns the number of undo steps available.
func (s *Session[S, M, O]) UndoCount() int {
	return s.history.UndoCount()
}

// RedoCount returns the number of redo steps available.
func (s *Session[S, M, O]) RedoCount() int {
	return s.history.RedoCount()
}

// History describes the available undo steps (oldest first) and redo steps
// (next first).
func (s *Session[S, M, O]) History() (undo, redo []history.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.UndoInfo(), s.history.RedoInfo()
}

// Checkpoint marks the current position in history. An open group is
// closed and recorded first.
func (s *Session[S, M, O]) Checkpoint() history.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CreateCheckpoint()
}

// UndoTo undoes back to cp. The state reached is stored even on failure.
func (s *Session[S, M, O]) UndoTo(cp history.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, steps, err := s.history.UndoToCheckpoint(cp, s.state.Get())
	if steps > 0 {
		s.state.Set(next)
	}
	return err
}

// RedoTo redoes forward to cp. The state reached is stored even on failure.
func (s *Session[S, M, O]) RedoTo(cp history.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, steps, err := s.history.RedoToCheckpoint(cp, s.state.Get())
	if steps > 0 {
		s.state.Set(next)
	}
	return err
}

// Group runs fn with every edit it makes combined into one history entry.
// If fn fails the group is dropped and the state is put back as it was.
func (s *Session[S, M, O]) Group(label string, fn func() error) error {
	s.BeginGroup(label)
	if err := fn(); err != nil {
		s.CancelGroup()
		return err
	}
	s.EndGroup()
	return nil
}

// BeginGroup opens an edit group. Groups are closed by EndGroup, CancelGroup,
// or implicitly by Undo and Redo. Nested calls are ignored.
func (s *Session[S, M, O]) BeginGroup(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history.IsGrouping() {
		return
	}
	s.groupStart = s.state.Get()
	s.history.BeginGroup(label)
}

// EndGroup closes the open group and records it as one entry.
func (s *Session[S, M, O]) EndGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.EndGroup()
}

// CancelGroup drops the open group and restores the state it started from.
func (s *Session[S, M, O]) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.IsGrouping() {
		return
	}
	s.history.CancelGroup()
	s.state.Set(s.groupStart)
}

// IsGrouping reports whether a group is open.
func (s *Session[S, M, O]) IsGrouping() bool {
	return s.history.IsGrouping()
}

// SetMaxEntries changes the history cap.
func (s *Session[S, M, O]) SetMaxEntries(n int) {
	s.history.SetMaxEntries(n)
}

// MaxEntries returns the history cap, 0 when unbounded.
func (s *Session[S, M, O]) MaxEntries() int {
	return s.history.MaxEntries()
}
