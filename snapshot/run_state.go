package snapshot

import (
	"sync"
	"sync/atomic"
)

// RunState holds the process-wide recording toggle and the per-test sequence counters.
//
// Counters live in an arena keyed by test scope, so concurrently running tests never
// observe each other's counters. Allocation within one test scope is atomic.
type RunState struct {
	recording atomic.Bool
	mu        sync.Mutex
	scopes    map[string]*scopeCounter
}

type scopeCounter struct {
	mu    sync.Mutex
	next  int
	names map[string]int
}

// Allocation is the result of allocating the next identity slot for a test scope.
type Allocation struct {
	// SequenceIndex is the zero-based position of the assertion within its test.
	SequenceIndex int

	// NameRepeated is set when the sanitized assertion name was already allocated for the same strategy.
	NameRepeated bool

	// FirstInScope is set for the first allocation of a test scope since its last reset.
	FirstInScope bool
}

// NewRunState creates a RunState with recording initially set to recording.
func NewRunState(recording bool) *RunState {
	state := &RunState{scopes: make(map[string]*scopeCounter)}
	state.recording.Store(recording)

	return state
}

// Recording reports whether recording mode is on.
func (s *RunState) Recording() bool {
	return s.recording.Load()
}

// SetRecording sets recording mode without scoping. Prefer Override in tests.
func (s *RunState) SetRecording(recording bool) {
	s.recording.Store(recording)
}

// Override sets recording mode and returns a function restoring the previous value.
// The restore function is idempotent, so it is safe to both defer it and register it as a cleanup.
func (s *RunState) Override(recording bool) (restore func()) {
	previous := s.recording.Swap(recording)

	var once sync.Once

	return func() {
		once.Do(func() {
			s.recording.Store(previous)
		})
	}
}

// Allocate bumps the sequence counter of scope and tracks the assertion name per strategy.
// Names are compared in their sanitized form, since that is what ends up in the path.
func (s *RunState) Allocate(scope, assertionName, strategyName string) Allocation {
	counter, first := s.counterFor(scope)

	counter.mu.Lock()
	defer counter.mu.Unlock()

	allocation := Allocation{
		SequenceIndex: counter.next,
		FirstInScope:  first,
	}
	counter.next++

	if name := Sanitize(assertionName); name != "" {
		key := name + "\x00" + strategyName
		allocation.NameRepeated = counter.names[key] > 0
		counter.names[key]++
	}

	return allocation
}

// Reset forgets the counters of scope, e.g. when the test finishes.
func (s *RunState) Reset(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.scopes, scope)
}

// Allocated returns how many assertions were allocated for scope since its last reset.
func (s *RunState) Allocated(scope string) int {
	s.mu.Lock()
	counter, ok := s.scopes[scope]
	s.mu.Unlock()

	if !ok {
		return 0
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()

	return counter.next
}

func (s *RunState) counterFor(scope string) (*scopeCounter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if counter, ok := s.scopes[scope]; ok {
		return counter, false
	}

	counter := &scopeCounter{names: make(map[string]int)}
	s.scopes[scope] = counter

	return counter, true
}
