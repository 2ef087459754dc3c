package helper

import (
	"fmt"
	"slices"
	"sync"
)

// TBSpy stands in for *testing.T where a test needs to observe reported failures instead of failing itself.
// Cleanups are collected and only run by RunCleanups, in reverse order of registration.
type TBSpy struct {
	name        string
	errors      []string
	logs        []string
	cleanups    []func()
	helperCalls int
	mu          sync.Mutex
}

// NewTBSpy creates a TBSpy reporting the given test name.
func NewTBSpy(name string) *TBSpy {
	return &TBSpy{name: name}
}

// Helper implements TB.
func (s *TBSpy) Helper() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.helperCalls++
}

// Name implements TB.
func (s *TBSpy) Name() string {
	return s.name
}

// Error implements TB.
func (s *TBSpy) Error(args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, fmt.Sprint(args...))
}

// Log implements TB.
func (s *TBSpy) Log(args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, fmt.Sprint(args...))
}

// Cleanup implements TB.
func (s *TBSpy) Cleanup(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Failed reports whether Error was called.
func (s *TBSpy) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.errors) > 0
}

// Errors returns a copy of all reported errors.
func (s *TBSpy) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.errors)
}

// Logs returns a copy of all logged lines.
func (s *TBSpy) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.logs)
}

// HelperCalls returns how often Helper was called.
func (s *TBSpy) HelperCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.helperCalls
}

// RunCleanups runs and forgets all registered cleanups, last registered first.
func (s *TBSpy) RunCleanups() {
	s.mu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Reset forgets reported errors and logs, e.g. between two simulated runs.
func (s *TBSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors = nil
	s.logs = nil
	s.helperCalls = 0
}
