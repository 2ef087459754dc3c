package snaptest

import "fmt"

// Recording turns recording on for the default Asserter until tb and its subtests complete.
//
// Recording is process-wide: tests that call it must not run in parallel with tests that assert.
func Recording(tb TB) {
	tb.Helper()

	asserter, err := Default()
	if err != nil {
		tb.Error(fmt.Sprintf("snapshot asserter is not configured: %v", err))
		return
	}

	asserter.Recording(tb)
}

// Recording turns recording on until tb completes, then restores the previous mode.
func (a *Asserter) Recording(tb TB) {
	tb.Helper()

	restore := a.state.Override(true)
	tb.Cleanup(restore)
}

// WithRecording runs fn with recording turned on and restores the previous mode afterwards,
// also when fn panics.
func (a *Asserter) WithRecording(fn func()) {
	restore := a.state.Override(true)
	defer restore()

	fn()
}
