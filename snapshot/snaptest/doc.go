// Package snaptest is the test-facing entry point of the snapshot engine.
//
// An assertion produces a snapshot of the subject with a strategy, then either records it as the
// new reference (when recording is on or no reference exists) or compares it against the stored
// reference. Recording always reports a failure by default, so a recording run is never green.
// Every problem, whether a mismatch, a timeout, an i/o error or an unknown capability, is turned
// into exactly one Failure and reported at the call site.
//
// Typical use with the default asserter, configured from SNAPSHOT_* environment variables:
//
//	func TestGreeting(t *testing.T) {
//		snaptest.Assert(t, greet("world"), strategies.Text)
//		snaptest.AssertAs(t, user, strategies.CapabilityJSON, snaptest.Named("user"))
//	}
//
// Recording can be scoped to one test and is restored when the test ends:
//
//	snaptest.Recording(t)
//
// A dedicated Asserter allows other stores, a diff tool, and observability hooks:
//
//	asserter, err := snaptest.New(
//		snaptest.WithStore(store),
//		snaptest.WithDiffTool(snaptest.MustCommandDiffTool("ksdiff"), false),
//		snaptest.WithLogger(slog.Default()),
//	)
//	snaptest.AssertWith(asserter, t, img, strategies.Image)
package snaptest
