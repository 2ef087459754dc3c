// Package snapshot provides the core abstractions of the snapshot testing engine.
//
// A snapshot is the canonical, persistable representation of a test subject at one point in time.
// This package defines how such a representation looks (Format), how it is produced from a subject
// (Strategy, Future), how two representations are compared (DiffFunc, DiffResult, Compare),
// and how a reference artifact is addressed on disk (Identity, ResolvePath).
//
// The package does not know about concrete output formats or where references are stored:
//   - built-in strategies live in the strategies package
//   - diff algorithms live in the diffing package
//   - artifact stores live in the fsstore and pgstore packages
//   - the test-facing assertion workflow lives in the snaptest package
//
// Key types:
//   - Format: immutable snapshot payload tagged as textual or binary
//   - Strategy: capability bundle that snapshots a subject and diffs two Formats
//   - Future: synchronous or deferred completion of snapshot production
//   - DiffResult: Match, or Mismatch with message and named attachments
//   - Identity: address of one reference artifact within one test run
//   - RunState: recording toggle and per-test sequence counters
//
// Common usage pattern:
//
//	upper := snapshot.Pullback(strategies.Text, strings.ToUpper)
//
//	format, err := upper.Snapshot("hello").Await(ctx)
//	if err != nil {
//		// handle error
//	}
//
//	result := snapshot.Compare(reference, format, upper.Diff)
//	if !result.IsMatch() {
//		fmt.Println(result.Message())
//	}
package snapshot
