package snapshot

import (
	"bytes"
	"fmt"
	"reflect"
	"regexp"
)

var fileSafeName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SnapshotFunc turns a subject into a Format, synchronously or deferred.
type SnapshotFunc[V any] func(subject V) *Future[Format]

// DiffFunc compares a reference with a candidate of the same kind.
type DiffFunc func(reference, candidate Format) DiffResult

// Strategy is a pure capability bundle describing how to snapshot values of type V and how to diff the results.
//
// It owns no mutable state and is usually declared once as a package-level value.
type Strategy[V any] struct {
	// Name discriminates the format in reference file names, e.g. "dump" or "image".
	Name string

	// PathExtension is the file extension of the reference artifact, without a leading dot.
	PathExtension string

	// Kind is the kind of Format the strategy produces and reads back from a store.
	Kind Kind

	// Snapshot produces the Format for a subject.
	Snapshot SnapshotFunc[V]

	// Diff compares two Formats produced by this strategy. Nil falls back to byte equality.
	Diff DiffFunc
}

// Validate ensures the strategy can be used to address and produce reference artifacts.
func (s Strategy[V]) Validate() error {
	if s.Name == "" {
		return ErrEmptyStrategyName
	}

	if !fileSafeName.MatchString(s.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidStrategyName, s.Name)
	}

	if s.PathExtension == "" {
		return ErrEmptyPathExtension
	}

	if !s.Kind.Valid() {
		return ErrInvalidKind
	}

	if s.Snapshot == nil {
		return ErrNilSnapshotFunc
	}

	return nil
}

// Produce runs the snapshot function and guards against a nil Future.
func (s Strategy[V]) Produce(subject V) *Future[Format] {
	return produce(s.Snapshot, subject)
}

func produce[V any](fn SnapshotFunc[V], subject V) *Future[Format] {
	if fn == nil {
		return Rejected[Format](ErrNilSnapshotFunc)
	}

	future := fn(subject)
	if future == nil {
		return Rejected[Format](ErrNilFuture)
	}

	return future
}

// Sync adapts a synchronous, fallible snapshot function to a SnapshotFunc.
func Sync[V any](fn func(subject V) (Format, error)) SnapshotFunc[V] {
	return func(subject V) *Future[Format] {
		format, err := fn(subject)
		if err != nil {
			return Rejected[Format](err)
		}

		return Resolved(format)
	}
}

// Pullback derives a strategy for B from a strategy for A by transforming each subject first.
// Name, extension, kind, and diff are inherited.
func Pullback[A, B any](s Strategy[A], transform func(B) A) Strategy[B] {
	snapshotA := s.Snapshot

	return Strategy[B]{
		Name:          s.Name,
		PathExtension: s.PathExtension,
		Kind:          s.Kind,
		Diff:          s.Diff,
		Snapshot: func(subject B) *Future[Format] {
			return produce(snapshotA, transform(subject))
		},
	}
}

// AsyncPullback is Pullback for transformations that complete later, e.g. waiting for a layout pass.
func AsyncPullback[A, B any](s Strategy[A], transform func(B) *Future[A]) Strategy[B] {
	snapshotA := s.Snapshot

	return Strategy[B]{
		Name:          s.Name,
		PathExtension: s.PathExtension,
		Kind:          s.Kind,
		Diff:          s.Diff,
		Snapshot: func(subject B) *Future[Format] {
			transformed := transform(subject)
			if transformed == nil {
				return Rejected[Format](ErrNilFuture)
			}

			return Then(transformed, func(value A) *Future[Format] {
				return produce(snapshotA, value)
			})
		},
	}
}

// Erase turns a typed strategy into one accepting any subject, as needed by capability registries.
// Subjects of another type produce ErrUnexpectedSubjectType instead of panicking.
func Erase[V any](s Strategy[V]) Strategy[any] {
	snapshotV := s.Snapshot

	return Strategy[any]{
		Name:          s.Name,
		PathExtension: s.PathExtension,
		Kind:          s.Kind,
		Diff:          s.Diff,
		Snapshot: func(subject any) *Future[Format] {
			var zero V
			if subject == nil && nilable[V]() {
				// the strategy decides how to handle a nil pointer, map, slice or interface
				return produce(snapshotV, zero)
			}

			typed, ok := subject.(V)
			if !ok {
				return Rejected[Format](fmt.Errorf("%w: got %T, want %T", ErrUnexpectedSubjectType, subject, zero))
			}

			return produce(snapshotV, typed)
		},
	}
}

func nilable[V any]() bool {
	switch reflect.TypeFor[V]().Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// Compare is the diffing entry point: it refuses to compare formats of different kinds
// and falls back to byte equality when diff is nil.
func Compare(reference, candidate Format, diff DiffFunc) DiffResult {
	if reference.Kind() != candidate.Kind() {
		return Mismatch(
			fmt.Sprintf("format kinds differ: reference is %s, candidate is %s", reference.Kind(), candidate.Kind()),
			ExpectedAndActual(reference, candidate)...,
		)
	}

	if diff == nil {
		if bytes.Equal(reference.payload, candidate.payload) {
			return Match()
		}

		return Mismatch(
			fmt.Sprintf("payloads differ: reference has %d bytes, candidate has %d bytes", reference.Len(), candidate.Len()),
			ExpectedAndActual(reference, candidate)...,
		)
	}

	return diff(reference, candidate)
}
