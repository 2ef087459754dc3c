package snapshot

import (
	"errors"
)

var (
	// ErrProductionTimeout is returned when deferred snapshot production did not complete in time.
	ErrProductionTimeout = errors.New("snapshot production did not complete")

	// ErrUnsupportedCapability is returned when no strategy can be resolved for a capability.
	ErrUnsupportedCapability = errors.New("no strategy registered for capability")

	// ErrArtifactIO is returned when reading or writing a reference artifact failed for a reason other than absence.
	ErrArtifactIO = errors.New("reference artifact i/o failed")

	// ErrInvalidLocation is returned when an artifact location is empty, absolute, or escapes the store root.
	ErrInvalidLocation = errors.New("invalid artifact location")

	// ErrEmptyStrategyName is returned when a strategy has no name.
	ErrEmptyStrategyName = errors.New("strategy name must not be empty")

	// ErrInvalidStrategyName is returned when a strategy name contains characters that are not file-safe.
	ErrInvalidStrategyName = errors.New("strategy name must only contain letters, digits, '_' and '-'")

	// ErrEmptyPathExtension is returned when a strategy has no path extension.
	ErrEmptyPathExtension = errors.New("strategy path extension must not be empty")

	// ErrNilSnapshotFunc is returned when a strategy has no snapshot function.
	ErrNilSnapshotFunc = errors.New("strategy snapshot function must not be nil")

	// ErrInvalidKind is returned when a Kind is neither textual nor binary.
	ErrInvalidKind = errors.New("format kind must be text or binary")

	// ErrEmptyTestScope is returned when an identity has no test scope.
	ErrEmptyTestScope = errors.New("test scope must not be empty")

	// ErrNegativeSequenceIndex is returned when an identity has a negative sequence index.
	ErrNegativeSequenceIndex = errors.New("sequence index must not be negative")

	// ErrNumericAssertionName is returned for assertion names made of digits only, which are reserved
	// for unnamed assertions.
	ErrNumericAssertionName = errors.New("assertion name must not consist of digits only")

	// ErrUnexpectedSubjectType is returned when a type-erased strategy receives a subject of the wrong type.
	ErrUnexpectedSubjectType = errors.New("subject type does not match strategy")

	// ErrProductionPanicked is returned when snapshot production panicked.
	ErrProductionPanicked = errors.New("snapshot production panicked")

	// ErrFormatKindMismatch is returned when a strategy produced a Format of another kind than it declares.
	ErrFormatKindMismatch = errors.New("produced format kind does not match strategy kind")

	// ErrNilFuture is returned when a snapshot function returns no Future.
	ErrNilFuture = errors.New("snapshot function returned a nil future")
)
