package snaptest

import (
	"errors"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

var (
	// ErrSnapshotMismatch is wrapped by failures whose candidate does not match the reference.
	ErrSnapshotMismatch = errors.New("snapshot does not match reference")

	// ErrSnapshotRecorded is wrapped by failures raised after recording a reference.
	ErrSnapshotRecorded = errors.New("snapshot recorded")

	// ErrNilStore is returned when an asserter is configured with a nil store.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNilRunState is returned when an asserter is configured with a nil run state.
	ErrNilRunState = errors.New("run state must not be nil")

	// ErrNilReporter is returned when an asserter is configured with a nil reporter.
	ErrNilReporter = errors.New("reporter must not be nil")

	// ErrInvalidTimeout is returned when an asserter is configured with a non-positive timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// FailureKind classifies why an assertion failed.
type FailureKind int

const (
	FailureMismatch FailureKind = iota + 1
	FailureRecorded
	FailureTimeout
	FailureProduction
	FailureArtifactIO
	FailureUnsupportedCapability
	FailureInvalidAssertion
)

// String returns the kind as used in metric and span attributes.
func (k FailureKind) String() string {
	switch k {
	case FailureMismatch:
		return "mismatch"
	case FailureRecorded:
		return "recorded"
	case FailureTimeout:
		return "timeout"
	case FailureProduction:
		return "production_error"
	case FailureArtifactIO:
		return "artifact_io"
	case FailureUnsupportedCapability:
		return "unsupported_capability"
	case FailureInvalidAssertion:
		return "invalid_assertion"
	default:
		return "unknown"
	}
}

// Failure is the structured outcome of a failed assertion.
//
// Message is self-contained console text; it names the reference and candidate locations and
// includes the diff, so it stays useful when attachments cannot be rendered.
type Failure struct {
	Kind              FailureKind
	Message           string
	Identity          snapshot.Identity
	ReferenceLocation string
	CandidateLocation string
	DiffCommand       string
	Attachments       []snapshot.Attachment
	Err               error
}

// Error implements error.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap exposes the cause, so errors.Is works with ErrSnapshotMismatch, ErrSnapshotRecorded,
// snapshot.ErrProductionTimeout, snapshot.ErrArtifactIO and snapshot.ErrUnsupportedCapability.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Attachment returns the attachment with the given name.
func (f *Failure) Attachment(name string) (snapshot.Attachment, bool) {
	for _, attachment := range f.Attachments {
		if attachment.Name == name {
			return attachment, true
		}
	}

	return snapshot.Attachment{}, false
}
