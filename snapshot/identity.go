package snapshot

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

const (
	pathSeparator       = "."
	ordinalSeparator    = "."
	sanitizeReplacement = "_"
	defaultFailureDir   = "__failures__"
)

var (
	nonFileSafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	digitsOnly  = regexp.MustCompile(`^[0-9]+$`)
)

// Identity uniquely addresses one reference artifact within one test run.
//
// It is allocated fresh per assertion call and is not persisted beyond path resolution.
type Identity struct {
	// Suite groups the references of one test file, e.g. "user_test". Optional.
	Suite string

	// TestScope is the name of the running test, including subtest segments.
	TestScope string

	// AssertionName is the optional caller-supplied name of the assertion.
	AssertionName string

	// SequenceIndex is the zero-based position of the assertion within its test.
	SequenceIndex int

	// NameRepeated is set when AssertionName was already used with the same strategy in this test.
	NameRepeated bool

	// StrategyName is the name of the strategy that produced the snapshot.
	StrategyName string
}

// Validate ensures the identity can be turned into a path.
func (id Identity) Validate() error {
	if Sanitize(id.TestScope) == "" {
		return ErrEmptyTestScope
	}

	if id.SequenceIndex < 0 {
		return ErrNegativeSequenceIndex
	}

	if digitsOnly.MatchString(Sanitize(id.AssertionName)) {
		return fmt.Errorf("%w: %q", ErrNumericAssertionName, id.AssertionName)
	}

	if id.StrategyName == "" {
		return ErrEmptyStrategyName
	}

	return nil
}

// Token returns the assertion part of the file name: the sanitized name, or the one-based
// position when the name is absent. A repeated name gets the position appended after a dot,
// which sanitized names never contain, so the three forms cannot collide.
func (id Identity) Token() string {
	ordinal := strconv.Itoa(id.SequenceIndex + 1)

	name := Sanitize(id.AssertionName)
	if name == "" {
		return ordinal
	}

	if id.NameRepeated {
		return name + ordinalSeparator + ordinal
	}

	return name
}

// ResolvePath returns the slash-separated location of the reference artifact for id,
// relative to a store root:
//
//	[<suite>/]<testScope>.<assertionName-or-index>.<strategyName>.<pathExtension>
//
// It is a pure function: the same identity always yields the same location.
func ResolvePath(id Identity, pathExtension string) string {
	parts := []string{Sanitize(id.TestScope), id.Token(), id.StrategyName}

	if extension := strings.TrimPrefix(pathExtension, pathSeparator); extension != "" {
		parts = append(parts, extension)
	}

	file := strings.Join(parts, pathSeparator)

	if suite := Sanitize(id.Suite); suite != "" {
		return path.Join(suite, file)
	}

	return file
}

// FailurePath returns the sibling location where a mismatching candidate is kept for inspection.
// An empty failureDir selects the default "__failures__".
func FailurePath(failureDir, location string) string {
	if failureDir == "" {
		failureDir = defaultFailureDir
	}

	return path.Join(failureDir, location)
}

// DefaultFailureDir returns the directory used by FailurePath when none is configured.
func DefaultFailureDir() string {
	return defaultFailureDir
}

// Sanitize turns a test or assertion name into a file-safe token.
// Runs of characters other than letters, digits, '_' and '-' collapse into a single '_'.
func Sanitize(name string) string {
	return strings.Trim(nonFileSafe.ReplaceAllString(name, sanitizeReplacement), sanitizeReplacement)
}
