package snaptest

import (
	"fmt"
	"strings"
	"time"
)

// Reporter hands a failure to the host test framework.
type Reporter interface {
	Report(tb TB, failure *Failure)
}

// TestReporter reports failures with tb.Error at the call site of the assertion.
type TestReporter struct{}

// Report implements Reporter.
func (TestReporter) Report(tb TB, failure *Failure) {
	tb.Helper()
	tb.Error(failure.Message)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(tb TB, failure *Failure)

// Report implements Reporter.
func (fn ReporterFunc) Report(tb TB, failure *Failure) {
	fn(tb, failure)
}

func recordedMessage(testName, referencePath string, recordingOn bool) string {
	if recordingOn {
		return fmt.Sprintf(
			"snapshot recorded: recording is on, wrote %q\n\n"+
				"turn recording off and re-run %q to assert against the newly recorded snapshot",
			referencePath, testName,
		)
	}

	return fmt.Sprintf(
		"snapshot recorded: no reference found at %q\n\n"+
			"re-run %q to assert against the newly recorded snapshot",
		referencePath, testName,
	)
}

func mismatchMessage(referencePath, candidatePath, diffCommand, diff string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "snapshot does not match reference %q", referencePath)

	if candidatePath != "" {
		fmt.Fprintf(&sb, "\nfailure artifact: %q", candidatePath)
	}

	if diffCommand != "" {
		fmt.Fprintf(&sb, "\ndiff tool: %s", diffCommand)
	}

	if diff != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimRight(diff, "\n"))
	}

	return sb.String()
}

func timeoutMessage(timeout time.Duration, err error) string {
	return fmt.Sprintf("snapshot production did not complete within %s: %v", timeout, err)
}

func productionMessage(err error) string {
	return fmt.Sprintf("snapshot production failed: %v", err)
}

func artifactIOMessage(operation, referencePath string, err error) string {
	return fmt.Sprintf("could not %s reference %q: %v", operation, referencePath, err)
}

func unsupportedCapabilityMessage(err error) string {
	return fmt.Sprintf("cannot snapshot subject: %v", err)
}

func invalidAssertionMessage(err error) string {
	return fmt.Sprintf("invalid snapshot assertion: %v", err)
}
