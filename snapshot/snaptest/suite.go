package snaptest

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

const (
	testFileSuffix = "_test.go"
	maxCallerDepth = 64
)

// callerSuite derives the suite from the outermost test file on the call stack, which is the file
// defining the running Test function, e.g. "user_test" for a test in user_test.go. Assertions made
// through helpers in other test files therefore land in the directory of the test that owns them.
// It is empty when no test file is found.
func callerSuite() string {
	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	owner := ""

	for {
		frame, more := frames.Next()
		if strings.HasSuffix(frame.File, testFileSuffix) {
			owner = frame.File
		}

		if !more {
			break
		}
	}

	if owner == "" {
		return ""
	}

	return snapshot.Sanitize(strings.TrimSuffix(filepath.Base(owner), ".go"))
}

func (a *Asserter) suiteOr(detected string) string {
	if a.fixedSuite {
		return a.suite
	}

	return detected
}
