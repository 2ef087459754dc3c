package diffing

import (
	"bytes"
	"fmt"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

// Bytes is the default DiffFunc for opaque binary formats.
func Bytes(reference, candidate snapshot.Format) snapshot.DiffResult {
	if reference.Equal(candidate) {
		return snapshot.Match()
	}

	expected, actual := reference.Bytes(), candidate.Bytes()

	return snapshot.Mismatch(
		fmt.Sprintf("expected %d bytes, got %d bytes; first difference at offset %d",
			len(expected), len(actual), firstDifference(expected, actual)),
		snapshot.ExpectedAndActual(reference, candidate)...,
	)
}

func firstDifference(a, b []byte) int {
	shorter := min(len(a), len(b))

	for i := range shorter {
		if a[i] != b[i] {
			return i
		}
	}

	if bytes.Equal(a, b) {
		return -1
	}

	return shorter
}
