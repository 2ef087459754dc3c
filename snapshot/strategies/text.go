package strategies

import (
	"fmt"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

const textExtension = "txt"

// Text snapshots a string as is and diffs it line by line.
var Text = snapshot.Strategy[string]{
	Name:          "text",
	PathExtension: textExtension,
	Kind:          snapshot.KindText,
	Snapshot: snapshot.Sync(func(subject string) (snapshot.Format, error) {
		return snapshot.TextFormat(subject, textExtension), nil
	}),
	Diff: diffing.Lines,
}

// Stringer snapshots the String() rendering of a value.
var Stringer = snapshot.Pullback(Text, func(subject fmt.Stringer) string {
	if subject == nil {
		return "<nil>"
	}

	return subject.String()
})

// Bytes snapshots an opaque byte payload and diffs it byte by byte.
var Bytes = snapshot.Strategy[[]byte]{
	Name:          "data",
	PathExtension: "bin",
	Kind:          snapshot.KindBinary,
	Snapshot: snapshot.Sync(func(subject []byte) (snapshot.Format, error) {
		return snapshot.BinaryFormat(subject, "bin"), nil
	}),
	Diff: diffing.Bytes,
}
