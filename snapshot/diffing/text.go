package diffing

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

const (
	referenceLabel = "reference"
	candidateLabel = "candidate"
	contextLines   = 3
	patchExtension = "patch"
)

// Stat counts changed lines in a unified diff.
type Stat struct {
	Added   int
	Changed int
	Deleted int
}

// String renders the stat as a short summary, e.g. "1 line changed".
func (s Stat) String() string {
	parts := make([]string, 0, 3)

	if s.Added > 0 {
		parts = append(parts, pluralize(s.Added, "line")+" added")
	}

	if s.Changed > 0 {
		parts = append(parts, pluralize(s.Changed, "line")+" changed")
	}

	if s.Deleted > 0 {
		parts = append(parts, pluralize(s.Deleted, "line")+" deleted")
	}

	if len(parts) == 0 {
		return "no line changes"
	}

	return strings.Join(parts, ", ")
}

// Lines is the default DiffFunc for textual formats.
// It reports Match iff both payloads are byte-identical, otherwise a unified diff.
func Lines(reference, candidate snapshot.Format) snapshot.DiffResult {
	if reference.Equal(candidate) {
		return snapshot.Match()
	}

	unified := Unified(reference.Text(), candidate.Text())
	if unified == "" {
		return snapshot.Mismatch(
			fmt.Sprintf("snapshot differs from reference (%d vs %d bytes)", reference.Len(), candidate.Len()),
			snapshot.ExpectedAndActual(reference, candidate)...,
		)
	}

	attachments := append(
		snapshot.ExpectedAndActual(reference, candidate),
		snapshot.Attachment{Name: snapshot.AttachmentDifference, Format: snapshot.TextFormat(unified, patchExtension)},
	)

	return snapshot.Mismatch(Stats(unified).String()+"\n\n"+unified, attachments...)
}

// Unified renders a unified diff between reference and candidate text.
// It returns an empty string when there is nothing to show.
func Unified(reference, candidate string) string {
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(reference),
		B:        difflib.SplitLines(candidate),
		FromFile: referenceLabel,
		ToFile:   candidateLabel,
		Context:  contextLines,
	})
	if err != nil {
		return ""
	}

	return unified
}

// Stats counts added, changed and deleted lines of a unified diff as produced by Unified.
func Stats(unified string) Stat {
	fileDiff, err := diff.ParseFileDiff([]byte(unified))
	if err != nil {
		return countLines(unified)
	}

	stat := fileDiff.Stat()

	return Stat{
		Added:   int(stat.Added),
		Changed: int(stat.Changed),
		Deleted: int(stat.Deleted),
	}
}

// countLines is the fallback for diffs the parser rejects; it cannot pair changes.
func countLines(unified string) Stat {
	stat := Stat{}

	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			stat.Added++
		case strings.HasPrefix(line, "-"):
			stat.Deleted++
		}
	}

	return stat
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
