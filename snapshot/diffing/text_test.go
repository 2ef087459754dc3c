package diffing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

func Test_Lines_Identical_Text_Matches(t *testing.T) {
	// arrange
	reference := snapshot.TextFormat("Hello, world!\nsecond line\n", "txt")
	candidate := snapshot.TextFormat("Hello, world!\nsecond line\n", "txt")

	// act
	result := diffing.Lines(reference, candidate)

	// assert
	assert.True(t, result.IsMatch())
	assert.Empty(t, result.Message())
	assert.Empty(t, result.Attachments())
}

func Test_Lines_Shows_OneCharacter_Removal(t *testing.T) {
	// arrange
	reference := snapshot.TextFormat("Hello.", "txt")
	candidate := snapshot.TextFormat("Hello", "txt")

	// act
	result := diffing.Lines(reference, candidate)

	// assert
	require.False(t, result.IsMatch())
	assert.Contains(t, result.Message(), "--- reference")
	assert.Contains(t, result.Message(), "+++ candidate")
	assert.Contains(t, result.Message(), "-Hello.\n")
	assert.Contains(t, result.Message(), "+Hello\n")
	assert.Contains(t, result.Message(), "1 line changed")
}

func Test_Lines_Mismatch_Carries_Named_Attachments(t *testing.T) {
	// arrange
	reference := snapshot.TextFormat("a\nb\n", "txt")
	candidate := snapshot.TextFormat("a\nc\n", "txt")

	// act
	result := diffing.Lines(reference, candidate)

	// assert
	require.False(t, result.IsMatch())

	expected, ok := result.Attachment(snapshot.AttachmentExpected)
	require.True(t, ok)
	assert.True(t, expected.Format.Equal(reference))

	actual, ok := result.Attachment(snapshot.AttachmentActual)
	require.True(t, ok)
	assert.True(t, actual.Format.Equal(candidate))

	difference, ok := result.Attachment(snapshot.AttachmentDifference)
	require.True(t, ok)
	assert.Equal(t, "patch", difference.Format.FileExtension())
	assert.Contains(t, difference.Format.Text(), "-b\n+c\n")
}

func Test_Lines_Is_Deterministic(t *testing.T) {
	// arrange
	reference := snapshot.TextFormat("one\ntwo\nthree\n", "txt")
	candidate := snapshot.TextFormat("one\n2\nthree\nfour\n", "txt")

	// act
	first := diffing.Lines(reference, candidate)
	second := diffing.Lines(reference, candidate)

	// assert
	assert.Equal(t, first.Message(), second.Message())
}

func Test_Lines_Trailing_Newline_Is_A_Difference(t *testing.T) {
	// act
	result := diffing.Lines(snapshot.TextFormat("x", "txt"), snapshot.TextFormat("x\n", "txt"))

	// assert
	assert.False(t, result.IsMatch())
	assert.NotEmpty(t, result.Message())
}

func Test_Unified_Returns_Empty_For_Equal_Text(t *testing.T) {
	assert.Empty(t, diffing.Unified("same\n", "same\n"))
}

func Test_Stats(t *testing.T) { //nolint:funlen
	testCases := []struct {
		description string
		reference   string
		candidate   string
		expected    diffing.Stat
		summary     string
	}{
		{
			description: "changed line",
			reference:   "a\nb\nc\n",
			candidate:   "a\nB\nc\n",
			expected:    diffing.Stat{Changed: 1},
			summary:     "1 line changed",
		},
		{
			description: "added lines",
			reference:   "a\n",
			candidate:   "a\nb\nc\n",
			expected:    diffing.Stat{Added: 2},
			summary:     "2 lines added",
		},
		{
			description: "deleted line",
			reference:   "a\nb\n",
			candidate:   "a\n",
			expected:    diffing.Stat{Deleted: 1},
			summary:     "1 line deleted",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			stat := diffing.Stats(diffing.Unified(tc.reference, tc.candidate))

			// assert
			assert.Equal(t, tc.expected, stat)
			assert.Equal(t, tc.summary, stat.String())
		})
	}
}
