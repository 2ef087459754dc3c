package diffing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/diffing"
)

func Test_Bytes_Identical_Payloads_Match(t *testing.T) {
	// act
	result := diffing.Bytes(
		snapshot.BinaryFormat([]byte{1, 2, 3}, "bin"),
		snapshot.BinaryFormat([]byte{1, 2, 3}, "bin"),
	)

	// assert
	assert.True(t, result.IsMatch())
}

func Test_Bytes_Reports_Sizes_And_First_Difference(t *testing.T) {
	// arrange
	reference := snapshot.BinaryFormat([]byte{1, 2, 3, 4}, "bin")
	candidate := snapshot.BinaryFormat([]byte{1, 2, 9}, "bin")

	// act
	result := diffing.Bytes(reference, candidate)

	// assert
	require.False(t, result.IsMatch())
	assert.Equal(t, "expected 4 bytes, got 3 bytes; first difference at offset 2", result.Message())

	_, ok := result.Attachment(snapshot.AttachmentExpected)
	assert.True(t, ok)
	_, ok = result.Attachment(snapshot.AttachmentActual)
	assert.True(t, ok)
}

func Test_Bytes_Prefix_Differs_At_Shorter_Length(t *testing.T) {
	// act
	result := diffing.Bytes(
		snapshot.BinaryFormat([]byte{1, 2}, "bin"),
		snapshot.BinaryFormat([]byte{1, 2, 3}, "bin"),
	)

	// assert
	assert.Contains(t, result.Message(), "first difference at offset 2")
}
