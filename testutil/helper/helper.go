package helper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// GivenUniqueID returns a fresh time-ordered UUID.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// GivenUniqueScope returns a test scope that no other test of the run will use.
func GivenUniqueScope(t testing.TB, prefix string) string {
	return prefix + "_" + GivenUniqueID(t).String()
}
