package snapshot_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

var textStrategy = snapshot.Strategy[string]{
	Name:          "text",
	PathExtension: "txt",
	Kind:          snapshot.KindText,
	Snapshot: snapshot.Sync(func(s string) (snapshot.Format, error) {
		return snapshot.TextFormat(s, "txt"), nil
	}),
}

//nolint:funlen
func Test_Strategy_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(s *snapshot.Strategy[string])
		expectedError error
	}{
		{
			name:   "valid_strategy",
			mutate: func(_ *snapshot.Strategy[string]) {},
		},
		{
			name:          "empty_name",
			mutate:        func(s *snapshot.Strategy[string]) { s.Name = "" },
			expectedError: snapshot.ErrEmptyStrategyName,
		},
		{
			name:          "name_with_separator",
			mutate:        func(s *snapshot.Strategy[string]) { s.Name = "te.xt" },
			expectedError: snapshot.ErrInvalidStrategyName,
		},
		{
			name:          "empty_path_extension",
			mutate:        func(s *snapshot.Strategy[string]) { s.PathExtension = "" },
			expectedError: snapshot.ErrEmptyPathExtension,
		},
		{
			name:          "unknown_kind",
			mutate:        func(s *snapshot.Strategy[string]) { s.Kind = 0 },
			expectedError: snapshot.ErrInvalidKind,
		},
		{
			name:          "nil_snapshot_func",
			mutate:        func(s *snapshot.Strategy[string]) { s.Snapshot = nil },
			expectedError: snapshot.ErrNilSnapshotFunc,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			strategy := textStrategy
			tc.mutate(&strategy)

			err := strategy.Validate()

			if tc.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func Test_Pullback_TransformsSubjectAndKeepsIdentity(t *testing.T) {
	// arrange
	upper := snapshot.Pullback(textStrategy, strings.ToUpper)

	// act
	format, err := upper.Produce("hello").Await(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, "HELLO", format.Text())
	assert.Equal(t, textStrategy.Name, upper.Name)
	assert.Equal(t, textStrategy.PathExtension, upper.PathExtension)
	assert.Equal(t, textStrategy.Kind, upper.Kind)
}

func Test_AsyncPullback_WaitsForDeferredTransform(t *testing.T) {
	// arrange
	type view struct{ title string }
	rendered := snapshot.AsyncPullback(textStrategy, func(v view) *snapshot.Future[string] {
		return snapshot.Async(func(complete func(string, error)) {
			complete("<"+v.title+">", nil)
		})
	})

	// act
	format, err := rendered.Produce(view{title: "home"}).Await(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, "<home>", format.Text())
}

func Test_Erase_RejectsSubjectOfWrongType(t *testing.T) {
	erased := snapshot.Erase(textStrategy)

	_, err := erased.Produce(42).Await(context.Background())

	assert.ErrorIs(t, err, snapshot.ErrUnexpectedSubjectType)
}

func Test_Erase_AcceptsSubjectOfRightType(t *testing.T) {
	erased := snapshot.Erase(textStrategy)

	format, err := erased.Produce("ok").Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", format.Text())
}

func Test_Erase_PassesNilToStrategiesOfNilableTypes(t *testing.T) {
	// arrange
	errNilBuilder := errors.New("builder must not be nil")
	pointerStrategy := snapshot.Strategy[*strings.Builder]{
		Name:          "builder",
		PathExtension: "txt",
		Kind:          snapshot.KindText,
		Snapshot: snapshot.Sync(func(b *strings.Builder) (snapshot.Format, error) {
			if b == nil {
				return snapshot.Format{}, errNilBuilder
			}

			return snapshot.TextFormat(b.String(), "txt"), nil
		}),
	}

	// act
	_, pointerErr := snapshot.Erase(pointerStrategy).Produce(nil).Await(context.Background())
	_, stringErr := snapshot.Erase(textStrategy).Produce(nil).Await(context.Background())

	// assert
	assert.ErrorIs(t, pointerErr, errNilBuilder)
	assert.NotErrorIs(t, pointerErr, snapshot.ErrUnexpectedSubjectType)
	assert.ErrorIs(t, stringErr, snapshot.ErrUnexpectedSubjectType, "a string cannot be nil")
}

func Test_Produce_GuardsAgainstNilFuture(t *testing.T) {
	strategy := textStrategy
	strategy.Snapshot = func(string) *snapshot.Future[snapshot.Format] { return nil }

	_, err := strategy.Produce("x").Await(context.Background())

	assert.ErrorIs(t, err, snapshot.ErrNilFuture)
}

func Test_Compare_IsReflexive(t *testing.T) {
	format := snapshot.TextFormat("same", "txt")

	assert.True(t, snapshot.Compare(format, format, nil).IsMatch())
}

func Test_Compare_RejectsDifferentKinds(t *testing.T) {
	// act
	result := snapshot.Compare(
		snapshot.TextFormat("a", "txt"),
		snapshot.BinaryFormat([]byte("a"), "txt"),
		func(_, _ snapshot.Format) snapshot.DiffResult { return snapshot.Match() },
	)

	// assert
	assert.False(t, result.IsMatch(), "the diff function must not be consulted for different kinds")
	assert.Contains(t, result.Message(), "format kinds differ")
	_, hasExpected := result.Attachment(snapshot.AttachmentExpected)
	_, hasActual := result.Attachment(snapshot.AttachmentActual)
	assert.True(t, hasExpected)
	assert.True(t, hasActual)
}

func Test_Compare_FallsBackToByteEquality(t *testing.T) {
	result := snapshot.Compare(
		snapshot.BinaryFormat([]byte{1, 2}, "bin"),
		snapshot.BinaryFormat([]byte{1, 3}, "bin"),
		nil,
	)

	assert.False(t, result.IsMatch())
	assert.NotEmpty(t, result.Message())
}
