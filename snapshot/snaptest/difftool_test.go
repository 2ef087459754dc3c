package snaptest_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/snaptest"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/strategies"
	"github.com/AntonStoeckl/snapshot-testing-go/testutil/helper"
)

func Test_CommandDiffTool_Command_Quotes_Paths(t *testing.T) {
	// arrange
	tool, err := snaptest.NewCommandDiffTool("  code --wait  --diff ")
	require.NoError(t, err)

	// act
	command := tool.Command("/refs/a b.txt", "/failures/a b.txt")

	// assert
	assert.Equal(t, `code --wait --diff "/refs/a b.txt" "/failures/a b.txt"`, command)
}

func Test_NewCommandDiffTool_Rejects_Empty_Command(t *testing.T) {
	_, err := snaptest.NewCommandDiffTool("   ")

	assert.ErrorIs(t, err, snaptest.ErrEmptyDiffTool)
	assert.Panics(t, func() { snaptest.MustCommandDiffTool("") })
}

func Test_CommandDiffTool_Launch_Reports_Missing_Program(t *testing.T) {
	// arrange
	tool := snaptest.MustCommandDiffTool("surely-not-an-installed-diff-tool")

	// act
	err := tool.Launch(context.Background(), "a", "b")

	// assert
	assert.Error(t, err)
}

func Test_Mismatch_Launches_Diff_Tool_When_Enabled(t *testing.T) {
	// arrange
	tool := &diffToolSpy{}
	asserter := givenAsserter(t,
		snaptest.WithSnapshotDir(t.TempDir()),
		snaptest.WithDiffTool(tool, true),
	)
	givenRecordedReference(t, asserter, "TestLaunch", "a\n")
	tb := helper.NewTBSpy("TestLaunch")

	// act
	failure := snaptest.Verify(asserter, tb, "b\n", strategies.Text)

	// assert
	require.NotNil(t, failure)
	assert.Equal(t, snaptest.FailureMismatch, failure.Kind, "the diff tool never changes the outcome")
	assert.Equal(t, 1, tool.launches())
	assert.Equal(t, "spy", failure.DiffCommand)
}

func Test_Match_Does_Not_Launch_Diff_Tool(t *testing.T) {
	// arrange
	tool := &diffToolSpy{}
	asserter := givenAsserter(t,
		snaptest.WithSnapshotDir(t.TempDir()),
		snaptest.WithDiffTool(tool, true),
	)
	givenRecordedReference(t, asserter, "TestLaunch", "a\n")
	tb := helper.NewTBSpy("TestLaunch")

	// act
	failure := snaptest.Verify(asserter, tb, "a\n", strategies.Text)

	// assert
	assert.Nil(t, failure)
	assert.Zero(t, tool.launches())
}

type diffToolSpy struct {
	mu    sync.Mutex
	count int
}

func (s *diffToolSpy) Command(string, string) string {
	return "spy"
}

func (s *diffToolSpy) Launch(context.Context, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++

	return nil
}

func (s *diffToolSpy) launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count
}
