package snapshotctl_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/internal/snapshotctl"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/fsstore"
)

func Test_List_Shows_References_Without_Failures(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"user_test/TestA.1.text.txt":              "a",
		"user_test/TestB.1.text.txt":              "b",
		"order_test/TestC.1.json.json":            "{}",
		"__failures__/user_test/TestB.1.text.txt": "B",
	})

	// act
	output, err := run(t, "--dir", root, "list")

	// assert
	require.NoError(t, err)
	assert.Equal(t,
		"order_test/TestC.1.json.json\n"+
			"user_test/TestA.1.text.txt\n"+
			"user_test/TestB.1.text.txt\n"+
			"3 references\n",
		output,
	)
}

func Test_List_Filters_By_Suite(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"user_test/TestA.1.text.txt":   "a",
		"order_test/TestC.1.json.json": "{}",
	})

	// act
	output, err := run(t, "--dir", root, "list", "user_test")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "user_test/TestA.1.text.txt\n1 reference\n", output)
}

func Test_Failures_Lists_Failed_References(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"user_test/TestB.1.text.txt":              "b",
		"__failures__/user_test/TestB.1.text.txt": "B",
	})

	// act
	output, err := run(t, "--dir", root, "failures")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "✗ user_test/TestB.1.text.txt\n1 failure\n", output)
}

func Test_Diff_Shows_Unified_Diff_And_Stats(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"user_test/TestB.1.text.txt":              "a\nb\nc\n",
		"__failures__/user_test/TestB.1.text.txt": "a\nB\nc\n",
	})

	// act
	output, err := run(t, "--dir", root, "diff")

	// assert
	require.NoError(t, err)
	assert.Contains(t, output, "user_test/TestB.1.text.txt\n")
	assert.Contains(t, output, "-b\n")
	assert.Contains(t, output, "+B\n")
	assert.Contains(t, output, "1 line changed\n")
}

func Test_Diff_Of_Binary_Artifacts_Reports_Bytes(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"img_test/TestImg.1.image.png":              "\x89PNG\xff\x00",
		"__failures__/img_test/TestImg.1.image.png": "\x89PNG\xfe\x00\x01",
	})

	// act
	output, err := run(t, "--dir", root, "diff", "img_test/TestImg.1.image.png")

	// assert
	require.NoError(t, err)
	assert.Contains(t, output, "expected 6 bytes, got 7 bytes; first difference at offset 4")
}

func Test_Diff_Rejects_Reference_Without_Failure(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{"user_test/TestA.1.text.txt": "a"})

	// act
	_, err := run(t, "--dir", root, "diff", "user_test/TestA.1.text.txt")

	// assert
	assert.ErrorIs(t, err, snapshotctl.ErrNoFailure)
}

func Test_Accept_Replaces_Reference_And_Removes_Failure(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"user_test/TestB.1.text.txt":              "old",
		"__failures__/user_test/TestB.1.text.txt": "new",
	})

	// act
	output, err := run(t, "--dir", root, "accept", "user_test/TestB.1.text.txt")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "accepted user_test/TestB.1.text.txt\n1 reference updated\n", output)

	content, readErr := os.ReadFile(filepath.Join(root, "user_test", "TestB.1.text.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "new", string(content))
	assert.NoFileExists(t, filepath.Join(root, "__failures__", "user_test", "TestB.1.text.txt"))
}

func Test_Accept_Requires_Selection(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, nil)

	// act
	_, err := run(t, "--dir", root, "accept")

	// assert
	assert.ErrorIs(t, err, snapshotctl.ErrNothingSelected)
}

func Test_Accept_All_With_Custom_Failure_Dir(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"a_test/TestA.1.text.txt":         "old a",
		"b_test/TestB.1.text.txt":         "old b",
		"failed/a_test/TestA.1.text.txt": "new a",
		"failed/b_test/TestB.1.text.txt": "new b",
	})

	// act
	output, err := run(t, "--dir", root, "--failure-dir", "failed", "accept", "--all")

	// assert
	require.NoError(t, err)
	assert.Contains(t, output, "2 references updated")

	content, readErr := os.ReadFile(filepath.Join(root, "b_test", "TestB.1.text.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "new b", string(content))
	assert.NoDirExists(t, filepath.Join(root, "failed"))
}

func Test_Clean_Removes_All_Failures(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{
		"user_test/TestB.1.text.txt":              "b",
		"__failures__/user_test/TestB.1.text.txt": "B",
		"__failures__/user_test/TestC.1.text.txt": "C",
	})

	// act
	output, err := run(t, "--dir", root, "clean")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "removed 2 failure artifacts\n", output)
	assert.NoDirExists(t, filepath.Join(root, "__failures__"))
	assert.FileExists(t, filepath.Join(root, "user_test", "TestB.1.text.txt"))
}

func Test_Config_File_Sets_Snapshot_Dir(t *testing.T) {
	// arrange
	root := givenSnapshotDir(t, map[string]string{"user_test/TestA.1.text.txt": "a"})
	configFile := filepath.Join(t.TempDir(), "snapshot.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("snapshot_dir = '"+root+"'\n"), 0o600))

	// act
	output, err := run(t, "--config", configFile, "list")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "user_test/TestA.1.text.txt\n1 reference\n", output)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	command := snapshotctl.NewRootCommand()
	command.SetOut(&out)
	command.SetErr(&out)
	command.SetArgs(append([]string{"--no-color"}, args...))

	err := command.ExecuteContext(context.Background())

	return out.String(), err
}

func givenSnapshotDir(t *testing.T, artifacts map[string]string) string {
	t.Helper()

	root := t.TempDir()
	store, err := fsstore.New(root)
	require.NoError(t, err)

	for location, content := range artifacts {
		require.NoError(t, store.Write(context.Background(), location, snapshot.BinaryFormat([]byte(content), "bin")))
	}

	return root
}
