package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/snapshot-testing-go/config"
)

func Test_Default_Is_Valid(t *testing.T) {
	// act
	cfg := config.Default()

	// assert
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Record, "recording must default to off")
	assert.Equal(t, config.SeverityFail, cfg.RecordSeverity)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "testdata/__snapshots__", cfg.SnapshotDir)
	assert.Equal(t, "__failures__", cfg.FailureDir)
	assert.True(t, cfg.PersistFailures)
	assert.Empty(t, cfg.DiffTool)
}

func Test_FromLookup_Overrides_Defaults(t *testing.T) {
	// arrange
	env := map[string]string{
		config.EnvRecord:          "true",
		config.EnvRecordSeverity:  "warn",
		config.EnvDiffTool:        "ksdiff",
		config.EnvLaunchDiffTool:  "1",
		config.EnvSnapshotDir:     "snapshots",
		config.EnvFailureDir:      "failed",
		config.EnvTimeout:         "250ms",
		config.EnvPersistFailures: "false",
	}

	// act
	cfg, err := config.FromLookup(lookupIn(env))

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		Record:          true,
		RecordSeverity:  config.SeverityWarn,
		DiffTool:        "ksdiff",
		LaunchDiffTool:  true,
		SnapshotDir:     "snapshots",
		FailureDir:      "failed",
		Timeout:         250 * time.Millisecond,
		PersistFailures: false,
	}, cfg)
}

func Test_FromLookup_Rejects_Invalid_Values(t *testing.T) { //nolint:funlen
	testCases := []struct {
		description string
		env         map[string]string
		expectedErr error
	}{
		{
			description: "bool",
			env:         map[string]string{config.EnvRecord: "maybe"},
			expectedErr: config.ErrInvalidEnvValue,
		},
		{
			description: "severity",
			env:         map[string]string{config.EnvRecordSeverity: "panic"},
			expectedErr: config.ErrInvalidSeverity,
		},
		{
			description: "timeout syntax",
			env:         map[string]string{config.EnvTimeout: "soon"},
			expectedErr: config.ErrInvalidTimeout,
		},
		{
			description: "negative timeout",
			env:         map[string]string{config.EnvTimeout: "-1s"},
			expectedErr: config.ErrInvalidTimeout,
		},
		{
			description: "escaping failure dir",
			env:         map[string]string{config.EnvFailureDir: "../outside"},
			expectedErr: config.ErrInvalidFailureDir,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			_, err := config.FromLookup(lookupIn(tc.env))

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_LoadFile_YAML(t *testing.T) {
	// arrange
	file := givenFile(t, "snapshot.yaml", "record: true\ndiff_tool: ksdiff\ntimeout: 2s\n")

	// act
	cfg, err := config.LoadFile(file)

	// assert
	require.NoError(t, err)
	assert.True(t, cfg.Record)
	assert.Equal(t, "ksdiff", cfg.DiffTool)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.PersistFailures, "absent keys keep their defaults")
}

func Test_LoadFile_TOML(t *testing.T) {
	// arrange
	file := givenFile(t, "snapshot.toml", "record_severity = \"warn\"\npersist_failures = false\nsnapshot_dir = \"refs\"\n")

	// act
	cfg, err := config.LoadFile(file)

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.SeverityWarn, cfg.RecordSeverity)
	assert.False(t, cfg.PersistFailures)
	assert.Equal(t, "refs", cfg.SnapshotDir)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
}

func Test_LoadFile_Errors(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, config.ErrReadingConfigFailed)

	_, err = config.LoadFile(givenFile(t, "snapshot.json", "{}"))
	assert.ErrorIs(t, err, config.ErrUnsupportedFileType)

	_, err = config.LoadFile(givenFile(t, "broken.yaml", "record: [\n"))
	assert.ErrorIs(t, err, config.ErrParsingConfigFailed)
}

func Test_FromLookup_Env_Overrides_File(t *testing.T) {
	// arrange
	file := givenFile(t, "snapshot.yaml", "record: true\ndiff_tool: ksdiff\n")
	env := map[string]string{
		config.EnvConfigFile: file,
		config.EnvRecord:     "false",
	}

	// act
	cfg, err := config.FromLookup(lookupIn(env))

	// assert
	require.NoError(t, err)
	assert.False(t, cfg.Record)
	assert.Equal(t, "ksdiff", cfg.DiffTool)
}

func lookupIn(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
}

func givenFile(t *testing.T, name, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	return file
}
