package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Severity decides how an assertion that recorded a reference is reported.
type Severity string

const (
	// SeverityFail fails the test after recording, so a recording run is never silently green.
	SeverityFail Severity = "fail"

	// SeverityWarn only logs that a reference was recorded.
	SeverityWarn Severity = "warn"
)

const (
	DefaultSnapshotDir = "testdata/__snapshots__"
	DefaultFailureDir  = "__failures__"
	DefaultTimeout     = 5 * time.Second

	EnvConfigFile      = "SNAPSHOT_CONFIG"
	EnvRecord          = "SNAPSHOT_RECORD"
	EnvRecordSeverity  = "SNAPSHOT_RECORD_SEVERITY"
	EnvDiffTool        = "SNAPSHOT_DIFF_TOOL"
	EnvLaunchDiffTool  = "SNAPSHOT_LAUNCH_DIFF_TOOL"
	EnvSnapshotDir     = "SNAPSHOT_DIR"
	EnvFailureDir      = "SNAPSHOT_FAILURE_DIR"
	EnvTimeout         = "SNAPSHOT_TIMEOUT"
	EnvPersistFailures = "SNAPSHOT_PERSIST_FAILURES"
)

var (
	ErrInvalidSeverity     = errors.New("record severity must be 'fail' or 'warn'")
	ErrInvalidTimeout      = errors.New("timeout must be a positive duration")
	ErrEmptySnapshotDir    = errors.New("snapshot directory must not be empty")
	ErrInvalidFailureDir   = errors.New("failure directory must be a relative path inside the snapshot directory")
	ErrInvalidEnvValue     = errors.New("invalid environment value")
	ErrUnsupportedFileType = errors.New("unsupported config file type, use .yaml, .yml or .toml")
	ErrReadingConfigFailed = errors.New("reading config file failed")
	ErrParsingConfigFailed = errors.New("parsing config file failed")
)

// Config holds the run-wide settings of the snapshot engine.
type Config struct {
	Record          bool
	RecordSeverity  Severity
	DiffTool        string
	LaunchDiffTool  bool
	SnapshotDir     string
	FailureDir      string
	Timeout         time.Duration
	PersistFailures bool
}

// fileConfig is the on-disk shape. Absent keys keep the current value.
type fileConfig struct {
	Record          *bool   `yaml:"record" toml:"record"`
	RecordSeverity  *string `yaml:"record_severity" toml:"record_severity"`
	DiffTool        *string `yaml:"diff_tool" toml:"diff_tool"`
	LaunchDiffTool  *bool   `yaml:"launch_diff_tool" toml:"launch_diff_tool"`
	SnapshotDir     *string `yaml:"snapshot_dir" toml:"snapshot_dir"`
	FailureDir      *string `yaml:"failure_dir" toml:"failure_dir"`
	Timeout         *string `yaml:"timeout" toml:"timeout"`
	PersistFailures *bool   `yaml:"persist_failures" toml:"persist_failures"`
}

// Default returns the defaults: recording off, failing severity, 5s timeout, failures persisted.
func Default() Config {
	return Config{
		RecordSeverity:  SeverityFail,
		SnapshotDir:     DefaultSnapshotDir,
		FailureDir:      DefaultFailureDir,
		Timeout:         DefaultTimeout,
		PersistFailures: true,
	}
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if c.RecordSeverity != SeverityFail && c.RecordSeverity != SeverityWarn {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, c.RecordSeverity)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}

	if strings.TrimSpace(c.SnapshotDir) == "" {
		return ErrEmptySnapshotDir
	}

	if c.FailureDir == "" || !filepath.IsLocal(filepath.FromSlash(c.FailureDir)) || path.Clean(c.FailureDir) != c.FailureDir {
		return fmt.Errorf("%w: %q", ErrInvalidFailureDir, c.FailureDir)
	}

	return nil
}

// FromEnv returns the defaults, overlaid by the file named in SNAPSHOT_CONFIG, overlaid by the
// other SNAPSHOT_* variables.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

// LoadFile returns the defaults overlaid by a YAML or TOML file.
func LoadFile(file string) (Config, error) {
	return Default().Overlay(file)
}

// Overlay returns a copy of c with the keys present in a YAML or TOML file applied.
func (c Config) Overlay(file string) (Config, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Config{}, errors.Join(ErrReadingConfigFailed, err)
	}

	var fc fileConfig

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &fc)
	case ".toml":
		err = toml.Unmarshal(content, &fc)
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, file)
	}

	if err != nil {
		return Config{}, errors.Join(ErrParsingConfigFailed, err)
	}

	applied, err := c.apply(fc)
	if err != nil {
		return Config{}, err
	}

	return applied, applied.Validate()
}

func (c Config) apply(fc fileConfig) (Config, error) {
	if fc.Record != nil {
		c.Record = *fc.Record
	}

	if fc.RecordSeverity != nil {
		c.RecordSeverity = Severity(strings.ToLower(*fc.RecordSeverity))
	}

	if fc.DiffTool != nil {
		c.DiffTool = *fc.DiffTool
	}

	if fc.LaunchDiffTool != nil {
		c.LaunchDiffTool = *fc.LaunchDiffTool
	}

	if fc.SnapshotDir != nil {
		c.SnapshotDir = *fc.SnapshotDir
	}

	if fc.FailureDir != nil {
		c.FailureDir = *fc.FailureDir
	}

	if fc.Timeout != nil {
		timeout, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return Config{}, errors.Join(ErrInvalidTimeout, err)
		}

		c.Timeout = timeout
	}

	if fc.PersistFailures != nil {
		c.PersistFailures = *fc.PersistFailures
	}

	return c, nil
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if file, ok := lookup(EnvConfigFile); ok && file != "" {
		overlaid, err := cfg.Overlay(file)
		if err != nil {
			return Config{}, err
		}

		cfg = overlaid
	}

	fc := fileConfig{}

	for _, name := range []string{EnvRecord, EnvLaunchDiffTool, EnvPersistFailures} {
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}

		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalidEnvValue, name, value)
		}

		switch name {
		case EnvRecord:
			fc.Record = &parsed
		case EnvLaunchDiffTool:
			fc.LaunchDiffTool = &parsed
		case EnvPersistFailures:
			fc.PersistFailures = &parsed
		}
	}

	fc.RecordSeverity = lookupString(lookup, EnvRecordSeverity)
	fc.DiffTool = lookupString(lookup, EnvDiffTool)
	fc.SnapshotDir = lookupString(lookup, EnvSnapshotDir)
	fc.FailureDir = lookupString(lookup, EnvFailureDir)
	fc.Timeout = lookupString(lookup, EnvTimeout)

	cfg, err := cfg.apply(fc)
	if err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func lookupString(lookup func(string) (string, bool), name string) *string {
	value, ok := lookup(name)
	if !ok || value == "" {
		return nil
	}

	return &value
}
