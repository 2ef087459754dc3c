package snaptest

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/snapshot-testing-go/config"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/strategies"
)

// Option defines a functional option for configuring Asserter.
type Option func(*Asserter) error

// WithConfig applies a run configuration: recording, record severity, diff tool, directories,
// timeout and failure persistence. Options given later override single settings.
func WithConfig(cfg config.Config) Option {
	return func(a *Asserter) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		return a.applyConfig(cfg)
	}
}

// WithStore sets the Artifact Store. Without it, a file-system store rooted at the snapshot dir is used.
func WithStore(store snapshot.Store) Option {
	return func(a *Asserter) error {
		if store == nil {
			return ErrNilStore
		}

		a.store = store

		return nil
	}
}

// WithSnapshotDir sets the root of the default file-system store.
func WithSnapshotDir(dir string) Option {
	return func(a *Asserter) error {
		if dir == "" {
			return config.ErrEmptySnapshotDir
		}

		a.snapshotDir = dir

		return nil
	}
}

// WithRunState shares a RunState, e.g. between asserters with different stores.
func WithRunState(state *snapshot.RunState) Option {
	return func(a *Asserter) error {
		if state == nil {
			return ErrNilRunState
		}

		a.state = state

		return nil
	}
}

// WithRecord sets the initial recording mode.
func WithRecord(recording bool) Option {
	return func(a *Asserter) error {
		a.state.SetRecording(recording)
		return nil
	}
}

// WithRecordSeverity decides whether recording fails the test (default) or only logs.
func WithRecordSeverity(severity config.Severity) Option {
	return func(a *Asserter) error {
		if severity != config.SeverityFail && severity != config.SeverityWarn {
			return config.ErrInvalidSeverity
		}

		a.recordSeverity = severity

		return nil
	}
}

// WithRegistry sets the capability registry used by AssertAs.
func WithRegistry(registry strategies.Registry) Option {
	return func(a *Asserter) error {
		a.registry = registry
		return nil
	}
}

// WithReporter replaces the default TestReporter.
func WithReporter(reporter Reporter) Option {
	return func(a *Asserter) error {
		if reporter == nil {
			return ErrNilReporter
		}

		a.reporter = reporter

		return nil
	}
}

// WithDiffTool sets the diff tool shown in mismatch messages. With launch set, it is started on every mismatch.
// A nil tool disables the hook.
func WithDiffTool(tool DiffTool, launch bool) Option {
	return func(a *Asserter) error {
		a.diffTool = tool
		a.launchDiffTool = launch && tool != nil

		return nil
	}
}

// WithTimeout sets the default timeout of deferred snapshot production.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Asserter) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}

		a.timeout = timeout

		return nil
	}
}

// WithFailureDir sets the directory, relative to the store root, where mismatching candidates are kept.
func WithFailureDir(dir string) Option {
	return func(a *Asserter) error {
		cfg := config.Default()
		cfg.FailureDir = dir

		if err := cfg.Validate(); err != nil {
			return err
		}

		a.failureDir = dir

		return nil
	}
}

// WithPersistFailures decides whether mismatching candidates are written to the failure dir.
func WithPersistFailures(persist bool) Option {
	return func(a *Asserter) error {
		a.persistFailures = persist
		return nil
	}
}

// WithSuite fixes the directory that groups references, instead of deriving it from the calling test file.
func WithSuite(suite string) Option {
	return func(a *Asserter) error {
		if snapshot.Sanitize(suite) != suite {
			return errors.Join(snapshot.ErrInvalidLocation, errors.New("suite must be a file-safe token"))
		}

		a.suite = suite
		a.fixedSuite = true

		return nil
	}
}

// WithLogger sets the logger for the Asserter.
//
// Debug level: matched snapshots, written failure artifacts
// Info level: recorded snapshots and mismatches
// Warn level: diff tool and failure artifact problems
// Error level: artifact i/o failures and production timeouts.
func WithLogger(logger snapshot.Logger) Option {
	return func(a *Asserter) error {
		a.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger; it takes precedence over WithLogger.
func WithContextualLogger(logger snapshot.ContextualLogger) Option {
	return func(a *Asserter) error {
		a.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Asserter.
// A collector that also implements snapshot.ContextualMetricsCollector receives the assertion context.
func WithMetrics(collector snapshot.MetricsCollector) Option {
	return func(a *Asserter) error {
		a.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Asserter. Each assertion becomes one "snapshot.assert" span.
func WithTracing(collector snapshot.TracingCollector) Option {
	return func(a *Asserter) error {
		a.tracingCollector = collector
		return nil
	}
}
