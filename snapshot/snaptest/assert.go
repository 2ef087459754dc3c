package snaptest

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

// AssertOption adjusts a single assertion.
type AssertOption func(*assertSettings)

type assertSettings struct {
	name     string
	timeout  time.Duration
	record   *bool
	ctx      context.Context
	strategy *snapshot.Strategy[any]
}

// Named gives the assertion a name, used in the reference file name instead of its position.
func Named(name string) AssertOption {
	return func(s *assertSettings) {
		s.name = name
	}
}

// Timeout overrides how long the snapshot may take to be produced.
func Timeout(timeout time.Duration) AssertOption {
	return func(s *assertSettings) {
		s.timeout = timeout
	}
}

// Record overrides the recording mode of the run for this assertion only.
func Record(recording bool) AssertOption {
	return func(s *assertSettings) {
		s.record = &recording
	}
}

// Context sets the parent context of production and store access.
func Context(ctx context.Context) AssertOption {
	return func(s *assertSettings) {
		s.ctx = ctx
	}
}

// Using replaces the registered strategy of a capability for AssertAs and VerifyAs.
func Using(strategy snapshot.Strategy[any]) AssertOption {
	return func(s *assertSettings) {
		s.strategy = &strategy
	}
}

func newAssertSettings(options []AssertOption) assertSettings {
	var s assertSettings
	for _, option := range options {
		option(&s)
	}

	return s
}

func (s assertSettings) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}

	return s.ctx
}

func (s assertSettings) timeoutOr(fallback time.Duration) time.Duration {
	if s.timeout > 0 {
		return s.timeout
	}

	return fallback
}

// Assert snapshots subject with strategy using the default Asserter and reports any failure on tb.
// It returns whether the assertion passed.
func Assert[V any](tb TB, subject V, strategy snapshot.Strategy[V], options ...AssertOption) bool {
	tb.Helper()

	asserter, err := Default()
	if err != nil {
		tb.Error(fmt.Sprintf("snapshot asserter is not configured: %v", err))
		return false
	}

	return assertWith(asserter, tb, subject, strategy, options, callerSuite())
}

// AssertWith is Assert with an explicit Asserter.
func AssertWith[V any](a *Asserter, tb TB, subject V, strategy snapshot.Strategy[V], options ...AssertOption) bool {
	tb.Helper()

	return assertWith(a, tb, subject, strategy, options, callerSuite())
}

// Verify runs the assertion like AssertWith but returns the failure instead of reporting it.
// A nil result means the candidate matched its reference.
func Verify[V any](a *Asserter, tb TB, subject V, strategy snapshot.Strategy[V], options ...AssertOption) *Failure {
	tb.Helper()

	return verifyTyped(a, tb, subject, strategy, newAssertSettings(options), a.suiteOr(callerSuite()))
}

// AssertAs snapshots subject with the strategy registered for capability, using the default Asserter.
func AssertAs(tb TB, subject any, capability snapshot.Capability, options ...AssertOption) bool {
	tb.Helper()

	asserter, err := Default()
	if err != nil {
		tb.Error(fmt.Sprintf("snapshot asserter is not configured: %v", err))
		return false
	}

	return asserter.report(tb, asserter.verifyAs(tb, subject, capability, newAssertSettings(options), callerSuite()))
}

// AssertAsWith is AssertAs with an explicit Asserter.
func AssertAsWith(a *Asserter, tb TB, subject any, capability snapshot.Capability, options ...AssertOption) bool {
	tb.Helper()

	return a.report(tb, a.verifyAs(tb, subject, capability, newAssertSettings(options), callerSuite()))
}

// VerifyAs is AssertAsWith without reporting.
func VerifyAs(a *Asserter, tb TB, subject any, capability snapshot.Capability, options ...AssertOption) *Failure {
	tb.Helper()

	return a.verifyAs(tb, subject, capability, newAssertSettings(options), callerSuite())
}

func assertWith[V any](
	a *Asserter,
	tb TB,
	subject V,
	strategy snapshot.Strategy[V],
	options []AssertOption,
	suite string,
) bool {

	tb.Helper()

	failure := verifyTyped(a, tb, subject, strategy, newAssertSettings(options), a.suiteOr(suite))

	return a.report(tb, failure)
}

// verifyTyped validates the typed strategy before erasing it, so a broken strategy is
// reported as an invalid assertion and not as a production failure.
func verifyTyped[V any](
	a *Asserter,
	tb TB,
	subject V,
	strategy snapshot.Strategy[V],
	settings assertSettings,
	suite string,
) *Failure {

	tb.Helper()

	if err := strategy.Validate(); err != nil {
		return a.rejected(settings.context(), tb.Name(), err)
	}

	return a.verify(tb, subject, snapshot.Erase(strategy), settings, suite)
}

// verifyAs resolves the capability before any store access.
func (a *Asserter) verifyAs(
	tb TB,
	subject any,
	capability snapshot.Capability,
	settings assertSettings,
	suite string,
) *Failure {

	tb.Helper()

	strategy, err := a.registry.Resolve(capability, overrides(settings)...)
	if err != nil {
		a.logError(settings.context(), logMsgAssertionRejected, err, logAttrTestScope, tb.Name())
		a.incrementCounter(settings.context(), metricAssertionsTotal, map[string]string{
			labelStrategy: string(capability),
			labelOutcome:  FailureUnsupportedCapability.String(),
		})

		return &Failure{Kind: FailureUnsupportedCapability, Message: unsupportedCapabilityMessage(err), Err: err}
	}

	return a.verify(tb, subject, strategy, settings, a.suiteOr(suite))
}

func overrides(settings assertSettings) []snapshot.Strategy[any] {
	if settings.strategy == nil {
		return nil
	}

	return []snapshot.Strategy[any]{*settings.strategy}
}
