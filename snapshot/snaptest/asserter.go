package snaptest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AntonStoeckl/snapshot-testing-go/config"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/fsstore"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/strategies"
)

// Asserter runs snapshot assertions against one Artifact Store with one RunState.
// It is safe for concurrent use by parallel tests.
type Asserter struct {
	store            snapshot.Store
	state            *snapshot.RunState
	registry         strategies.Registry
	reporter         Reporter
	diffTool         DiffTool
	launchDiffTool   bool
	snapshotDir      string
	failureDir       string
	persistFailures  bool
	timeout          time.Duration
	recordSeverity   config.Severity
	suite            string
	fixedSuite       bool
	logger           snapshot.Logger
	contextualLogger snapshot.ContextualLogger
	metricsCollector snapshot.MetricsCollector
	tracingCollector snapshot.TracingCollector
}

var defaultAsserter = sync.OnceValues(func() (*Asserter, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	return New(WithConfig(cfg))
})

// Default returns the process-wide Asserter used by Assert, AssertAs and Recording.
// It is configured once from the SNAPSHOT_* environment variables.
func Default() (*Asserter, error) {
	return defaultAsserter()
}

// New creates an Asserter with the defaults of config.Default, adjusted by options.
func New(options ...Option) (*Asserter, error) {
	a := &Asserter{
		state:    snapshot.NewRunState(false),
		registry: strategies.DefaultRegistry(),
		reporter: TestReporter{},
	}

	if err := a.applyConfig(config.Default()); err != nil {
		return nil, err
	}

	for _, option := range options {
		if err := option(a); err != nil {
			return nil, err
		}
	}

	if a.store == nil {
		storeOptions := []fsstore.Option{fsstore.WithLogger(a.logger)}
		if a.contextualLogger != nil {
			storeOptions = append(storeOptions, fsstore.WithContextualLogger(a.contextualLogger))
		}

		store, err := fsstore.New(a.snapshotDir, storeOptions...)
		if err != nil {
			return nil, err
		}

		a.store = store
	}

	return a, nil
}

func (a *Asserter) applyConfig(cfg config.Config) error {
	a.state.SetRecording(cfg.Record)
	a.recordSeverity = cfg.RecordSeverity
	a.snapshotDir = cfg.SnapshotDir
	a.failureDir = cfg.FailureDir
	a.timeout = cfg.Timeout
	a.persistFailures = cfg.PersistFailures
	a.launchDiffTool = false
	a.diffTool = nil

	if cfg.DiffTool != "" {
		tool, err := NewCommandDiffTool(cfg.DiffTool)
		if err != nil {
			return err
		}

		a.diffTool = tool
		a.launchDiffTool = cfg.LaunchDiffTool
	}

	return nil
}

// Store returns the Artifact Store of the Asserter.
func (a *Asserter) Store() snapshot.Store {
	return a.store
}

// RunState returns the recording toggle and sequence counters of the Asserter.
func (a *Asserter) RunState() *snapshot.RunState {
	return a.state
}

// report hands a failure to the reporter and returns whether the test may still pass.
func (a *Asserter) report(tb TB, failure *Failure) bool {
	tb.Helper()

	if failure == nil {
		return true
	}

	if failure.Kind == FailureRecorded && a.recordSeverity == config.SeverityWarn {
		tb.Log(failure.Message)
		return true
	}

	a.reporter.Report(tb, failure)

	return false
}

// verify runs one assertion: allocate the identity, produce, then record or compare.
// No error or panic escapes; everything ends as at most one Failure.
func (a *Asserter) verify(
	tb TB,
	subject any,
	strategy snapshot.Strategy[any],
	settings assertSettings,
	suite string,
) (failure *Failure) {

	tb.Helper()

	ctx := settings.context()
	testScope := tb.Name()
	observer, ctx := a.observeAssertion(ctx, testScope, strategy.Name)

	var location string

	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("%w: %v", snapshot.ErrProductionPanicked, recovered)
			failure = &Failure{Kind: FailureProduction, Message: productionMessage(err), Err: err}
			a.logError(ctx, logMsgProductionFailed, err, logAttrTestScope, testScope, logAttrStrategy, strategy.Name)
		}

		observer.finish(failure, location)
	}()

	if err := strategy.Validate(); err != nil {
		return a.rejected(ctx, testScope, err)
	}

	allocation := a.state.Allocate(testScope, settings.name, strategy.Name)
	if allocation.FirstInScope {
		tb.Cleanup(func() { a.state.Reset(testScope) })
	}

	identity := snapshot.Identity{
		Suite:         suite,
		TestScope:     testScope,
		AssertionName: settings.name,
		SequenceIndex: allocation.SequenceIndex,
		NameRepeated:  allocation.NameRepeated,
		StrategyName:  strategy.Name,
	}

	if err := identity.Validate(); err != nil {
		return a.rejected(ctx, testScope, err)
	}

	location = snapshot.ResolvePath(identity, strategy.PathExtension)

	candidate, productionFailure := a.produce(ctx, strategy, subject, settings.timeoutOr(a.timeout))
	if productionFailure != nil {
		productionFailure.Identity = identity
		productionFailure.ReferenceLocation = location

		return productionFailure
	}

	recording := a.state.Recording()
	if settings.record != nil {
		recording = *settings.record
	}

	if !recording {
		reference, found, err := a.store.Read(ctx, location, strategy.Kind, strategy.PathExtension)
		if err != nil {
			return a.artifactFailure(ctx, identity, location, operationRead, err)
		}

		if found {
			return a.compare(ctx, tb, identity, location, reference, candidate, strategy.Diff)
		}
	}

	return a.record(ctx, tb, identity, location, candidate, recording)
}

func (a *Asserter) produce(
	ctx context.Context,
	strategy snapshot.Strategy[any],
	subject any,
	timeout time.Duration,
) (snapshot.Format, *Failure) {

	productionCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	candidate, err := strategy.Produce(subject).Await(productionCtx)
	a.recordDuration(ctx, metricProductionDuration, time.Since(start), map[string]string{labelStrategy: strategy.Name})

	switch {
	case errors.Is(err, snapshot.ErrProductionTimeout):
		a.logError(ctx, logMsgProductionTimedOut, err, logAttrStrategy, strategy.Name, logAttrDurationMS, toMilliseconds(timeout))
		return snapshot.Format{}, &Failure{Kind: FailureTimeout, Message: timeoutMessage(timeout, err), Err: err}

	case err != nil:
		a.logError(ctx, logMsgProductionFailed, err, logAttrStrategy, strategy.Name)
		return snapshot.Format{}, &Failure{Kind: FailureProduction, Message: productionMessage(err), Err: err}

	case candidate.Kind() != strategy.Kind:
		kindErr := fmt.Errorf("%w: strategy %q declares %s but produced %s",
			snapshot.ErrFormatKindMismatch, strategy.Name, strategy.Kind, candidate.Kind())
		a.logError(ctx, logMsgProductionFailed, kindErr, logAttrStrategy, strategy.Name)

		return snapshot.Format{}, &Failure{Kind: FailureProduction, Message: productionMessage(kindErr), Err: kindErr}
	}

	return candidate, nil
}

func (a *Asserter) record(
	ctx context.Context,
	tb TB,
	identity snapshot.Identity,
	location string,
	candidate snapshot.Format,
	recordingOn bool,
) *Failure {

	if err := a.store.Write(ctx, location, candidate); err != nil {
		return a.artifactFailure(ctx, identity, location, operationWrite, err)
	}

	a.logInfo(ctx, logMsgSnapshotRecorded,
		logAttrTestScope, identity.TestScope,
		logAttrStrategy, identity.StrategyName,
		logAttrLocation, location,
	)

	return &Failure{
		Kind:              FailureRecorded,
		Message:           recordedMessage(tb.Name(), a.displayPath(location), recordingOn),
		Identity:          identity,
		ReferenceLocation: location,
		Err:               ErrSnapshotRecorded,
	}
}

func (a *Asserter) compare(
	ctx context.Context,
	tb TB,
	identity snapshot.Identity,
	location string,
	reference snapshot.Format,
	candidate snapshot.Format,
	diff snapshot.DiffFunc,
) *Failure {

	tb.Helper()

	result := snapshot.Compare(reference, candidate, diff)
	if result.IsMatch() {
		a.logDebug(ctx, logMsgSnapshotMatched, logAttrTestScope, identity.TestScope, logAttrLocation, location)
		a.removeStaleCandidate(ctx, identity, location)

		return nil
	}

	failureLocation := a.persistCandidate(ctx, identity, location, candidate)

	var diffCommand string
	if a.diffTool != nil && failureLocation != "" {
		diffCommand = a.runDiffTool(ctx, location, failureLocation)
	}

	a.logInfo(ctx, logMsgSnapshotMismatch,
		logAttrTestScope, identity.TestScope,
		logAttrStrategy, identity.StrategyName,
		logAttrLocation, location,
		logAttrFailureLocation, failureLocation,
	)

	candidatePath := ""
	if failureLocation != "" {
		candidatePath = a.displayPath(failureLocation)
	}

	return &Failure{
		Kind:              FailureMismatch,
		Message:           mismatchMessage(a.displayPath(location), candidatePath, diffCommand, result.Message()),
		Identity:          identity,
		ReferenceLocation: location,
		CandidateLocation: failureLocation,
		DiffCommand:       diffCommand,
		Attachments:       result.Attachments(),
		Err:               ErrSnapshotMismatch,
	}
}

// persistCandidate writes a mismatching candidate next to the failure dir and returns its location,
// or an empty location when persisting is off or failed.
func (a *Asserter) persistCandidate(
	ctx context.Context,
	identity snapshot.Identity,
	location string,
	candidate snapshot.Format,
) string {

	if !a.persistFailures {
		return ""
	}

	failureLocation := snapshot.FailurePath(a.failureDir, location)

	if err := a.store.Write(ctx, failureLocation, candidate); err != nil {
		a.recordArtifactError(ctx, operationWrite, identity.StrategyName)
		a.logWarn(ctx, logMsgFailureWriteFailed, err, logAttrFailureLocation, failureLocation)

		return ""
	}

	a.logDebug(ctx, logMsgFailureWritten, logAttrFailureLocation, failureLocation)

	return failureLocation
}

// removeStaleCandidate deletes the failure artifact an earlier mismatch left for location,
// so it cannot be accepted after the reference matches again. Stores without Remove keep it.
func (a *Asserter) removeStaleCandidate(ctx context.Context, identity snapshot.Identity, location string) {
	remover, ok := a.store.(snapshot.Remover)
	if !ok || !a.persistFailures {
		return
	}

	failureLocation := snapshot.FailurePath(a.failureDir, location)

	exists, err := a.store.Exists(ctx, failureLocation)
	if err == nil && !exists {
		return
	}

	if err == nil {
		err = remover.Remove(ctx, failureLocation)
	}

	if err != nil {
		a.recordArtifactError(ctx, operationRemove, identity.StrategyName)
		a.logWarn(ctx, logMsgFailureRemoveFailed, err, logAttrFailureLocation, failureLocation)

		return
	}

	a.logDebug(ctx, logMsgFailureRemoved, logAttrFailureLocation, failureLocation)
}

// runDiffTool returns the diff command line and starts the tool when launching is enabled.
// Only stores with plain files can be opened by a tool.
func (a *Asserter) runDiffTool(ctx context.Context, location, failureLocation string) string {
	locator, ok := a.store.(snapshot.FileLocator)
	if !ok {
		return ""
	}

	referencePath, err := locator.FilePath(location)
	if err != nil {
		return ""
	}

	candidatePath, err := locator.FilePath(failureLocation)
	if err != nil {
		return ""
	}

	if a.launchDiffTool {
		if launchErr := a.diffTool.Launch(ctx, referencePath, candidatePath); launchErr != nil {
			a.logWarn(ctx, logMsgDiffToolFailed, launchErr, logAttrLocation, location)
		}
	}

	return a.diffTool.Command(referencePath, candidatePath)
}

func (a *Asserter) artifactFailure(
	ctx context.Context,
	identity snapshot.Identity,
	location string,
	operation string,
	err error,
) *Failure {

	if !errors.Is(err, snapshot.ErrArtifactIO) {
		err = errors.Join(snapshot.ErrArtifactIO, err)
	}

	a.recordArtifactError(ctx, operation, identity.StrategyName)
	a.logError(ctx, logMsgArtifactIOFailed, err, logAttrLocation, location, logAttrOutcome, operation)

	return &Failure{
		Kind:              FailureArtifactIO,
		Message:           artifactIOMessage(operation, a.displayPath(location), err),
		Identity:          identity,
		ReferenceLocation: location,
		Err:               err,
	}
}

func (a *Asserter) rejected(ctx context.Context, testScope string, err error) *Failure {
	a.logError(ctx, logMsgAssertionRejected, err, logAttrTestScope, testScope)

	return &Failure{Kind: FailureInvalidAssertion, Message: invalidAssertionMessage(err), Err: err}
}

// displayPath returns the file path of location when the store keeps plain files.
func (a *Asserter) displayPath(location string) string {
	if locator, ok := a.store.(snapshot.FileLocator); ok {
		if file, err := locator.FilePath(location); err == nil {
			return file
		}
	}

	return location
}
