package snaptest

import (
	"context"
	"math"
	"time"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

const (
	logMsgSnapshotRecorded    = "snapshot recorded"
	logMsgSnapshotMatched     = "snapshot matched"
	logMsgSnapshotMismatch    = "snapshot mismatch"
	logMsgFailureWritten      = "failure artifact written"
	logMsgFailureWriteFailed  = "failed to write failure artifact"
	logMsgFailureRemoved      = "stale failure artifact removed"
	logMsgFailureRemoveFailed = "failed to remove stale failure artifact"
	logMsgDiffToolFailed      = "diff tool failed to start"
	logMsgArtifactIOFailed    = "reference artifact i/o failed"
	logMsgProductionTimedOut  = "snapshot production timed out"
	logMsgProductionFailed    = "snapshot production failed"
	logMsgAssertionRejected   = "snapshot assertion rejected"
	logAttrError              = "error"
	logAttrTestScope          = "test_scope"
	logAttrStrategy           = "strategy"
	logAttrLocation           = "location"
	logAttrFailureLocation    = "failure_location"
	logAttrDurationMS         = "duration_ms"
	logAttrOutcome            = "outcome"
	metricAssertionsTotal     = "snapshot_assertions_total"
	metricAssertionDuration   = "snapshot_assertion_duration_seconds"
	metricProductionDuration  = "snapshot_production_duration_seconds"
	metricArtifactErrorsTotal = "snapshot_artifact_errors_total"
	labelStrategy             = "strategy"
	labelOutcome              = "outcome"
	labelOperation            = "operation"
	spanNameAssert            = "snapshot.assert"
	spanAttrTestScope         = "snapshot.test_scope"
	spanAttrStrategy          = "snapshot.strategy"
	spanAttrLocation          = "snapshot.location"
	spanAttrOutcome           = "snapshot.outcome"
	statusSuccess             = "success"
	statusError               = "error"
	outcomeMatch              = "match"
	operationRead             = "read"
	operationWrite            = "write"
	operationRemove           = "remove"
)

// logDebug logs at debug level, preferring the contextual logger.
func (a *Asserter) logDebug(ctx context.Context, msg string, args ...any) {
	if a.contextualLogger != nil {
		a.contextualLogger.DebugContext(ctx, msg, args...)
	} else if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

// logInfo logs at info level, preferring the contextual logger.
func (a *Asserter) logInfo(ctx context.Context, msg string, args ...any) {
	if a.contextualLogger != nil {
		a.contextualLogger.InfoContext(ctx, msg, args...)
	} else if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

// logWarn logs at warn level, preferring the contextual logger.
func (a *Asserter) logWarn(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if a.contextualLogger != nil {
		a.contextualLogger.WarnContext(ctx, msg, allArgs...)
	} else if a.logger != nil {
		a.logger.Warn(msg, allArgs...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (a *Asserter) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if a.contextualLogger != nil {
		a.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	} else if a.logger != nil {
		a.logger.Error(msg, allArgs...)
	}
}

// recordDuration records a duration metric with context if the collector supports it.
func (a *Asserter) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if a.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := a.metricsCollector.(snapshot.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
	} else {
		a.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

// incrementCounter increments a counter metric with context if the collector supports it.
func (a *Asserter) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if a.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := a.metricsCollector.(snapshot.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		a.metricsCollector.IncrementCounter(metric, labels)
	}
}

// recordArtifactError counts a failed store operation.
func (a *Asserter) recordArtifactError(ctx context.Context, operation, strategyName string) {
	a.incrementCounter(ctx, metricArtifactErrorsTotal, map[string]string{
		labelOperation: operation,
		labelStrategy:  strategyName,
	})
}

// === Observer Pattern ===
// assertionObserver encapsulates the tracing span and the metrics of one assertion.

type assertionObserver struct {
	a            *Asserter
	ctx          context.Context
	span         snapshot.SpanContext
	start        time.Time
	testScope    string
	strategyName string
}

// observeAssertion starts the span of one assertion and returns the context to continue with.
func (a *Asserter) observeAssertion(
	ctx context.Context,
	testScope string,
	strategyName string,
) (*assertionObserver, context.Context) {

	observer := &assertionObserver{
		a:            a,
		start:        time.Now(),
		testScope:    testScope,
		strategyName: strategyName,
	}

	if a.tracingCollector != nil {
		ctx, observer.span = a.tracingCollector.StartSpan(ctx, spanNameAssert, map[string]string{
			spanAttrTestScope: testScope,
			spanAttrStrategy:  strategyName,
		})
	}

	observer.ctx = ctx

	return observer, ctx
}

// finish records the outcome: "match" for nil, otherwise the failure kind.
func (o *assertionObserver) finish(failure *Failure, location string) {
	outcome, status := outcomeMatch, statusSuccess
	if failure != nil {
		outcome, status = failure.Kind.String(), statusError
	}

	duration := time.Since(o.start)
	labels := map[string]string{
		labelStrategy: o.strategyName,
		labelOutcome:  outcome,
	}

	o.a.incrementCounter(o.ctx, metricAssertionsTotal, labels)
	o.a.recordDuration(o.ctx, metricAssertionDuration, duration, labels)

	if o.span == nil || o.a.tracingCollector == nil {
		return
	}

	o.span.SetStatus(status)
	o.span.AddAttribute(spanAttrOutcome, outcome)

	attrs := map[string]string{spanAttrOutcome: outcome}
	if location != "" {
		o.span.AddAttribute(spanAttrLocation, location)
		attrs[spanAttrLocation] = location
	}

	o.a.tracingCollector.FinishSpan(o.span, status, attrs)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
