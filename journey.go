package aajourney

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/zmrishh/aajourney/internal"
	"github.com/zmrishh/aajourney/internal/rate"
	"github.com/zmrishh/aajourney/snapshot"
	"github.com/zmrishh/aajourney/token"
)

// Journey defines a public type used by aajourney APIs.
//
// A Journey owns exactly one consent flow for one end user. All exported
// methods are safe for concurrent use; at most one network operation is in
// flight at a time and concurrent callers get [ErrOperationInFlight].
type Journey struct {
	mu    sync.Mutex
	state JourneyState
	epoch uint64
	opRef string

	config    Config
	client    Client
	limiter   *rate.Limiter
	snapshots *snapshot.Store
	tokens    *token.Manager
	audit     *auditDispatcher
	metrics   *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Journey) Close() {
	if j == nil {
		return
	}
	if j.audit != nil {
		j.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Journey) AuditDropped() uint64 {
	if j == nil || j.audit == nil {
		return 0
	}
	return j.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Journey) MetricsSnapshot() MetricsSnapshot {
	if j == nil || j.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return j.metrics.Snapshot()
}

// State returns a deep copy of the current journey state. The copy shares no
// memory with the orchestrator: mutating it cannot influence the journey.
func (j *Journey) State() JourneyState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return cloneState(j.state)
}

func (j *Journey) metricInc(id MetricID) {
	if j == nil || j.metrics == nil {
		return
	}
	j.metrics.Inc(id)
}

func (j *Journey) observeLatency(start time.Time) {
	if j == nil || j.metrics == nil {
		return
	}
	j.metrics.Observe(MetricOperationLatency, time.Since(start))
}

// begin gates an operation: the journey must not be completed, must not have
// another operation in flight, and must sit at one of the expected steps.
// On success the loading flag is set and the current epoch is returned; the
// caller must finish with apply or fail using that epoch.
func (j *Journey) begin(expected ...Step) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Step == StepCompleted {
		return 0, ErrJourneyCompleted
	}
	if j.state.Loading {
		return 0, ErrOperationInFlight
	}
	ok := false
	for _, s := range expected {
		if j.state.Step == s {
			ok = true
			break
		}
	}
	if !ok {
		return 0, ErrStepMismatch
	}

	j.state = reduce(j.state, actionSetLoading{on: true})
	if ref, err := internal.NewOpRef(); err == nil {
		j.opRef = ref.String()
	}
	return j.epoch, nil
}

// currentOpRef returns the correlation reference of the most recent operation.
func (j *Journey) currentOpRef() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.opRef
}

// abort clears the loading flag without recording a failure. Used when a
// local pre-check rejects input after begin: the journey stays at its step.
func (j *Journey) abort(epoch uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if epoch != j.epoch {
		return
	}
	j.state = reduce(j.state, actionSetLoading{on: false})
}

// apply commits the given actions if the journey epoch is unchanged since
// begin. A stale epoch means the journey was reset while the operation was in
// flight: the result is discarded and apply reports false.
func (j *Journey) apply(ctx context.Context, epoch uint64, actions ...action) bool {
	j.mu.Lock()
	if epoch != j.epoch {
		j.mu.Unlock()
		j.metricInc(MetricStaleResultDiscarded)
		return false
	}
	for _, a := range actions {
		j.state = reduce(j.state, a)
	}
	state := cloneState(j.state)
	j.mu.Unlock()

	j.persist(ctx, state, epoch)
	return true
}

// fail records a remote failure: the journey moves to ERROR carrying the
// remote display message. Stale epochs are discarded the same way apply does.
func (j *Journey) fail(ctx context.Context, epoch uint64, eventType string, err error) {
	j.mu.Lock()
	if epoch != j.epoch {
		j.mu.Unlock()
		j.metricInc(MetricStaleResultDiscarded)
		return
	}
	j.state = reduce(j.state, actionFail{message: remoteMessage(err)})
	state := cloneState(j.state)
	j.mu.Unlock()

	j.metricInc(MetricJourneyFailed)
	j.emitAudit(ctx, eventType, false, state, err, nil)
	j.persist(ctx, state, epoch)
}

// persist writes a best-effort snapshot of the state, stamped with the epoch
// it was produced under. Failures never surface to the caller; they only bump
// a metric. Nothing is written before the journey has an identity, and a
// completed journey clears its snapshot.
func (j *Journey) persist(ctx context.Context, state JourneyState, epoch uint64) {
	if j.snapshots == nil || state.JourneyID == "" {
		return
	}
	if state.Step == StepCompleted {
		if err := j.snapshots.Delete(ctx, state.JourneyID); err != nil {
			log.Print("aajourney: snapshot delete failed: ", err)
		}
		return
	}
	rec := toRecord(state)
	rec.Epoch = epoch
	if err := j.snapshots.Save(ctx, rec); err != nil {
		j.metricInc(MetricSnapshotSaveFailed)
		log.Print("aajourney: snapshot save failed: ", err)
	}
}

// checkOTPBudget consults the attempt budget for the given OTP kind before a
// remote verification. The budget is keyed by consent handle, not journey ID,
// so resetting the journey does not refill it.
func (j *Journey) checkOTPBudget(ctx context.Context, kind, handle string) error {
	if j.limiter == nil {
		return nil
	}
	if err := j.limiter.Check(ctx, kind, handle); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			j.metricInc(MetricOTPRateLimited)
			return ErrOTPRateLimited
		}
		return ErrOTPThrottleUnavailable
	}
	if err := j.limiter.Increment(ctx, kind, handle); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			j.metricInc(MetricOTPRateLimited)
			return ErrOTPRateLimited
		}
		return ErrOTPThrottleUnavailable
	}
	return nil
}

func (j *Journey) resetOTPBudget(ctx context.Context, kind, handle string) {
	if j.limiter == nil {
		return
	}
	if err := j.limiter.Reset(ctx, kind, handle); err != nil {
		log.Print("aajourney: otp budget reset failed: ", err)
	}
}

// Reset abandons the journey from any step and returns it to the canonical
// initial state. Network teardown and snapshot deletion are best-effort: the
// local state is reset first and a failed Logout or Disconnect never blocks
// it. In-flight operation results from before the reset are discarded.
func (j *Journey) Reset(ctx context.Context) error {
	j.mu.Lock()
	prev := cloneState(j.state)
	j.epoch++
	j.state = reduce(j.state, actionReset{})
	j.mu.Unlock()

	if prev.Session.Authenticated {
		if err := j.client.Logout(ctx); err != nil {
			log.Print("aajourney: logout during reset failed: ", err)
		}
	}
	if prev.Session.Connected {
		if err := j.client.Disconnect(ctx); err != nil {
			log.Print("aajourney: disconnect during reset failed: ", err)
		}
	}
	if j.snapshots != nil && prev.JourneyID != "" {
		if err := j.snapshots.Delete(ctx, prev.JourneyID); err != nil {
			log.Print("aajourney: snapshot delete failed: ", err)
		}
	}

	j.metricInc(MetricJourneyReset)
	j.emitAudit(ctx, auditEventJourneyReset, true, prev, nil, nil)
	return nil
}
