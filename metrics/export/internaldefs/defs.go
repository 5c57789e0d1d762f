package internaldefs

import (
	aajourney "github.com/zmrishh/aajourney"
)

// CounterDef defines a public type used by aajourney APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   aajourney.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by aajourney APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   aajourney.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the journey orchestrator.
var CounterDefs = []CounterDef{
	{ID: aajourney.MetricJourneyStarted, Name: "aajourney_journey_started_total", Help: "Started consent journeys."},
	{ID: aajourney.MetricLoginOTPSent, Name: "aajourney_login_otp_sent_total", Help: "Dispatched login OTPs."},
	{ID: aajourney.MetricLoginVerified, Name: "aajourney_login_verified_total", Help: "Successful login OTP verifications."},
	{ID: aajourney.MetricOTPRejectedLocally, Name: "aajourney_otp_rejected_locally_total", Help: "OTP inputs rejected before any network call."},
	{ID: aajourney.MetricOTPRateLimited, Name: "aajourney_otp_rate_limited_total", Help: "OTP attempts denied by the attempt budget."},
	{ID: aajourney.MetricCatalogFetched, Name: "aajourney_catalog_fetched_total", Help: "FIP catalog fetches."},
	{ID: aajourney.MetricFIPSelected, Name: "aajourney_fip_selected_total", Help: "FIP selections."},
	{ID: aajourney.MetricAccountsDiscovered, Name: "aajourney_accounts_discovered_total", Help: "Account discovery operations."},
	{ID: aajourney.MetricAccountsLinked, Name: "aajourney_accounts_linked_total", Help: "Account linking initiations."},
	{ID: aajourney.MetricLinkingConfirmed, Name: "aajourney_linking_confirmed_total", Help: "Confirmed account linkings."},
	{ID: aajourney.MetricConsentFetched, Name: "aajourney_consent_fetched_total", Help: "Consent detail fetches."},
	{ID: aajourney.MetricConsentApproved, Name: "aajourney_consent_approved_total", Help: "Approved consent requests."},
	{ID: aajourney.MetricConsentDenied, Name: "aajourney_consent_denied_total", Help: "Denied consent requests."},
	{ID: aajourney.MetricJourneyFailed, Name: "aajourney_journey_failed_total", Help: "Journeys moved to the error step by a remote failure."},
	{ID: aajourney.MetricJourneyReset, Name: "aajourney_journey_reset_total", Help: "Journey resets."},
	{ID: aajourney.MetricJourneyResumed, Name: "aajourney_journey_resumed_total", Help: "Journeys resumed from a snapshot."},
	{ID: aajourney.MetricSnapshotSaveFailed, Name: "aajourney_snapshot_save_failed_total", Help: "Failed best-effort snapshot saves."},
	{ID: aajourney.MetricStaleResultDiscarded, Name: "aajourney_stale_result_discarded_total", Help: "Operation results discarded after a reset."},
}

// HistogramDefs is an exported constant or variable used by the journey orchestrator.
var HistogramDefs = []HistogramDef{
	{ID: aajourney.MetricOperationLatency, Name: "aajourney_operation_latency_seconds", Help: "Network operation latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the journey orchestrator.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the journey orchestrator.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
