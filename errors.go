package aajourney

import "errors"

var (
	// ErrConsentHandleMissing is an exported constant or variable used by the journey orchestrator.
	ErrConsentHandleMissing = errors.New("consent handle missing")
	// ErrMobileInvalid is an exported constant or variable used by the journey orchestrator.
	ErrMobileInvalid = errors.New("mobile number must be exactly 10 digits")
	// ErrOTPInvalid is an exported constant or variable used by the journey orchestrator.
	ErrOTPInvalid = errors.New("otp format invalid")
	// ErrOTPReferenceMissing is an exported constant or variable used by the journey orchestrator.
	ErrOTPReferenceMissing = errors.New("otp reference missing")
	// ErrOTPRateLimited is an exported constant or variable used by the journey orchestrator.
	ErrOTPRateLimited = errors.New("otp attempts rate limited")
	// ErrOTPThrottleUnavailable is an exported constant or variable used by the journey orchestrator.
	ErrOTPThrottleUnavailable = errors.New("otp throttle backend unavailable")
	// ErrFIPUnknown is an exported constant or variable used by the journey orchestrator.
	ErrFIPUnknown = errors.New("fip not present in catalog")
	// ErrFIPDisabled is an exported constant or variable used by the journey orchestrator.
	ErrFIPDisabled = errors.New("selected fip is disabled")
	// ErrFIPDetailsMissing is an exported constant or variable used by the journey orchestrator.
	ErrFIPDetailsMissing = errors.New("fip details missing")
	// ErrIdentifiersIncomplete is an exported constant or variable used by the journey orchestrator.
	ErrIdentifiersIncomplete = errors.New("discovery identifiers missing or invalid")
	// ErrNoAccountsSelected is an exported constant or variable used by the journey orchestrator.
	ErrNoAccountsSelected = errors.New("no accounts selected")
	// ErrSelectionNotDiscovered is an exported constant or variable used by the journey orchestrator.
	ErrSelectionNotDiscovered = errors.New("selection contains account not present in discovery results")
	// ErrSelectionNotLinked is an exported constant or variable used by the journey orchestrator.
	ErrSelectionNotLinked = errors.New("selection contains account not present in linked accounts")
	// ErrConsentDetailsMissing is an exported constant or variable used by the journey orchestrator.
	ErrConsentDetailsMissing = errors.New("consent details missing")
	// ErrStepMismatch is an exported constant or variable used by the journey orchestrator.
	ErrStepMismatch = errors.New("operation not valid for current journey step")
	// ErrOperationInFlight is an exported constant or variable used by the journey orchestrator.
	ErrOperationInFlight = errors.New("another operation is in flight")
	// ErrJourneyCompleted is an exported constant or variable used by the journey orchestrator.
	ErrJourneyCompleted = errors.New("journey already completed")
	// ErrJourneyNotReady is an exported constant or variable used by the journey orchestrator.
	ErrJourneyNotReady = errors.New("journey not initialized")
	// ErrResumeDisabled is an exported constant or variable used by the journey orchestrator.
	ErrResumeDisabled = errors.New("journey resume disabled")
	// ErrResumeUnavailable is an exported constant or variable used by the journey orchestrator.
	ErrResumeUnavailable = errors.New("journey resume unavailable")
)
