package aajourney

// Step identifies the journey's position in the consent state machine.
//
//	Docs: docs/journey-steps.md
type Step uint8

const (
	// StepInitialization is an exported constant or variable used by the journey orchestrator.
	StepInitialization Step = iota
	// StepLogin is an exported constant or variable used by the journey orchestrator.
	StepLogin
	// StepOTPVerification is an exported constant or variable used by the journey orchestrator.
	StepOTPVerification
	// StepFIPSelection is an exported constant or variable used by the journey orchestrator.
	StepFIPSelection
	// StepAccountDiscovery is an exported constant or variable used by the journey orchestrator.
	StepAccountDiscovery
	// StepAccountLinking is an exported constant or variable used by the journey orchestrator.
	StepAccountLinking
	// StepLinkingOTP is an exported constant or variable used by the journey orchestrator.
	StepLinkingOTP
	// StepConsentReview is an exported constant or variable used by the journey orchestrator.
	StepConsentReview
	// StepConsentApproval is an exported constant or variable used by the journey orchestrator.
	StepConsentApproval
	// StepCompleted is an exported constant or variable used by the journey orchestrator.
	StepCompleted
	// StepError is an exported constant or variable used by the journey orchestrator.
	StepError

	stepCount
)

var stepNames = [stepCount]string{
	StepInitialization:   "INITIALIZATION",
	StepLogin:            "LOGIN",
	StepOTPVerification:  "OTP_VERIFICATION",
	StepFIPSelection:     "FIP_SELECTION",
	StepAccountDiscovery: "ACCOUNT_DISCOVERY",
	StepAccountLinking:   "ACCOUNT_LINKING",
	StepLinkingOTP:       "LINKING_OTP",
	StepConsentReview:    "CONSENT_REVIEW",
	StepConsentApproval:  "CONSENT_APPROVAL",
	StepCompleted:        "COMPLETED",
	StepError:            "ERROR",
}

func (s Step) String() string {
	if s >= stepCount {
		return "UNKNOWN"
	}
	return stepNames[s]
}

// Terminal reports whether the step ends the journey. StepError is not
// terminal: the journey can be reset from it.
func (s Step) Terminal() bool {
	return s == StepCompleted
}

// SessionState tracks AA network session progress for one journey.
type SessionState struct {
	Initialized   bool
	Connected     bool
	Authenticated bool
	UserID        string
}

// CatalogState holds the FIP catalog and the FIP chosen from it.
type CatalogState struct {
	AvailableFIPs []FIPInfo
	SelectedFIP   *FIPInfo
	FipDetails    *FipDetails
}

// DiscoveryState holds discovery results and the accounts chosen for linking.
type DiscoveryState struct {
	DiscoveredAccounts []DiscoveredAccount
	AccountsToLink     []DiscoveredAccount
}

// LinkingState holds linked accounts and the single-use linking OTP reference.
type LinkingState struct {
	LinkedAccounts []LinkedAccount
	LinkingOtpRef  string
}

// ConsentState holds the fetched consent request and the accounts selected
// for it. SelectedAccounts is always a subset of LinkingState.LinkedAccounts
// by link reference.
type ConsentState struct {
	Details          *ConsentDetail
	SelectedAccounts []LinkedAccount
}

// JourneyState is the single source of truth for one in-progress consent
// journey. It is owned exclusively by [Journey]; [Journey.State] returns a
// deep copy so callers can read it without aliasing orchestrator memory.
type JourneyState struct {
	JourneyID       string
	Step            Step
	ConsentHandleID string

	Session   SessionState
	Catalog   CatalogState
	Discovery DiscoveryState
	Linking   LinkingState
	Consent   ConsentState

	LoginOtpRef string
	Completion  *Completion

	Loading bool
	Err     string
}

// initialState returns the canonical initial journey state. Reset always
// produces a state structurally identical to this one.
func initialState() JourneyState {
	return JourneyState{Step: StepInitialization}
}

// cloneState deep-copies s. The reducer and State() both rely on it so that
// no slice or pointer is ever shared between two state values.
func cloneState(s JourneyState) JourneyState {
	out := s
	out.Catalog.AvailableFIPs = cloneFIPs(s.Catalog.AvailableFIPs)
	out.Catalog.SelectedFIP = cloneFIPInfo(s.Catalog.SelectedFIP)
	out.Catalog.FipDetails = cloneFipDetails(s.Catalog.FipDetails)
	out.Discovery.DiscoveredAccounts = cloneDiscovered(s.Discovery.DiscoveredAccounts)
	out.Discovery.AccountsToLink = cloneDiscovered(s.Discovery.AccountsToLink)
	out.Linking.LinkedAccounts = cloneLinked(s.Linking.LinkedAccounts)
	out.Consent.Details = cloneConsentDetail(s.Consent.Details)
	out.Consent.SelectedAccounts = cloneLinked(s.Consent.SelectedAccounts)
	if s.Completion != nil {
		c := *s.Completion
		out.Completion = &c
	}
	return out
}

func cloneFIPs(in []FIPInfo) []FIPInfo {
	if in == nil {
		return nil
	}
	out := make([]FIPInfo, len(in))
	for i, f := range in {
		out[i] = f
		out[i].FITypes = cloneStrings(f.FITypes)
	}
	return out
}

func cloneFIPInfo(in *FIPInfo) *FIPInfo {
	if in == nil {
		return nil
	}
	out := *in
	out.FITypes = cloneStrings(in.FITypes)
	return &out
}

func cloneFipDetails(in *FipDetails) *FipDetails {
	if in == nil {
		return nil
	}
	out := *in
	if in.TypeIdentifiers != nil {
		out.TypeIdentifiers = make([]FITypeIdentifier, len(in.TypeIdentifiers))
		for i, ti := range in.TypeIdentifiers {
			out.TypeIdentifiers[i] = ti
			if ti.Identifiers != nil {
				ids := make([]TypeIdentifier, len(ti.Identifiers))
				copy(ids, ti.Identifiers)
				out.TypeIdentifiers[i].Identifiers = ids
			}
		}
	}
	return &out
}

func cloneDiscovered(in []DiscoveredAccount) []DiscoveredAccount {
	if in == nil {
		return nil
	}
	out := make([]DiscoveredAccount, len(in))
	copy(out, in)
	return out
}

func cloneLinked(in []LinkedAccount) []LinkedAccount {
	if in == nil {
		return nil
	}
	out := make([]LinkedAccount, len(in))
	copy(out, in)
	return out
}

func cloneConsentDetail(in *ConsentDetail) *ConsentDetail {
	if in == nil {
		return nil
	}
	out := *in
	out.DisplayDescriptions = cloneStrings(in.DisplayDescriptions)
	out.FITypes = cloneStrings(in.FITypes)
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
