package aajourney

// The reducer is the only place journey state changes shape. It is a pure
// function: no I/O, no clocks, no reads outside its arguments, and the input
// state is never mutated. Identical (state, action) pairs always produce
// identical outputs, which is what makes the transition table testable
// without a network client.

type action interface {
	journeyAction()
}

type actionSetLoading struct {
	on bool
}

// actionFail records a remote failure: the journey moves to StepError and
// the message becomes visible to the caller. Loading is always cleared.
type actionFail struct {
	message string
}

// actionReset returns the canonical initial state regardless of prior state.
type actionReset struct{}

type actionInitialized struct {
	journeyID       string
	consentHandleID string
}

type actionLoginStarted struct {
	otpReference string
}

type actionAuthenticated struct {
	userID string
}

// actionCatalogReplaced replaces the FIP catalog wholesale; repeated fetches
// never accumulate.
type actionCatalogReplaced struct {
	fips []FIPInfo
}

type actionFIPSelected struct {
	fip     FIPInfo
	details *FipDetails
}

type actionAccountsDiscovered struct {
	accounts []DiscoveredAccount
}

type actionLinkSelectionSet struct {
	accounts []DiscoveredAccount
}

type actionLinkingStarted struct {
	otpReference string
}

// actionLinkingConfirmed installs the authoritative linked-account list and
// retires the linking OTP reference. The journey lands on review; the
// consent fetch that follows is an explicit transition effect, not a
// reaction to state shape.
type actionLinkingConfirmed struct {
	linked []LinkedAccount
}

type actionConsentLoaded struct {
	details *ConsentDetail
}

type actionConsentSelectionSet struct {
	accounts []LinkedAccount
}

type actionCompleted struct {
	granted   bool
	consentID string
}

// actionRestored installs a snapshot-recovered state during resume.
type actionRestored struct {
	state JourneyState
}

func (actionSetLoading) journeyAction()          {}
func (actionFail) journeyAction()                {}
func (actionReset) journeyAction()               {}
func (actionInitialized) journeyAction()         {}
func (actionLoginStarted) journeyAction()        {}
func (actionAuthenticated) journeyAction()       {}
func (actionCatalogReplaced) journeyAction()     {}
func (actionFIPSelected) journeyAction()         {}
func (actionAccountsDiscovered) journeyAction()  {}
func (actionLinkSelectionSet) journeyAction()    {}
func (actionLinkingStarted) journeyAction()      {}
func (actionLinkingConfirmed) journeyAction()    {}
func (actionConsentLoaded) journeyAction()       {}
func (actionConsentSelectionSet) journeyAction() {}
func (actionCompleted) journeyAction()           {}
func (actionRestored) journeyAction()            {}

func reduce(state JourneyState, a action) JourneyState {
	next := cloneState(state)

	switch act := a.(type) {
	case actionSetLoading:
		next.Loading = act.on
		if act.on {
			next.Err = ""
		}

	case actionFail:
		next.Loading = false
		next.Err = act.message
		next.Step = StepError

	case actionReset:
		return initialState()

	case actionInitialized:
		next.JourneyID = act.journeyID
		next.ConsentHandleID = act.consentHandleID
		next.Session.Initialized = true
		next.Session.Connected = true
		next.Loading = false
		next.Step = StepLogin

	case actionLoginStarted:
		next.LoginOtpRef = act.otpReference
		next.Loading = false
		next.Step = StepOTPVerification

	case actionAuthenticated:
		next.Session.Authenticated = true
		next.Session.UserID = act.userID
		next.LoginOtpRef = ""
		next.Loading = false
		next.Step = StepFIPSelection

	case actionCatalogReplaced:
		next.Catalog.AvailableFIPs = cloneFIPs(act.fips)
		next.Loading = false

	case actionFIPSelected:
		fip := act.fip
		next.Catalog.SelectedFIP = cloneFIPInfo(&fip)
		next.Catalog.FipDetails = cloneFipDetails(act.details)
		next.Loading = false
		next.Step = StepAccountDiscovery

	case actionAccountsDiscovered:
		next.Discovery.DiscoveredAccounts = cloneDiscovered(act.accounts)
		next.Discovery.AccountsToLink = nil
		next.Loading = false
		next.Step = StepAccountLinking

	case actionLinkSelectionSet:
		next.Discovery.AccountsToLink = cloneDiscovered(act.accounts)

	case actionLinkingStarted:
		next.Linking.LinkingOtpRef = act.otpReference
		next.Loading = false
		next.Step = StepLinkingOTP

	case actionLinkingConfirmed:
		next.Linking.LinkedAccounts = cloneLinked(act.linked)
		next.Linking.LinkingOtpRef = ""
		next.Loading = false
		next.Step = StepConsentReview

	case actionConsentLoaded:
		next.Consent.Details = cloneConsentDetail(act.details)
		next.Loading = false
		next.Step = StepConsentApproval

	case actionConsentSelectionSet:
		next.Consent.SelectedAccounts = cloneLinked(act.accounts)

	case actionCompleted:
		next.Completion = &Completion{Granted: act.granted, ConsentID: act.consentID}
		next.Loading = false
		next.Step = StepCompleted

	case actionRestored:
		return cloneState(act.state)
	}

	return next
}
