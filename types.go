package aajourney

import (
	"context"
	"errors"
	"time"
)

// FIPInfo describes one Financial Information Provider offered by the AA
// network catalog.
type FIPInfo struct {
	ID      string
	Name    string
	Enabled bool
	FITypes []string
}

// TypeIdentifier names one identifier the FIP requires for discovery,
// e.g. category "STRONG" type "MOBILE".
type TypeIdentifier struct {
	Category string
	Type     string
}

// FITypeIdentifier groups the identifiers required for one financial
// information type.
type FITypeIdentifier struct {
	FIType      string
	Identifiers []TypeIdentifier
}

// FipDetails carries the FIP-specific discovery requirements fetched after
// FIP selection. A journey never advances to discovery without it.
type FipDetails struct {
	FipID           string
	FipName         string
	TypeIdentifiers []FITypeIdentifier
}

// Identifier is one caller-supplied discovery identifier value.
type Identifier struct {
	Category string
	Type     string
	Value    string
}

// DiscoveredAccount is one account returned by account discovery.
type DiscoveredAccount struct {
	AccountRefNumber string
	MaskedAccNumber  string
	AccType          string
	FIType           string
}

// LinkedAccount is one account linked to the user's AA profile. The
// LinkRefNumber is the identity under which consent selection operates.
type LinkedAccount struct {
	LinkRefNumber    string
	AccountRefNumber string
	MaskedAccNumber  string
	FipID            string
	FipName          string
	AccType          string
	FIType           string
}

// ConsentDateRange is an inclusive date range inside a consent request.
type ConsentDateRange struct {
	From time.Time
	To   time.Time
}

// ConsentLife is a unit+value retention or validity duration, opaque to the
// orchestrator and round-tripped unchanged.
type ConsentLife struct {
	Unit  string
	Value int
}

// ConsentFrequency is a unit+value access frequency, opaque to the
// orchestrator and round-tripped unchanged.
type ConsentFrequency struct {
	Unit  string
	Value int
}

// ConsentDetail is the pending consent request presented for approval.
// Every field is carried through to approve/deny exactly as fetched.
type ConsentDetail struct {
	ConsentHandle       string
	Purpose             string
	PurposeCode         string
	DisplayDescriptions []string
	DataRange           ConsentDateRange
	Validity            ConsentDateRange
	DataLife            ConsentLife
	Frequency           ConsentFrequency
	FITypes             []string
}

// Completion records which terminal branch a completed journey took.
type Completion struct {
	Granted   bool
	ConsentID string
}

// ClientError is the normalized remote failure returned by [Client]
// implementations. Message is what the journey records in its error state;
// Code is the optional AA network error code.
type ClientError struct {
	Code    string
	Message string
}

func (e *ClientError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// ClientConfig is passed to [Client.InitializeWith] before connecting.
// The fields are opaque to the orchestrator.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the AA network client contract this orchestrator depends on.
// Implementations wrap a certified AA SDK. Remote failures must be returned
// as *[ClientError]; implementations never panic across this boundary.
//
// All methods are called at most once concurrently per journey: the
// orchestrator enforces a single in-flight operation.
type Client interface {
	InitializeWith(ctx context.Context, cfg ClientConfig) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	LoginWithUsernameOrMobile(ctx context.Context, username, mobile, consentHandleID string) (otpReference string, err error)
	VerifyLoginOtp(ctx context.Context, otp, otpReference string) (userID string, err error)
	Logout(ctx context.Context) error

	ListFIPs(ctx context.Context) ([]FIPInfo, error)
	FetchFipDetails(ctx context.Context, fipID string) (*FipDetails, error)

	DiscoverAccounts(ctx context.Context, fipID string, fiTypes []string, identifiers []Identifier) ([]DiscoveredAccount, error)
	LinkAccounts(ctx context.Context, accounts []DiscoveredAccount, details *FipDetails) (otpReference string, err error)
	ConfirmAccountLinking(ctx context.Context, otpReference, otp string) ([]LinkedAccount, error)
	FetchLinkedAccounts(ctx context.Context) ([]LinkedAccount, error)

	GetConsentRequestDetails(ctx context.Context, consentHandleID string) (*ConsentDetail, error)
	ApproveConsentRequest(ctx context.Context, detail *ConsentDetail, accounts []LinkedAccount) (consentID string, err error)
	DenyConsentRequest(ctx context.Context, detail *ConsentDetail) error
}

// remoteMessage extracts the display message for a remote failure. A typed
// *ClientError contributes its Message verbatim; anything else falls back to
// Error().
func remoteMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}
