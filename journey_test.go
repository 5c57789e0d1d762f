package aajourney

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockClient struct {
	mu    sync.Mutex
	calls map[string]int

	failOn map[string]error
	gate   map[string]chan struct{}

	fips       []FIPInfo
	details    *FipDetails
	discovered []DiscoveredAccount
	linked     []LinkedAccount
	consent    *ConsentDetail
}

func newMockClient() *mockClient {
	return &mockClient{
		calls:  map[string]int{},
		failOn: map[string]error{},
		gate:   map[string]chan struct{}{},
		fips: []FIPInfo{
			{ID: "fip-hdfc", Name: "HDFC Bank", Enabled: true, FITypes: []string{"DEPOSIT"}},
			{ID: "fip-defunct", Name: "Defunct Bank", Enabled: false, FITypes: []string{"DEPOSIT"}},
		},
		details: &FipDetails{
			FipID:   "fip-hdfc",
			FipName: "HDFC Bank",
			TypeIdentifiers: []FITypeIdentifier{
				{
					FIType: "DEPOSIT",
					Identifiers: []TypeIdentifier{
						{Category: "STRONG", Type: "MOBILE"},
					},
				},
			},
		},
		discovered: []DiscoveredAccount{
			{AccountRefNumber: "acc-1", MaskedAccNumber: "XXXX1234", AccType: "SAVINGS", FIType: "DEPOSIT"},
			{AccountRefNumber: "acc-2", MaskedAccNumber: "XXXX5678", AccType: "CURRENT", FIType: "DEPOSIT"},
		},
		linked: []LinkedAccount{
			{LinkRefNumber: "lnk-1", AccountRefNumber: "acc-1", MaskedAccNumber: "XXXX1234", FipID: "fip-hdfc", FipName: "HDFC Bank", AccType: "SAVINGS", FIType: "DEPOSIT"},
		},
		consent: &ConsentDetail{
			ConsentHandle: "ch-123",
			Purpose:       "Wealth management service",
			PurposeCode:   "101",
			FITypes:       []string{"DEPOSIT"},
		},
	}
}

func (m *mockClient) enter(name string) error {
	m.mu.Lock()
	m.calls[name]++
	gate := m.gate[name]
	err := m.failOn[name]
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (m *mockClient) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockClient) setFailure(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failOn, name)
		return
	}
	m.failOn[name] = err
}

func (m *mockClient) gateOn(name string) chan struct{} {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate[name] = gate
	m.mu.Unlock()
	return gate
}

func (m *mockClient) InitializeWith(ctx context.Context, cfg ClientConfig) error {
	return m.enter("InitializeWith")
}

func (m *mockClient) Connect(ctx context.Context) error {
	return m.enter("Connect")
}

func (m *mockClient) Disconnect(ctx context.Context) error {
	return m.enter("Disconnect")
}

func (m *mockClient) LoginWithUsernameOrMobile(ctx context.Context, username, mobile, consentHandleID string) (string, error) {
	if err := m.enter("LoginWithUsernameOrMobile"); err != nil {
		return "", err
	}
	return "login-ref-1", nil
}

func (m *mockClient) VerifyLoginOtp(ctx context.Context, otp, otpReference string) (string, error) {
	if err := m.enter("VerifyLoginOtp"); err != nil {
		return "", err
	}
	return "user-7", nil
}

func (m *mockClient) Logout(ctx context.Context) error {
	return m.enter("Logout")
}

func (m *mockClient) ListFIPs(ctx context.Context) ([]FIPInfo, error) {
	if err := m.enter("ListFIPs"); err != nil {
		return nil, err
	}
	return m.fips, nil
}

func (m *mockClient) FetchFipDetails(ctx context.Context, fipID string) (*FipDetails, error) {
	if err := m.enter("FetchFipDetails"); err != nil {
		return nil, err
	}
	return m.details, nil
}

func (m *mockClient) DiscoverAccounts(ctx context.Context, fipID string, fiTypes []string, identifiers []Identifier) ([]DiscoveredAccount, error) {
	if err := m.enter("DiscoverAccounts"); err != nil {
		return nil, err
	}
	return m.discovered, nil
}

func (m *mockClient) LinkAccounts(ctx context.Context, accounts []DiscoveredAccount, details *FipDetails) (string, error) {
	if err := m.enter("LinkAccounts"); err != nil {
		return "", err
	}
	return "link-ref-1", nil
}

func (m *mockClient) ConfirmAccountLinking(ctx context.Context, otpReference, otp string) ([]LinkedAccount, error) {
	if err := m.enter("ConfirmAccountLinking"); err != nil {
		return nil, err
	}
	return m.linked, nil
}

func (m *mockClient) FetchLinkedAccounts(ctx context.Context) ([]LinkedAccount, error) {
	if err := m.enter("FetchLinkedAccounts"); err != nil {
		return nil, err
	}
	return m.linked, nil
}

func (m *mockClient) GetConsentRequestDetails(ctx context.Context, consentHandleID string) (*ConsentDetail, error) {
	if err := m.enter("GetConsentRequestDetails"); err != nil {
		return nil, err
	}
	return m.consent, nil
}

func (m *mockClient) ApproveConsentRequest(ctx context.Context, detail *ConsentDetail, accounts []LinkedAccount) (string, error) {
	if err := m.enter("ApproveConsentRequest"); err != nil {
		return "", err
	}
	return "consent-99", nil
}

func (m *mockClient) DenyConsentRequest(ctx context.Context, detail *ConsentDetail) error {
	return m.enter("DenyConsentRequest")
}

func waitForCall(t *testing.T, client *mockClient, name string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for client.callCount(name) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", name)
		}
		time.Sleep(time.Millisecond)
	}
}

func journeyTestConfig() Config {
	return defaultConfig()
}

func newTestJourney(t *testing.T) (*Journey, *mockClient) {
	t.Helper()

	client := newMockClient()
	j, err := New().
		WithConfig(journeyTestConfig()).
		WithClient(client).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(j.Close)
	return j, client
}

func TestBuildWithoutRedis(t *testing.T) {
	j, err := New().WithClient(newMockClient()).Build()
	if err != nil {
		t.Fatalf("Build without redis failed: %v", err)
	}
	t.Cleanup(j.Close)

	if got := j.State().Step; got != StepInitialization {
		t.Fatalf("expected INITIALIZATION, got %s", got)
	}
}

func TestBuildThrottleRequiresRedis(t *testing.T) {
	cfg := defaultConfig()
	cfg.OTP.ThrottleEnabled = true

	if _, err := New().WithConfig(cfg).WithClient(newMockClient()).Build(); err == nil {
		t.Fatal("expected build to fail when the throttle is on without redis")
	}
}

func testIdentifiers() []Identifier {
	return []Identifier{
		{Category: "STRONG", Type: "MOBILE", Value: "9876543210"},
	}
}

func advanceToFIPSelection(t *testing.T, j *Journey) {
	t.Helper()
	ctx := context.Background()

	if err := j.Start(ctx, "ch-123"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.LoginWithMobile(ctx, "alice", "9876543210"); err != nil {
		t.Fatalf("LoginWithMobile failed: %v", err)
	}
	if err := j.VerifyLoginOTP(ctx, "123456"); err != nil {
		t.Fatalf("VerifyLoginOTP failed: %v", err)
	}
}

func advanceToAccountLinking(t *testing.T, j *Journey) {
	t.Helper()
	ctx := context.Background()

	advanceToFIPSelection(t, j)
	if _, err := j.FetchAvailableFIPs(ctx); err != nil {
		t.Fatalf("FetchAvailableFIPs failed: %v", err)
	}
	if err := j.SelectFIP(ctx, "fip-hdfc"); err != nil {
		t.Fatalf("SelectFIP failed: %v", err)
	}
	if err := j.DiscoverAccounts(ctx, testIdentifiers()); err != nil {
		t.Fatalf("DiscoverAccounts failed: %v", err)
	}
}

func advanceToConsentApproval(t *testing.T, j *Journey) {
	t.Helper()
	ctx := context.Background()

	advanceToAccountLinking(t, j)
	state := j.State()
	if err := j.SelectAccountsToLink(ctx, state.Discovery.DiscoveredAccounts[:1]); err != nil {
		t.Fatalf("SelectAccountsToLink failed: %v", err)
	}
	if err := j.LinkSelectedAccounts(ctx); err != nil {
		t.Fatalf("LinkSelectedAccounts failed: %v", err)
	}
	if err := j.ConfirmAccountLinking(ctx, "123456"); err != nil {
		t.Fatalf("ConfirmAccountLinking failed: %v", err)
	}
}

func TestStartRequiresConsentHandle(t *testing.T) {
	j, client := newTestJourney(t)

	if err := j.Start(context.Background(), ""); !errors.Is(err, ErrConsentHandleMissing) {
		t.Fatalf("expected ErrConsentHandleMissing, got %v", err)
	}
	if client.callCount("InitializeWith") != 0 {
		t.Fatalf("client must not be called for an empty handle")
	}
}

func TestHappyPathGrantsConsent(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)

	state := j.State()
	if state.Step != StepConsentApproval {
		t.Fatalf("expected CONSENT_APPROVAL, got %s", state.Step)
	}
	if err := j.SelectAccountsForConsent(ctx, state.Linking.LinkedAccounts); err != nil {
		t.Fatalf("SelectAccountsForConsent failed: %v", err)
	}
	if err := j.ApproveConsent(ctx); err != nil {
		t.Fatalf("ApproveConsent failed: %v", err)
	}

	state = j.State()
	if state.Step != StepCompleted {
		t.Fatalf("expected COMPLETED, got %s", state.Step)
	}
	if state.Completion == nil || !state.Completion.Granted {
		t.Fatalf("expected granted completion, got %+v", state.Completion)
	}
	if state.Completion.ConsentID != "consent-99" {
		t.Fatalf("expected consent-99, got %q", state.Completion.ConsentID)
	}
	if state.Err != "" {
		t.Fatalf("expected clean error state, got %q", state.Err)
	}
}

func TestLoginStoresOTPReference(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	if err := j.Start(ctx, "ch-123"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.LoginWithMobile(ctx, "alice", "9876543210"); err != nil {
		t.Fatalf("LoginWithMobile failed: %v", err)
	}

	state := j.State()
	if state.Step != StepOTPVerification {
		t.Fatalf("expected OTP_VERIFICATION, got %s", state.Step)
	}
	if state.LoginOtpRef != "login-ref-1" {
		t.Fatalf("expected login-ref-1, got %q", state.LoginOtpRef)
	}
}

func TestVerifyLoginOTPAuthenticates(t *testing.T) {
	j, _ := newTestJourney(t)

	advanceToFIPSelection(t, j)

	state := j.State()
	if state.Step != StepFIPSelection {
		t.Fatalf("expected FIP_SELECTION, got %s", state.Step)
	}
	if !state.Session.Authenticated {
		t.Fatalf("expected authenticated session")
	}
	if state.Session.UserID != "user-7" {
		t.Fatalf("expected user-7, got %q", state.Session.UserID)
	}
	if state.LoginOtpRef != "" {
		t.Fatalf("login OTP reference must be cleared after verification")
	}
}

func TestLoginRejectsMalformedMobileLocally(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	if err := j.Start(ctx, "ch-123"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.LoginWithMobile(ctx, "alice", "98765"); !errors.Is(err, ErrMobileInvalid) {
		t.Fatalf("expected ErrMobileInvalid, got %v", err)
	}

	state := j.State()
	if state.Step != StepLogin {
		t.Fatalf("local rejection must not move the journey, got %s", state.Step)
	}
	if state.Err != "" {
		t.Fatalf("local rejection must not record an error state, got %q", state.Err)
	}
	if client.callCount("LoginWithUsernameOrMobile") != 0 {
		t.Fatalf("client must not see a malformed mobile number")
	}
}

func TestVerifyRejectsMalformedOTPLocally(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	if err := j.Start(ctx, "ch-123"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.LoginWithMobile(ctx, "alice", "9876543210"); err != nil {
		t.Fatalf("LoginWithMobile failed: %v", err)
	}

	for _, otp := range []string{"", "12345", "1234567", "12345a"} {
		if err := j.VerifyLoginOTP(ctx, otp); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("otp %q: expected ErrOTPInvalid, got %v", otp, err)
		}
	}
	if client.callCount("VerifyLoginOtp") != 0 {
		t.Fatalf("client must not see a malformed OTP")
	}
	if got := j.State().Step; got != StepOTPVerification {
		t.Fatalf("local rejection must not move the journey, got %s", got)
	}
}

func TestDiscoverRejectsMissingIdentifiersLocally(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToFIPSelection(t, j)
	if _, err := j.FetchAvailableFIPs(ctx); err != nil {
		t.Fatalf("FetchAvailableFIPs failed: %v", err)
	}
	if err := j.SelectFIP(ctx, "fip-hdfc"); err != nil {
		t.Fatalf("SelectFIP failed: %v", err)
	}

	if err := j.DiscoverAccounts(ctx, nil); !errors.Is(err, ErrIdentifiersIncomplete) {
		t.Fatalf("expected ErrIdentifiersIncomplete, got %v", err)
	}

	state := j.State()
	if state.Step != StepAccountDiscovery {
		t.Fatalf("local rejection must keep ACCOUNT_DISCOVERY, got %s", state.Step)
	}
	if client.callCount("DiscoverAccounts") != 0 {
		t.Fatalf("client must not be called with incomplete identifiers")
	}
}

func TestApproveFailureRecordsRemoteMessage(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)
	state := j.State()
	if err := j.SelectAccountsForConsent(ctx, state.Linking.LinkedAccounts); err != nil {
		t.Fatalf("SelectAccountsForConsent failed: %v", err)
	}

	client.setFailure("ApproveConsentRequest", &ClientError{Code: "E-NET", Message: "network down"})
	if err := j.ApproveConsent(ctx); err == nil {
		t.Fatalf("expected approval to fail")
	}

	state = j.State()
	if state.Step != StepError {
		t.Fatalf("expected ERROR, got %s", state.Step)
	}
	if state.Err != "network down" {
		t.Fatalf("expected remote message verbatim, got %q", state.Err)
	}
	if state.Completion != nil {
		t.Fatalf("failed approval must not complete the journey")
	}
}

func TestResetReturnsToInitialState(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)
	if err := j.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	state := j.State()
	if state.Step != StepInitialization {
		t.Fatalf("expected INITIALIZATION, got %s", state.Step)
	}
	if state.ConsentHandleID != "" || state.JourneyID != "" {
		t.Fatalf("reset must clear journey identity, got %+v", state)
	}
	if state.Session.Authenticated || len(state.Linking.LinkedAccounts) != 0 {
		t.Fatalf("reset must clear session and accounts")
	}
	if client.callCount("Logout") != 1 || client.callCount("Disconnect") != 1 {
		t.Fatalf("reset must tear down the client session")
	}

	// The journey is reusable after reset.
	if err := j.Start(ctx, "ch-456"); err != nil {
		t.Fatalf("Start after reset failed: %v", err)
	}
}

func TestResetSurvivesTeardownFailure(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToFIPSelection(t, j)
	client.setFailure("Logout", errors.New("gateway timeout"))
	client.setFailure("Disconnect", errors.New("gateway timeout"))

	if err := j.Reset(ctx); err != nil {
		t.Fatalf("Reset must not fail on teardown errors: %v", err)
	}
	if got := j.State().Step; got != StepInitialization {
		t.Fatalf("expected INITIALIZATION, got %s", got)
	}
}

func TestFetchAvailableFIPsIsRepeatable(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToFIPSelection(t, j)

	first, err := j.FetchAvailableFIPs(ctx)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := j.FetchAvailableFIPs(ctx)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("catalog changed between identical fetches")
	}
	if got := j.State().Step; got != StepFIPSelection {
		t.Fatalf("fetch must keep FIP_SELECTION, got %s", got)
	}
}

func TestSelectFIPRejectsUnknownAndDisabled(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToFIPSelection(t, j)
	if _, err := j.FetchAvailableFIPs(ctx); err != nil {
		t.Fatalf("FetchAvailableFIPs failed: %v", err)
	}

	if err := j.SelectFIP(ctx, "fip-nope"); !errors.Is(err, ErrFIPUnknown) {
		t.Fatalf("expected ErrFIPUnknown, got %v", err)
	}
	if err := j.SelectFIP(ctx, "fip-defunct"); !errors.Is(err, ErrFIPDisabled) {
		t.Fatalf("expected ErrFIPDisabled, got %v", err)
	}
	if client.callCount("FetchFipDetails") != 0 {
		t.Fatalf("rejected selections must not fetch details")
	}
	if got := j.State().Step; got != StepFIPSelection {
		t.Fatalf("rejected selections must keep FIP_SELECTION, got %s", got)
	}
}

func TestLinkSelectionMustBeSubsetOfDiscovery(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToAccountLinking(t, j)

	unknown := []DiscoveredAccount{{AccountRefNumber: "acc-999"}}
	if err := j.SelectAccountsToLink(ctx, unknown); !errors.Is(err, ErrSelectionNotDiscovered) {
		t.Fatalf("expected ErrSelectionNotDiscovered, got %v", err)
	}
	if err := j.SelectAccountsToLink(ctx, nil); !errors.Is(err, ErrNoAccountsSelected) {
		t.Fatalf("expected ErrNoAccountsSelected, got %v", err)
	}
}

func TestConsentSelectionMustBeSubsetOfLinked(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)

	unknown := []LinkedAccount{{LinkRefNumber: "lnk-999"}}
	if err := j.SelectAccountsForConsent(ctx, unknown); !errors.Is(err, ErrSelectionNotLinked) {
		t.Fatalf("expected ErrSelectionNotLinked, got %v", err)
	}
}

func TestApproveRequiresSelection(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)
	if err := j.ApproveConsent(ctx); !errors.Is(err, ErrNoAccountsSelected) {
		t.Fatalf("expected ErrNoAccountsSelected, got %v", err)
	}
}

func TestDenyIgnoresSelection(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)
	if err := j.DenyConsent(ctx); err != nil {
		t.Fatalf("DenyConsent failed: %v", err)
	}

	state := j.State()
	if state.Step != StepCompleted {
		t.Fatalf("expected COMPLETED, got %s", state.Step)
	}
	if state.Completion == nil || state.Completion.Granted {
		t.Fatalf("expected denied completion, got %+v", state.Completion)
	}
	if state.Completion.ConsentID != "" {
		t.Fatalf("denial must not carry a consent ID")
	}
}

func TestCompletedJourneyRejectsFurtherOperations(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	advanceToConsentApproval(t, j)
	if err := j.DenyConsent(ctx); err != nil {
		t.Fatalf("DenyConsent failed: %v", err)
	}

	if err := j.FetchConsentDetails(ctx); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted, got %v", err)
	}
	if err := j.Start(ctx, "ch-456"); !errors.Is(err, ErrJourneyCompleted) {
		t.Fatalf("expected ErrJourneyCompleted, got %v", err)
	}
}

func TestOutOfOrderOperationsRejected(t *testing.T) {
	j, _ := newTestJourney(t)
	ctx := context.Background()

	if err := j.LoginWithMobile(ctx, "alice", "9876543210"); !errors.Is(err, ErrStepMismatch) {
		t.Fatalf("expected ErrStepMismatch before Start, got %v", err)
	}

	if err := j.Start(ctx, "ch-123"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.ApproveConsent(ctx); !errors.Is(err, ErrStepMismatch) {
		t.Fatalf("expected ErrStepMismatch at LOGIN, got %v", err)
	}
	if err := j.VerifyLoginOTP(ctx, "123456"); !errors.Is(err, ErrStepMismatch) {
		t.Fatalf("expected ErrStepMismatch without a login OTP, got %v", err)
	}
}

func TestConcurrentOperationRejected(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToFIPSelection(t, j)
	if _, err := j.FetchAvailableFIPs(ctx); err != nil {
		t.Fatalf("FetchAvailableFIPs failed: %v", err)
	}
	if err := j.SelectFIP(ctx, "fip-hdfc"); err != nil {
		t.Fatalf("SelectFIP failed: %v", err)
	}

	gate := client.gateOn("DiscoverAccounts")
	done := make(chan error, 1)
	go func() {
		done <- j.DiscoverAccounts(ctx, testIdentifiers())
	}()

	waitForCall(t, client, "DiscoverAccounts")

	if err := j.DiscoverAccounts(ctx, testIdentifiers()); !errors.Is(err, ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("gated DiscoverAccounts failed: %v", err)
	}
	if got := j.State().Step; got != StepAccountLinking {
		t.Fatalf("expected ACCOUNT_LINKING, got %s", got)
	}
}

func TestResetDiscardsInFlightResult(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	advanceToFIPSelection(t, j)
	if _, err := j.FetchAvailableFIPs(ctx); err != nil {
		t.Fatalf("FetchAvailableFIPs failed: %v", err)
	}
	if err := j.SelectFIP(ctx, "fip-hdfc"); err != nil {
		t.Fatalf("SelectFIP failed: %v", err)
	}

	gate := client.gateOn("DiscoverAccounts")
	done := make(chan error, 1)
	go func() {
		done <- j.DiscoverAccounts(ctx, testIdentifiers())
	}()
	waitForCall(t, client, "DiscoverAccounts")

	if err := j.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("discarded operation must not surface an error: %v", err)
	}

	state := j.State()
	if state.Step != StepInitialization {
		t.Fatalf("stale discovery result leaked into a reset journey: %s", state.Step)
	}
	if len(state.Discovery.DiscoveredAccounts) != 0 {
		t.Fatalf("stale accounts leaked into a reset journey")
	}
}

func TestRemoteLoginFailureMovesToError(t *testing.T) {
	j, client := newTestJourney(t)
	ctx := context.Background()

	if err := j.Start(ctx, "ch-123"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	client.setFailure("LoginWithUsernameOrMobile", &ClientError{Message: "otp delivery failed"})

	if err := j.LoginWithMobile(ctx, "alice", "9876543210"); err == nil {
		t.Fatalf("expected login to fail")
	}

	state := j.State()
	if state.Step != StepError {
		t.Fatalf("expected ERROR, got %s", state.Step)
	}
	if state.Err != "otp delivery failed" {
		t.Fatalf("expected remote message, got %q", state.Err)
	}

	// Error state is recoverable only through Reset.
	if err := j.LoginWithMobile(ctx, "alice", "9876543210"); !errors.Is(err, ErrStepMismatch) {
		t.Fatalf("expected ErrStepMismatch in ERROR, got %v", err)
	}
	if err := j.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
}

func TestStateReturnsDeepCopy(t *testing.T) {
	j, _ := newTestJourney(t)

	advanceToAccountLinking(t, j)

	state := j.State()
	state.Discovery.DiscoveredAccounts[0].AccountRefNumber = "tampered"
	state.Step = StepError

	fresh := j.State()
	if fresh.Discovery.DiscoveredAccounts[0].AccountRefNumber == "tampered" {
		t.Fatalf("State must not alias orchestrator memory")
	}
	if fresh.Step != StepAccountLinking {
		t.Fatalf("expected ACCOUNT_LINKING, got %s", fresh.Step)
	}
}
