package aajourney

import (
	"context"
	"strconv"
	"time"
)

// SelectAccountsToLink records which discovered accounts the user wants to
// link. The selection must be a non-empty subset of the discovery results,
// matched by account reference number. No network call is made; the journey
// stays at ACCOUNT_LINKING until LinkSelectedAccounts is called.
func (j *Journey) SelectAccountsToLink(ctx context.Context, accounts []DiscoveredAccount) error {
	epoch, err := j.begin(StepAccountLinking)
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		j.abort(epoch)
		return ErrNoAccountsSelected
	}

	snapshot := j.State()
	discovered := make(map[string]struct{}, len(snapshot.Discovery.DiscoveredAccounts))
	for _, a := range snapshot.Discovery.DiscoveredAccounts {
		discovered[a.AccountRefNumber] = struct{}{}
	}
	for _, a := range accounts {
		if _, ok := discovered[a.AccountRefNumber]; !ok {
			j.abort(epoch)
			return ErrSelectionNotDiscovered
		}
	}

	j.apply(ctx, epoch,
		actionLinkSelectionSet{accounts: accounts},
		actionSetLoading{on: false},
	)
	return nil
}

// LinkSelectedAccounts submits the chosen accounts for linking. The FIP
// responds with a linking OTP reference and the journey advances to
// LINKING_OTP.
func (j *Journey) LinkSelectedAccounts(ctx context.Context) error {
	epoch, err := j.begin(StepAccountLinking)
	if err != nil {
		return err
	}

	snapshot := j.State()
	if len(snapshot.Discovery.AccountsToLink) == 0 {
		j.abort(epoch)
		return ErrNoAccountsSelected
	}
	if snapshot.Catalog.FipDetails == nil {
		j.abort(epoch)
		return ErrFIPDetailsMissing
	}

	start := time.Now()
	otpReference, err := j.client.LinkAccounts(ctx, snapshot.Discovery.AccountsToLink, snapshot.Catalog.FipDetails)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventLinkingStarted, err)
		return err
	}

	if !j.apply(ctx, epoch, actionLinkingStarted{otpReference: otpReference}) {
		return nil
	}

	j.metricInc(MetricAccountsLinked)
	j.emitAudit(ctx, auditEventLinkingStarted, true, j.State(), nil, func() map[string]string {
		return map[string]string{"account_count": strconv.Itoa(len(snapshot.Discovery.AccountsToLink))}
	})
	return nil
}

// ConfirmAccountLinking verifies the linking OTP and completes the linking
// leg as one logical step: it confirms the link, refreshes the full linked
// account list, and fetches the pending consent request, landing the journey
// at CONSENT_APPROVAL. A failure in any of the three calls moves the journey
// to ERROR; none of the partial results are kept ahead of the failure point.
func (j *Journey) ConfirmAccountLinking(ctx context.Context, otp string) error {
	epoch, err := j.begin(StepLinkingOTP)
	if err != nil {
		return err
	}

	if !validOTP(otp, j.config.OTP.Digits) {
		j.abort(epoch)
		j.metricInc(MetricOTPRejectedLocally)
		return ErrOTPInvalid
	}

	snapshot := j.State()
	if snapshot.Linking.LinkingOtpRef == "" {
		j.abort(epoch)
		return ErrOTPReferenceMissing
	}

	if err := j.checkOTPBudget(ctx, otpKindLinking, snapshot.ConsentHandleID); err != nil {
		j.abort(epoch)
		j.emitAudit(ctx, auditEventOTPRateLimited, false, snapshot, err, func() map[string]string {
			return map[string]string{"kind": otpKindLinking}
		})
		return err
	}

	start := time.Now()
	linked, err := j.client.ConfirmAccountLinking(ctx, snapshot.Linking.LinkingOtpRef, otp)
	if err != nil {
		j.observeLatency(start)
		j.fail(ctx, epoch, auditEventLinkingConfirmed, err)
		return err
	}

	j.resetOTPBudget(ctx, otpKindLinking, snapshot.ConsentHandleID)

	// The confirm response only carries the accounts linked in this call;
	// the refreshed list is authoritative and includes prior links.
	all, err := j.client.FetchLinkedAccounts(ctx)
	if err != nil {
		j.observeLatency(start)
		j.fail(ctx, epoch, auditEventLinkingConfirmed, err)
		return err
	}
	if len(all) == 0 {
		all = linked
	}

	details, err := j.client.GetConsentRequestDetails(ctx, snapshot.ConsentHandleID)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventConsentFetched, err)
		return err
	}
	if details == nil {
		j.fail(ctx, epoch, auditEventConsentFetched, ErrConsentDetailsMissing)
		return ErrConsentDetailsMissing
	}

	if !j.apply(ctx, epoch,
		actionLinkingConfirmed{linked: all},
		actionConsentLoaded{details: details},
	) {
		return nil
	}

	j.metricInc(MetricLinkingConfirmed)
	j.metricInc(MetricConsentFetched)
	j.emitAudit(ctx, auditEventLinkingConfirmed, true, j.State(), nil, func() map[string]string {
		return map[string]string{"linked_count": strconv.Itoa(len(all))}
	})
	return nil
}
