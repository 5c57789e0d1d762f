package aajourney

import (
	"context"
	"strconv"
	"time"
)

// FetchConsentDetails loads the pending consent request for the journey's
// consent handle and advances the journey to CONSENT_APPROVAL. The normal
// flow fetches the consent as part of ConfirmAccountLinking; this operation
// exists for journeys restored at CONSENT_REVIEW and for refreshing the
// consent while it awaits a decision.
func (j *Journey) FetchConsentDetails(ctx context.Context) error {
	epoch, err := j.begin(StepConsentReview, StepConsentApproval)
	if err != nil {
		return err
	}

	handle := j.State().ConsentHandleID

	start := time.Now()
	details, err := j.client.GetConsentRequestDetails(ctx, handle)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventConsentFetched, err)
		return err
	}
	if details == nil {
		j.fail(ctx, epoch, auditEventConsentFetched, ErrConsentDetailsMissing)
		return ErrConsentDetailsMissing
	}

	if !j.apply(ctx, epoch, actionConsentLoaded{details: details}) {
		return nil
	}

	j.metricInc(MetricConsentFetched)
	j.emitAudit(ctx, auditEventConsentFetched, true, j.State(), nil, nil)
	return nil
}

// SelectAccountsForConsent records which linked accounts the consent will
// cover. The selection must be a non-empty subset of the linked accounts,
// matched by link reference number. No network call is made.
func (j *Journey) SelectAccountsForConsent(ctx context.Context, accounts []LinkedAccount) error {
	epoch, err := j.begin(StepConsentApproval)
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		j.abort(epoch)
		return ErrNoAccountsSelected
	}

	snapshot := j.State()
	linked := make(map[string]struct{}, len(snapshot.Linking.LinkedAccounts))
	for _, a := range snapshot.Linking.LinkedAccounts {
		linked[a.LinkRefNumber] = struct{}{}
	}
	for _, a := range accounts {
		if _, ok := linked[a.LinkRefNumber]; !ok {
			j.abort(epoch)
			return ErrSelectionNotLinked
		}
	}

	j.apply(ctx, epoch,
		actionConsentSelectionSet{accounts: accounts},
		actionSetLoading{on: false},
	)
	return nil
}

// ApproveConsent grants the consent request over the selected accounts and
// completes the journey. The consent detail is submitted exactly as fetched;
// at least one account must be selected.
func (j *Journey) ApproveConsent(ctx context.Context) error {
	epoch, err := j.begin(StepConsentApproval)
	if err != nil {
		return err
	}

	snapshot := j.State()
	if snapshot.Consent.Details == nil {
		j.abort(epoch)
		return ErrConsentDetailsMissing
	}
	if len(snapshot.Consent.SelectedAccounts) == 0 {
		j.abort(epoch)
		return ErrNoAccountsSelected
	}

	start := time.Now()
	consentID, err := j.client.ApproveConsentRequest(ctx, snapshot.Consent.Details, snapshot.Consent.SelectedAccounts)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventConsentApproved, err)
		return err
	}

	if !j.apply(ctx, epoch, actionCompleted{granted: true, consentID: consentID}) {
		return nil
	}

	j.metricInc(MetricConsentApproved)
	j.emitAudit(ctx, auditEventConsentApproved, true, j.State(), nil, func() map[string]string {
		return map[string]string{
			"consent_id":    consentID,
			"account_count": strconv.Itoa(len(snapshot.Consent.SelectedAccounts)),
		}
	})
	return nil
}

// DenyConsent rejects the consent request and completes the journey. Any
// account selection made beforehand is irrelevant: denial covers the whole
// request.
func (j *Journey) DenyConsent(ctx context.Context) error {
	epoch, err := j.begin(StepConsentApproval)
	if err != nil {
		return err
	}

	snapshot := j.State()
	if snapshot.Consent.Details == nil {
		j.abort(epoch)
		return ErrConsentDetailsMissing
	}

	start := time.Now()
	err = j.client.DenyConsentRequest(ctx, snapshot.Consent.Details)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventConsentDenied, err)
		return err
	}

	if !j.apply(ctx, epoch, actionCompleted{granted: false}) {
		return nil
	}

	j.metricInc(MetricConsentDenied)
	j.emitAudit(ctx, auditEventConsentDenied, true, j.State(), nil, nil)
	return nil
}
