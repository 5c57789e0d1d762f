package aajourney

import (
	"context"
	"time"
)

const (
	auditEventJourneyStarted     = "journey_started"
	auditEventLoginOTPSent       = "login_otp_sent"
	auditEventLoginVerified      = "login_verified"
	auditEventLoginFailure       = "login_failure"
	auditEventOTPRateLimited     = "otp_rate_limited"
	auditEventCatalogFetched     = "catalog_fetched"
	auditEventFIPSelected        = "fip_selected"
	auditEventAccountsDiscovered = "accounts_discovered"
	auditEventLinkingStarted     = "linking_started"
	auditEventLinkingConfirmed   = "linking_confirmed"
	auditEventConsentFetched     = "consent_fetched"
	auditEventConsentApproved    = "consent_approved"
	auditEventConsentDenied      = "consent_denied"
	auditEventJourneyReset       = "journey_reset"
	auditEventJourneyResumed     = "journey_resumed"
)

func (j *Journey) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	state JourneyState,
	err error,
	metadataBuilder func() map[string]string,
) {
	if j == nil || j.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if version := appVersionFromContext(ctx); version != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["app_version"] = version
	}
	if ref := j.currentOpRef(); ref != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["op_ref"] = ref
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		JourneyID: state.JourneyID,
		Step:      state.Step.String(),
		DeviceID:  deviceIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if state.Catalog.SelectedFIP != nil {
		event.FIPID = state.Catalog.SelectedFIP.ID
	}
	if err != nil {
		event.Error = err.Error()
	}

	j.audit.Emit(ctx, event)
}
