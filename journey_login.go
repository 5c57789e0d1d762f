package aajourney

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	otpKindLogin   = "login"
	otpKindLinking = "linking"
)

// Start begins a journey for the given consent handle. It initializes and
// connects the AA client, assigns a fresh journey ID, and moves the journey
// to LOGIN. Start is only valid on a journey that has not left
// INITIALIZATION.
func (j *Journey) Start(ctx context.Context, consentHandleID string) error {
	if consentHandleID == "" {
		return ErrConsentHandleMissing
	}

	epoch, err := j.begin(StepInitialization)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := j.client.InitializeWith(ctx, j.config.Client); err != nil {
		j.observeLatency(start)
		j.fail(ctx, epoch, auditEventJourneyStarted, err)
		return err
	}
	if err := j.client.Connect(ctx); err != nil {
		j.observeLatency(start)
		j.fail(ctx, epoch, auditEventJourneyStarted, err)
		return err
	}
	j.observeLatency(start)

	journeyID := uuid.NewString()
	if !j.apply(ctx, epoch, actionInitialized{journeyID: journeyID, consentHandleID: consentHandleID}) {
		return nil
	}

	j.metricInc(MetricJourneyStarted)
	j.emitAudit(ctx, auditEventJourneyStarted, true, j.State(), nil, nil)
	return nil
}

// LoginWithMobile requests a login OTP for the user's mobile number and
// advances the journey to OTP_VERIFICATION. The mobile number must be exactly
// ten digits; malformed input is rejected locally and the client is never
// called.
func (j *Journey) LoginWithMobile(ctx context.Context, username, mobile string) error {
	epoch, err := j.begin(StepLogin)
	if err != nil {
		return err
	}

	if !validMobile(mobile) {
		j.abort(epoch)
		return ErrMobileInvalid
	}

	handle := j.State().ConsentHandleID

	start := time.Now()
	otpReference, err := j.client.LoginWithUsernameOrMobile(ctx, username, mobile, handle)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventLoginFailure, err)
		return err
	}

	if !j.apply(ctx, epoch, actionLoginStarted{otpReference: otpReference}) {
		return nil
	}

	j.metricInc(MetricLoginOTPSent)
	j.emitAudit(ctx, auditEventLoginOTPSent, true, j.State(), nil, nil)
	return nil
}

// VerifyLoginOTP verifies the login OTP against the reference issued by
// LoginWithMobile and advances the journey to FIP_SELECTION. Format checks
// and the attempt budget run before the client is called; a rejected OTP
// never reaches the network.
func (j *Journey) VerifyLoginOTP(ctx context.Context, otp string) error {
	epoch, err := j.begin(StepOTPVerification)
	if err != nil {
		return err
	}

	if !validOTP(otp, j.config.OTP.Digits) {
		j.abort(epoch)
		j.metricInc(MetricOTPRejectedLocally)
		return ErrOTPInvalid
	}

	snapshot := j.State()
	if snapshot.LoginOtpRef == "" {
		j.abort(epoch)
		return ErrOTPReferenceMissing
	}

	if err := j.checkOTPBudget(ctx, otpKindLogin, snapshot.ConsentHandleID); err != nil {
		j.abort(epoch)
		j.emitAudit(ctx, auditEventOTPRateLimited, false, snapshot, err, func() map[string]string {
			return map[string]string{"kind": otpKindLogin}
		})
		return err
	}

	start := time.Now()
	userID, err := j.client.VerifyLoginOtp(ctx, otp, snapshot.LoginOtpRef)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventLoginFailure, err)
		return err
	}

	j.resetOTPBudget(ctx, otpKindLogin, snapshot.ConsentHandleID)

	if !j.apply(ctx, epoch, actionAuthenticated{userID: userID}) {
		return nil
	}

	j.metricInc(MetricLoginVerified)
	j.emitAudit(ctx, auditEventLoginVerified, true, j.State(), nil, func() map[string]string {
		return map[string]string{"user_id": userID}
	})
	return nil
}
