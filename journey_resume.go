package aajourney

import (
	"context"
	"fmt"
	"time"

	"github.com/zmrishh/aajourney/snapshot"
)

// ResumeToken mints a signed token that a later process can exchange for
// this journey's persisted state. The token binds the journey ID and the
// current epoch; it is only issued once the journey has an identity.
func (j *Journey) ResumeToken() (string, error) {
	if j.tokens == nil {
		return "", ErrResumeDisabled
	}

	j.mu.Lock()
	journeyID := j.state.JourneyID
	epoch := j.epoch
	j.mu.Unlock()

	if journeyID == "" {
		return "", ErrJourneyNotReady
	}
	return j.tokens.Create(journeyID, epoch)
}

// Resume restores a journey from a resume token. It verifies the token,
// loads the persisted snapshot, re-establishes the AA client session, and
// installs the restored state. Resume is only valid on a journey that has
// not left INITIALIZATION.
func (j *Journey) Resume(ctx context.Context, tokenStr string) error {
	if j.tokens == nil || j.snapshots == nil {
		return ErrResumeDisabled
	}

	epoch, err := j.begin(StepInitialization)
	if err != nil {
		return err
	}

	claims, err := j.tokens.Parse(tokenStr)
	if err != nil {
		j.abort(epoch)
		return fmt.Errorf("%w: %v", ErrResumeUnavailable, err)
	}

	rec, err := j.snapshots.Load(ctx, claims.JourneyID)
	if err != nil {
		j.abort(epoch)
		return fmt.Errorf("%w: %v", ErrResumeUnavailable, err)
	}
	if rec.Epoch != claims.Epoch {
		j.abort(epoch)
		return fmt.Errorf("%w: token epoch does not match snapshot", ErrResumeUnavailable)
	}

	restored := fromRecord(rec)

	start := time.Now()
	if restored.Session.Initialized {
		if err := j.client.InitializeWith(ctx, j.config.Client); err != nil {
			j.observeLatency(start)
			j.fail(ctx, epoch, auditEventJourneyResumed, err)
			return err
		}
	}
	if restored.Session.Connected {
		if err := j.client.Connect(ctx); err != nil {
			j.observeLatency(start)
			j.fail(ctx, epoch, auditEventJourneyResumed, err)
			return err
		}
	}
	j.observeLatency(start)

	if !j.apply(ctx, epoch, actionRestored{state: restored}) {
		return nil
	}

	j.metricInc(MetricJourneyResumed)
	j.emitAudit(ctx, auditEventJourneyResumed, true, j.State(), nil, nil)
	return nil
}

func toRecord(s JourneyState) *snapshot.Record {
	rec := &snapshot.Record{
		JourneyID:       s.JourneyID,
		Step:            uint8(s.Step),
		ConsentHandleID: s.ConsentHandleID,
		Initialized:     s.Session.Initialized,
		Connected:       s.Session.Connected,
		Authenticated:   s.Session.Authenticated,
		UserID:          s.Session.UserID,
		LoginOtpRef:     s.LoginOtpRef,
		LinkingOtpRef:   s.Linking.LinkingOtpRef,
		AvailableFIPs:   fipsToRecord(s.Catalog.AvailableFIPs),
		FipDetails:      detailsToRecord(s.Catalog.FipDetails),
		Discovered:      accountsToRecord(s.Discovery.DiscoveredAccounts),
		ToLink:          accountsToRecord(s.Discovery.AccountsToLink),
		Linked:          linkedToRecord(s.Linking.LinkedAccounts),
		Consent:         consentToRecord(s.Consent.Details),
	}
	if s.Catalog.SelectedFIP != nil {
		fip := fipToRecord(*s.Catalog.SelectedFIP)
		rec.SelectedFIP = &fip
	}
	for _, a := range s.Consent.SelectedAccounts {
		rec.ConsentLinkRefs = append(rec.ConsentLinkRefs, a.LinkRefNumber)
	}
	return rec
}

func fromRecord(rec *snapshot.Record) JourneyState {
	s := JourneyState{
		JourneyID:       rec.JourneyID,
		Step:            Step(rec.Step),
		ConsentHandleID: rec.ConsentHandleID,
		LoginOtpRef:     rec.LoginOtpRef,
	}
	s.Session = SessionState{
		Initialized:   rec.Initialized,
		Connected:     rec.Connected,
		Authenticated: rec.Authenticated,
		UserID:        rec.UserID,
	}
	s.Catalog.AvailableFIPs = fipsFromRecord(rec.AvailableFIPs)
	if rec.SelectedFIP != nil {
		fip := fipFromRecord(*rec.SelectedFIP)
		s.Catalog.SelectedFIP = &fip
	}
	s.Catalog.FipDetails = detailsFromRecord(rec.FipDetails)
	s.Discovery.DiscoveredAccounts = accountsFromRecord(rec.Discovered)
	s.Discovery.AccountsToLink = accountsFromRecord(rec.ToLink)
	s.Linking.LinkedAccounts = linkedFromRecord(rec.Linked)
	s.Linking.LinkingOtpRef = rec.LinkingOtpRef
	s.Consent.Details = consentFromRecord(rec.Consent)

	if len(rec.ConsentLinkRefs) > 0 {
		selected := make(map[string]struct{}, len(rec.ConsentLinkRefs))
		for _, ref := range rec.ConsentLinkRefs {
			selected[ref] = struct{}{}
		}
		for _, a := range s.Linking.LinkedAccounts {
			if _, ok := selected[a.LinkRefNumber]; ok {
				s.Consent.SelectedAccounts = append(s.Consent.SelectedAccounts, a)
			}
		}
	}
	return s
}

func fipToRecord(f FIPInfo) snapshot.FIP {
	return snapshot.FIP{
		ID:      f.ID,
		Name:    f.Name,
		Enabled: f.Enabled,
		FITypes: cloneStrings(f.FITypes),
	}
}

func fipFromRecord(f snapshot.FIP) FIPInfo {
	return FIPInfo{
		ID:      f.ID,
		Name:    f.Name,
		Enabled: f.Enabled,
		FITypes: cloneStrings(f.FITypes),
	}
}

func fipsToRecord(in []FIPInfo) []snapshot.FIP {
	if in == nil {
		return nil
	}
	out := make([]snapshot.FIP, len(in))
	for i, f := range in {
		out[i] = fipToRecord(f)
	}
	return out
}

func fipsFromRecord(in []snapshot.FIP) []FIPInfo {
	if in == nil {
		return nil
	}
	out := make([]FIPInfo, len(in))
	for i, f := range in {
		out[i] = fipFromRecord(f)
	}
	return out
}

func detailsToRecord(in *FipDetails) *snapshot.Details {
	if in == nil {
		return nil
	}
	out := &snapshot.Details{FipID: in.FipID, FipName: in.FipName}
	for _, ti := range in.TypeIdentifiers {
		rec := snapshot.FITypeIdentifiers{FIType: ti.FIType}
		for _, id := range ti.Identifiers {
			rec.Identifiers = append(rec.Identifiers, snapshot.RequiredIdentifier{
				Category: id.Category,
				Type:     id.Type,
			})
		}
		out.TypeIdentifiers = append(out.TypeIdentifiers, rec)
	}
	return out
}

func detailsFromRecord(in *snapshot.Details) *FipDetails {
	if in == nil {
		return nil
	}
	out := &FipDetails{FipID: in.FipID, FipName: in.FipName}
	for _, ti := range in.TypeIdentifiers {
		group := FITypeIdentifier{FIType: ti.FIType}
		for _, id := range ti.Identifiers {
			group.Identifiers = append(group.Identifiers, TypeIdentifier{
				Category: id.Category,
				Type:     id.Type,
			})
		}
		out.TypeIdentifiers = append(out.TypeIdentifiers, group)
	}
	return out
}

func accountsToRecord(in []DiscoveredAccount) []snapshot.Account {
	if in == nil {
		return nil
	}
	out := make([]snapshot.Account, len(in))
	for i, a := range in {
		out[i] = snapshot.Account{
			AccountRefNumber: a.AccountRefNumber,
			MaskedAccNumber:  a.MaskedAccNumber,
			AccType:          a.AccType,
			FIType:           a.FIType,
		}
	}
	return out
}

func accountsFromRecord(in []snapshot.Account) []DiscoveredAccount {
	if in == nil {
		return nil
	}
	out := make([]DiscoveredAccount, len(in))
	for i, a := range in {
		out[i] = DiscoveredAccount{
			AccountRefNumber: a.AccountRefNumber,
			MaskedAccNumber:  a.MaskedAccNumber,
			AccType:          a.AccType,
			FIType:           a.FIType,
		}
	}
	return out
}

func linkedToRecord(in []LinkedAccount) []snapshot.LinkedAccount {
	if in == nil {
		return nil
	}
	out := make([]snapshot.LinkedAccount, len(in))
	for i, a := range in {
		out[i] = snapshot.LinkedAccount{
			LinkRefNumber:    a.LinkRefNumber,
			AccountRefNumber: a.AccountRefNumber,
			MaskedAccNumber:  a.MaskedAccNumber,
			FipID:            a.FipID,
			FipName:          a.FipName,
			AccType:          a.AccType,
			FIType:           a.FIType,
		}
	}
	return out
}

func linkedFromRecord(in []snapshot.LinkedAccount) []LinkedAccount {
	if in == nil {
		return nil
	}
	out := make([]LinkedAccount, len(in))
	for i, a := range in {
		out[i] = LinkedAccount{
			LinkRefNumber:    a.LinkRefNumber,
			AccountRefNumber: a.AccountRefNumber,
			MaskedAccNumber:  a.MaskedAccNumber,
			FipID:            a.FipID,
			FipName:          a.FipName,
			AccType:          a.AccType,
			FIType:           a.FIType,
		}
	}
	return out
}

func consentToRecord(in *ConsentDetail) *snapshot.Consent {
	if in == nil {
		return nil
	}
	return &snapshot.Consent{
		Handle:              in.ConsentHandle,
		Purpose:             in.Purpose,
		PurposeCode:         in.PurposeCode,
		DisplayDescriptions: cloneStrings(in.DisplayDescriptions),
		DataFrom:            unixOrZero(in.DataRange.From),
		DataTo:              unixOrZero(in.DataRange.To),
		ValidFrom:           unixOrZero(in.Validity.From),
		ValidTo:             unixOrZero(in.Validity.To),
		DataLifeUnit:        in.DataLife.Unit,
		DataLifeValue:       int32(in.DataLife.Value),
		FrequencyUnit:       in.Frequency.Unit,
		FrequencyValue:      int32(in.Frequency.Value),
		FITypes:             cloneStrings(in.FITypes),
	}
}

func consentFromRecord(in *snapshot.Consent) *ConsentDetail {
	if in == nil {
		return nil
	}
	return &ConsentDetail{
		ConsentHandle:       in.Handle,
		Purpose:             in.Purpose,
		PurposeCode:         in.PurposeCode,
		DisplayDescriptions: cloneStrings(in.DisplayDescriptions),
		DataRange: ConsentDateRange{
			From: timeOrZero(in.DataFrom),
			To:   timeOrZero(in.DataTo),
		},
		Validity: ConsentDateRange{
			From: timeOrZero(in.ValidFrom),
			To:   timeOrZero(in.ValidTo),
		},
		DataLife:  ConsentLife{Unit: in.DataLifeUnit, Value: int(in.DataLifeValue)},
		Frequency: ConsentFrequency{Unit: in.FrequencyUnit, Value: int(in.FrequencyValue)},
		FITypes:   cloneStrings(in.FITypes),
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
