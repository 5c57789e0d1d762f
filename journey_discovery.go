package aajourney

import (
	"context"
	"strconv"
	"time"
)

// FetchAvailableFIPs loads the FIP catalog. The journey stays at
// FIP_SELECTION, so the catalog can be refreshed any number of times before a
// FIP is chosen; each successful fetch replaces the previous catalog
// wholesale.
func (j *Journey) FetchAvailableFIPs(ctx context.Context) ([]FIPInfo, error) {
	epoch, err := j.begin(StepFIPSelection)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fips, err := j.client.ListFIPs(ctx)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventCatalogFetched, err)
		return nil, err
	}

	if !j.apply(ctx, epoch, actionCatalogReplaced{fips: fips}) {
		return nil, nil
	}

	j.metricInc(MetricCatalogFetched)
	j.emitAudit(ctx, auditEventCatalogFetched, true, j.State(), nil, func() map[string]string {
		return map[string]string{"fip_count": strconv.Itoa(len(fips))}
	})
	return cloneFIPs(fips), nil
}

// SelectFIP chooses one FIP from the fetched catalog, fetches its discovery
// requirements, and advances the journey to ACCOUNT_DISCOVERY. The FIP must
// be present in the catalog and enabled; both checks run before the client is
// called.
func (j *Journey) SelectFIP(ctx context.Context, fipID string) error {
	epoch, err := j.begin(StepFIPSelection)
	if err != nil {
		return err
	}

	snapshot := j.State()
	var chosen *FIPInfo
	for i := range snapshot.Catalog.AvailableFIPs {
		if snapshot.Catalog.AvailableFIPs[i].ID == fipID {
			chosen = &snapshot.Catalog.AvailableFIPs[i]
			break
		}
	}
	if chosen == nil {
		j.abort(epoch)
		return ErrFIPUnknown
	}
	if !chosen.Enabled {
		j.abort(epoch)
		return ErrFIPDisabled
	}

	start := time.Now()
	details, err := j.client.FetchFipDetails(ctx, fipID)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventFIPSelected, err)
		return err
	}
	if details == nil {
		j.fail(ctx, epoch, auditEventFIPSelected, ErrFIPDetailsMissing)
		return ErrFIPDetailsMissing
	}

	if !j.apply(ctx, epoch, actionFIPSelected{fip: *chosen, details: details}) {
		return nil
	}

	j.metricInc(MetricFIPSelected)
	j.emitAudit(ctx, auditEventFIPSelected, true, j.State(), nil, nil)
	return nil
}

// DiscoverAccounts runs account discovery at the selected FIP using the
// supplied identifiers and advances the journey to ACCOUNT_LINKING. The
// identifiers are validated against the FIP's published requirements first;
// an incomplete or malformed set is rejected locally and the journey stays at
// ACCOUNT_DISCOVERY.
func (j *Journey) DiscoverAccounts(ctx context.Context, identifiers []Identifier) error {
	epoch, err := j.begin(StepAccountDiscovery)
	if err != nil {
		return err
	}

	snapshot := j.State()
	details := snapshot.Catalog.FipDetails
	if details == nil {
		j.abort(epoch)
		return ErrFIPDetailsMissing
	}

	if err := validateIdentifiers(requiredIdentifiers(details), identifiers); err != nil {
		j.abort(epoch)
		return err
	}

	start := time.Now()
	accounts, err := j.client.DiscoverAccounts(ctx, details.FipID, fiTypesOf(details), identifiers)
	j.observeLatency(start)
	if err != nil {
		j.fail(ctx, epoch, auditEventAccountsDiscovered, err)
		return err
	}

	if !j.apply(ctx, epoch, actionAccountsDiscovered{accounts: accounts}) {
		return nil
	}

	j.metricInc(MetricAccountsDiscovered)
	j.emitAudit(ctx, auditEventAccountsDiscovered, true, j.State(), nil, func() map[string]string {
		return map[string]string{"account_count": strconv.Itoa(len(accounts))}
	})
	return nil
}
