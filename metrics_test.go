package aajourney

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricJourneyStarted)

	if got := m.Value(MetricJourneyStarted); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricConsentApproved)
	m.Inc(MetricConsentApproved)
	m.Inc(MetricConsentApproved)

	if got := m.Value(MetricConsentApproved); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricAccountsDiscovered)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricAccountsDiscovered); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		60 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		2 * time.Second,
		4 * time.Second,
		10 * time.Second,
	}

	for _, d := range observations {
		m.Observe(MetricOperationLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricOperationLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, count := range buckets {
		if count != 1 {
			t.Fatalf("bucket %d: expected 1 observation, got %d", i, count)
		}
	}
}

func TestMetricsObserveIgnoresNonLatencyIDs(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	m.Observe(MetricJourneyStarted, 100*time.Millisecond)

	snap := m.Snapshot()
	if _, ok := snap.Histograms[MetricJourneyStarted]; ok {
		t.Fatalf("only the operation latency histogram is tracked")
	}
}

func TestJourneyRecordsOperationMetrics(t *testing.T) {
	client := newMockClient()
	j, err := New().
		WithConfig(journeyTestConfig()).
		WithClient(client).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(j.Close)
	ctx := context.Background()

	advanceToConsentApproval(t, j)
	state := j.State()
	if err := j.SelectAccountsForConsent(ctx, state.Linking.LinkedAccounts); err != nil {
		t.Fatalf("SelectAccountsForConsent failed: %v", err)
	}
	if err := j.ApproveConsent(ctx); err != nil {
		t.Fatalf("ApproveConsent failed: %v", err)
	}

	snap := j.MetricsSnapshot()
	for _, id := range []MetricID{
		MetricJourneyStarted,
		MetricLoginOTPSent,
		MetricLoginVerified,
		MetricCatalogFetched,
		MetricFIPSelected,
		MetricAccountsDiscovered,
		MetricAccountsLinked,
		MetricLinkingConfirmed,
		MetricConsentFetched,
		MetricConsentApproved,
	} {
		if snap.Counters[id] == 0 {
			t.Fatalf("metric %d not recorded on the happy path", id)
		}
	}
	if snap.Counters[MetricJourneyFailed] != 0 {
		t.Fatalf("happy path must not record failures")
	}

	total := uint64(0)
	for _, count := range snap.Histograms[MetricOperationLatency] {
		total += count
	}
	if total == 0 {
		t.Fatalf("expected latency observations on the happy path")
	}
}
