package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.EntriesPosted == nil || m.HTTPRequests == nil || m.DBRetries == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestLedgerMetricsCollect(t *testing.T) {
	registry := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()
	m.EntriesPosted.WithLabelValues("RECHARGE_REQUEST", "CREDIT").Inc()
	m.AdmissionRejections.Inc()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{"walletledger_entries_posted_total", "walletledger_admission_rejections_total"} {
		if !found[name] {
			t.Errorf("expected metric %s to be gathered", name)
		}
	}
}
