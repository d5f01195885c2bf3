package payment

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterValue sums the counter values in a metric family keyed by the first
// label value.
func counterValue(mf *dto.MetricFamily, labelValue string) float64 {
	for _, metric := range mf.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetValue() == labelValue {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// TestMetrics_RegisterAndCount verifies registration and counter increments
// through a private registry.
func TestMetrics_RegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}

	m.IncInitiations("success")
	m.IncInitiations("success")
	m.IncWebhooks("missing_reference")
	m.IncStatusQueries("pending_default")
	m.IncCardCharges("failure")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	tests := []struct {
		metric string
		label  string
		want   float64
	}{
		{MetricInitiationsTotal, "success", 2},
		{MetricWebhooksTotal, "missing_reference", 1},
		{MetricStatusQueriesTotal, "pending_default", 1},
		{MetricCardChargesTotal, "failure", 1},
	}
	for _, tt := range tests {
		mf, ok := byName[tt.metric]
		if !ok {
			t.Errorf("metric %s not gathered", tt.metric)
			continue
		}
		if got := counterValue(mf, tt.label); got != tt.want {
			t.Errorf("metric %s{%s} = %v, want %v", tt.metric, tt.label, got, tt.want)
		}
	}
}

// TestMetrics_RegisterTwiceFails verifies duplicate registration is rejected.
func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := m.Register(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
