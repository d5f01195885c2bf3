package payment

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricInitiationsTotal   = "payment_initiations_total"
	MetricWebhooksTotal      = "payment_webhooks_total"
	MetricStatusQueriesTotal = "payment_status_queries_total"
	MetricCardChargesTotal   = "payment_card_charges_total"
)

// Metrics contains Prometheus metrics for the payment gateway.
// All operations are thread-safe.
type Metrics struct {
	initiationsTotal   *prometheus.CounterVec
	webhooksTotal      *prometheus.CounterVec
	statusQueriesTotal *prometheus.CounterVec
	cardChargesTotal   *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register them
// with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		initiationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricInitiationsTotal,
				Help: "Total number of mobile-money initiation attempts by outcome",
			},
			[]string{"outcome"},
		),
		webhooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricWebhooksTotal,
				Help: "Total number of provider webhook deliveries by outcome",
			},
			[]string{"outcome"},
		),
		statusQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricStatusQueriesTotal,
				Help: "Total number of payment status queries by result",
			},
			[]string{"result"},
		),
		cardChargesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCardChargesTotal,
				Help: "Total number of card charge attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.initiationsTotal,
		m.webhooksTotal,
		m.statusQueriesTotal,
		m.cardChargesTotal,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncInitiations increments the initiation counter.
// outcome: "success", "bad_request", "validation_error", "provider_error",
// or "store_error"
func (m *Metrics) IncInitiations(outcome string) {
	m.initiationsTotal.WithLabelValues(outcome).Inc()
}

// IncWebhooks increments the webhook counter.
// outcome: "applied", "bad_request", "missing_reference", or "store_error"
func (m *Metrics) IncWebhooks(outcome string) {
	m.webhooksTotal.WithLabelValues(outcome).Inc()
}

// IncStatusQueries increments the status query counter.
// result: "found", "pending_default", "bad_request", or "store_error"
func (m *Metrics) IncStatusQueries(result string) {
	m.statusQueriesTotal.WithLabelValues(result).Inc()
}

// IncCardCharges increments the card charge counter.
// outcome: "success", "failure", "bad_request", or "validation_error"
func (m *Metrics) IncCardCharges(outcome string) {
	m.cardChargesTotal.WithLabelValues(outcome).Inc()
}
