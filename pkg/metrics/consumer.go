package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConsumerMetrics records customer-event consumer outcomes.
type ConsumerMetrics struct {
	outcomes *prometheus.CounterVec
}

const (
	ConsumerOutcomeApplied   = "applied"
	ConsumerOutcomeDuplicate = "duplicate"
	ConsumerOutcomeMalformed = "malformed"
	ConsumerOutcomeFailed    = "failed"
)

// NewConsumerMetrics registers the consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "customer_event_outcomes",
		Help: "Customer lifecycle event processing outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(outcomes)
	return &ConsumerMetrics{outcomes: outcomes}
}

// IncOutcome increments the counter for the given processing outcome.
func (m *ConsumerMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}
