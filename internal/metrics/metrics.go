package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchOutcomes counts assign requests by outcome
// (assigned, no_eligible_courier, already_assigned, error).
type DispatchOutcomes struct {
	vec *prometheus.CounterVec
}

// NewDispatchOutcomes returns a registered dispatch-outcome counter
func NewDispatchOutcomes() *DispatchOutcomes {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_requests_total",
		Help: "Total number of dispatch attempts by outcome",
	}, []string{"outcome"})
	prometheus.MustRegister(vec)
	return &DispatchOutcomes{vec: vec}
}

// Inc increments the counter for the given outcome
func (d *DispatchOutcomes) Inc(outcome string) {
	if d == nil {
		return
	}
	d.vec.WithLabelValues(outcome).Inc()
}

// NewOracleFailuresTotal returns a Prometheus counter for failed or rejected
// decision-oracle calls (timeouts, malformed responses, unknown courier IDs)
func NewOracleFailuresTotal() prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oracle_failures_total",
		Help: "Total number of decision oracle calls that failed closed",
	})
	prometheus.MustRegister(c)
	return c
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
	prometheus.MustRegister(c)
	return c
}

// NewNotificationFailuresTotal returns a Prometheus counter for courier
// notifications that could not be published
func NewNotificationFailuresTotal() prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Total number of courier notifications that failed to publish",
	})
	prometheus.MustRegister(c)
	return c
}
