package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookRequests,
		webhookDuration,
	)
}

var (
	// Count of webhook deliveries by provider, result and bounded reason.
	// result: ok|fail
	// reason (fail only): bad_json|missing_order_id|bad_signature|bad_token|not_found|storage
	webhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Count of payment webhook deliveries by provider, result and reason.",
		},
		[]string{"provider", "result", "reason"},
	)

	webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_duration_seconds",
			Help:    "Duration of webhook handlers in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"provider", "result"},
	)
)

func IncWebhook(provider, result, reason string) {
	webhookRequests.WithLabelValues(norm(provider), norm(result), norm(reason)).Inc()
}

func ObserveWebhookDuration(provider, result string, seconds float64) {
	webhookDuration.WithLabelValues(norm(provider), norm(result)).Observe(seconds)
}
