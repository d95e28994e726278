package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iugu_gateway_requests_total",
			Help: "Total number of requests issued to the Iugu API",
		},
		[]string{"operation", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iugu_gateway_request_duration_seconds",
			Help:    "Duration of Iugu API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Total number of webhook notifications by outcome",
		},
		[]string{"outcome"},
	)

	paymentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_state_transitions_total",
			Help: "Total number of local payment state transitions applied",
		},
		[]string{"state"},
	)

	reconciliationGapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_reconciliation_gaps_total",
			Help: "Charges created remotely whose local transaction failed to commit",
		},
	)
)

// ObserveGatewayRequest records one request against the billing provider
func ObserveGatewayRequest(operation, status string, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordWebhookEvent records one inbound notification outcome
func RecordWebhookEvent(outcome string) {
	webhookEventsTotal.WithLabelValues(outcome).Inc()
}

// RecordPaymentTransition records one applied local state transition
func RecordPaymentTransition(state string) {
	paymentTransitionsTotal.WithLabelValues(state).Inc()
}

// RecordReconciliationGap records a remote charge left without a committed
// local record; these require manual reconciliation
func RecordReconciliationGap() {
	reconciliationGapsTotal.Inc()
}

// MetricsHandler returns the Prometheus scrape endpoint handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
