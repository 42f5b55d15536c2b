package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		checkoutRequests,
		ordersTotal,
		orderRevenueTotal,
	)
}

var (
	// Count of checkout initiations by result and bounded reason.
	// result: ok|fail
	// reason (fail only): validation|invalid_package|amount_mismatch|gateway|storage|unauthorized
	checkoutRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_requests_total",
			Help: "Count of /api/v1/checkout calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Orders by status transition applied (pending/paid/failed/...).",
		},
		[]string{"status", "provider"},
	)

	orderRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_revenue_total",
			Help: "Total monetary value of paid orders by provider.",
		},
		[]string{"provider"},
	)
)

func IncCheckout(result, reason string) {
	checkoutRequests.WithLabelValues(norm(result), norm(reason)).Inc()
}

func IncOrderStatus(status, provider string) {
	ordersTotal.WithLabelValues(norm(status), norm(provider)).Inc()
}

func AddOrderRevenue(provider string, amount int64) {
	orderRevenueTotal.WithLabelValues(norm(provider)).Add(float64(amount))
}
