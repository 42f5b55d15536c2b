package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		adminLoginAttempts,
		adminLockouts,
	)
}

var (
	// result: ok|fail|locked
	adminLoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_login_attempts_total",
			Help: "Admin password verification attempts by result.",
		},
		[]string{"result"},
	)

	adminLockouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_lockouts_total",
			Help: "Number of times a client address reached the lockout threshold.",
		},
	)
)

func IncAdminLogin(result string) {
	adminLoginAttempts.WithLabelValues(norm(result)).Inc()
}

func IncAdminLockout() {
	adminLockouts.Inc()
}
