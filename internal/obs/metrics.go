package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officine_logins_total",
			Help: "Total number of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	auditWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "officine_audit_writes_total",
			Help: "Total number of audit log writes by outcome.",
		},
		[]string{"outcome"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "officine_command_duration_seconds",
			Help:    "Command execution latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(loginsTotal, auditWritesTotal, commandDuration)
}

// CountLogin records one login attempt outcome ("ok", "denied", "throttled").
func CountLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}

// CountAuditWrite records one audit insert outcome ("ok", "failed").
func CountAuditWrite(outcome string) {
	auditWritesTotal.WithLabelValues(outcome).Inc()
}

// ObserveCommand records how long one command took.
func ObserveCommand(command string, start time.Time) {
	commandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
