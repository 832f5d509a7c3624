package pubsub

import "github.com/prometheus/client_golang/prometheus"

var (
	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "domaind",
			Subsystem: "pubsub",
			Name:      "notifications_total",
			Help:      "Total number of events published",
		},
		[]string{"event"},
	)

	handlerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "domaind",
			Subsystem: "pubsub",
			Name:      "handler_failures_total",
			Help:      "Total number of handler errors during publication",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(notifications, handlerFailures)
}
