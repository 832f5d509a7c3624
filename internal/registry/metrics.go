package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	modelsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "domaind",
			Subsystem: "registry",
			Name:      "models_created_total",
			Help:      "Total number of models built through the registry",
		},
		[]string{"model"},
	)

	eventsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "domaind",
			Subsystem: "registry",
			Name:      "events_created_total",
			Help:      "Total number of events built through the registry",
		},
		[]string{"event"},
	)

	lookupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "domaind",
			Subsystem: "registry",
			Name:      "lookup_failures_total",
			Help:      "Lookups of unregistered models or model events",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(modelsCreated, eventsCreated, lookupFailures)
}
