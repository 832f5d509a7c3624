package usecase

import (
	"github.com/prometheus/client_golang/prometheus"

	"domaind/internal/model"
)

var calls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "domaind",
		Subsystem: "usecase",
		Name:      "calls_total",
		Help:      "Use case invocations by outcome",
	},
	[]string{"usecase", "model", "result"},
)

func init() {
	prometheus.MustRegister(calls)
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case model.IsNotFound(err):
		return "not_found"
	case model.IsValidation(err):
		return "invalid"
	case model.IsFactory(err), model.IsArgument(err):
		return "rejected"
	case model.IsLookup(err):
		return "unregistered"
	case model.IsPublish(err):
		return "publish_failed"
	default:
		return "error"
	}
}
