package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK            = "ok"
	outcomeProviderError = "provider_error"
	outcomeNoJSON        = "no_json"
	outcomeMalformedJSON = "malformed_json"
)

var analysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hirevoid",
		Name:      "analyses_total",
		Help:      "Model analyses by category and outcome.",
	},
	[]string{"category", "outcome"},
)

func observe(c Category, outcome string) {
	analysesTotal.WithLabelValues(string(c), outcome).Inc()
}
