package fuzzy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fuzzylts_inference_fallback_total",
	Help: "Inference calls that fell back to the output minimum.",
}, []string{"reason"})
