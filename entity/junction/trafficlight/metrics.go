package trafficlight

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gapOutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuzzylts_gap_out_total",
		Help: "Green phases ended early by gap-out.",
	}, []string{"signal"})
	observedGreen = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fuzzylts_observed_green_seconds",
		Help:    "Completed green phase durations seen by the actuated observer.",
		Buckets: prometheus.LinearBuckets(5, 5, 12),
	}, []string{"signal"})
)
