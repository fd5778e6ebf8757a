package junction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	phaseDurationApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuzzylts_phase_duration_applied_total",
		Help: "Green durations written back on green phase entry.",
	}, []string{"signal"})
	greenDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fuzzylts_green_duration_seconds",
		Help:    "Green durations decided on green phase entry.",
		Buckets: prometheus.LinearBuckets(5, 5, 12),
	}, []string{"controller"})
)
