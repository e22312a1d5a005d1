package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SentimentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinpulse",
			Subsystem: "sentiment",
			Name:      "latency_seconds",
			Help:      "Latency of sentiment synthesis",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	SentimentSourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinpulse",
			Subsystem: "sentiment",
			Name:      "source_errors_total",
			Help:      "Errors by sentiment source",
		},
		[]string{"source"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SentimentLatency, SentimentSourceErrors)
	})
}
