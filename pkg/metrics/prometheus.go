package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	quotaRejected prometheus.Counter
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
	batchPass     prometheus.Histogram
	batchOutcome  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_predictions_total",
				Help: "Total number of predictions generated",
			},
			[]string{"mode", "symbol", "direction"},
		),
		quotaRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "coinpulse_quota_rejected_total",
				Help: "Total manual requests rejected for insufficient quota",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		batchPass: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coinpulse_batch_pass_duration_seconds",
				Help:    "Duration of scheduler generation passes",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 120, 240},
			},
		),
		batchOutcome: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_batch_rounds_total",
				Help: "Scheduler generation rounds by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordPrediction records one generated prediction.
func (r *Recorder) RecordPrediction(mode, symbol, direction string) {
	r.predictions.WithLabelValues(mode, symbol, direction).Inc()
}

// RecordQuotaRejected records a manual request rejected on quota.
func (r *Recorder) RecordQuotaRejected() {
	r.quotaRejected.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordBatchPass records one scheduler pass and its round outcomes.
func (r *Recorder) RecordBatchPass(seconds float64, generated, failed int) {
	r.batchPass.Observe(seconds)
	r.batchOutcome.WithLabelValues("generated").Add(float64(generated))
	r.batchOutcome.WithLabelValues("failed").Add(float64(failed))
}
