package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheOps        *prometheus.CounterVec
	adapterFailures *prometheus.CounterVec
	agreement       *prometheus.GaugeVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalfuse_cache_operations_total",
				Help: "Total cache operations by result",
			},
			[]string{"operation", "result"},
		),
		adapterFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalfuse_adapter_failures_total",
				Help: "Total upstream adapter failures by source",
			},
			[]string{"source"},
		),
		agreement: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalfuse_consensus_agreement",
				Help: "Agreement score of the last consensus per symbol",
			},
			[]string{"symbol"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalfuse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalfuse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalfuse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordCacheOp records a cache operation outcome (hit, miss, error).
func (r *Recorder) RecordCacheOp(op, result string) {
	r.cacheOps.WithLabelValues(op, result).Inc()
}

// RecordAdapterFailure records a failed upstream adapter call.
func (r *Recorder) RecordAdapterFailure(source string) {
	r.adapterFailures.WithLabelValues(source).Inc()
}

// RecordAgreement records the agreement score for a symbol's consensus.
func (r *Recorder) RecordAgreement(symbol string, agreement float64) {
	r.agreement.WithLabelValues(symbol).Set(agreement)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
