package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers and returns a recorder backed by the
// default prometheus registry. Counters are labeled by event type and
// ledger prefix, latencies by operation and ledger prefix.
func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ilp",
			Name:      "events_total",
			Help:      "interledger client event counters",
		},
		[]string{"type", "ledger"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ilp",
			Name:      "latency_seconds",
			Help:      "interledger client operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "ledger"},
	)

	prometheus.MustRegister(counters, histogram)

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type":   name,
		"ledger": labels["ledger"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation": name,
		"ledger":    labels["ledger"],
	}).Observe(d.Seconds())
}
