// Package metrics records Imgur API request observations with Prometheus.
package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "imgo"

// Recorder implements imgur.Recorder using Prometheus metrics.
type Recorder struct {
	requestDuration *prom.HistogramVec
	failures        *prom.CounterVec
}

// NewRecorder constructs the request metrics and registers them on reg. A nil
// reg gets a private registry; an empty namespace uses DefaultNamespace.
func NewRecorder(reg prom.Registerer, namespace string) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r := &Recorder{
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of Imgur API requests",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "status"}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "request_failures_total",
			Help:      "Failed Imgur API requests by classified kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.requestDuration, r.failures)
	return r
}

// ObserveRequest records the duration of a completed request.
func (r *Recorder) ObserveRequest(method string, status int, d time.Duration) {
	if r == nil || r.requestDuration == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncFailure counts a failed request. kind is the label produced by imgur.Kind
// or "transport"/"status" for unclassified failures.
func (r *Recorder) IncFailure(kind string) {
	if r == nil || r.failures == nil {
		return
	}
	r.failures.WithLabelValues(kind).Inc()
}
