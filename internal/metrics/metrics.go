// Package metrics exposes the service's Prometheus collectors behind a small
// Recorder interface so business code never touches the client library.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the telemetry surface used by the pipeline and the router.
type Recorder interface {
	// RecordVerdict counts one gate outcome.
	RecordVerdict(verdict string)
	// RecordModelAttempt records one model call; outcome is "ok" or an error code.
	RecordModelAttempt(model, outcome string, d time.Duration)
	RecordRedactions(family string, n int)
	// RecordPIILeak counts answers dropped because restored output still held PII.
	RecordPIILeak()
	RecordCacheAccess(hit bool)
	RecordHTTPRequest(method, path string, status int, d time.Duration)
}

const namespace = "symptomgate"

var (
	modelLatencyBuckets = []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60}
	httpLatencyBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// Prometheus implements Recorder with client_golang collectors.
type Prometheus struct {
	verdicts      *prometheus.CounterVec
	modelAttempts *prometheus.CounterVec
	modelLatency  *prometheus.HistogramVec
	redactions    *prometheus.CounterVec
	piiLeaks      prometheus.Counter
	cacheAccess   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// NewPrometheus builds the collectors and registers them with reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Prometheus{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_verdicts_total",
			Help:      "Gate verdicts by outcome.",
		}, []string{"verdict"}),
		modelAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_attempts_total",
			Help:      "Model calls by model and outcome.",
		}, []string{"model", "outcome"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_attempt_duration_seconds",
			Help:      "Latency of a single model call.",
			Buckets:   modelLatencyBuckets,
		}, []string{"model"}),
		redactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pii_redactions_total",
			Help:      "PII spans replaced by vault tokens, by family.",
		}, []string{"family"}),
		piiLeaks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pii_output_leaks_total",
			Help:      "Model answers rejected because they still contained PII.",
		}),
		cacheAccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_access_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   httpLatencyBuckets,
		}, []string{"method", "path"}),
	}

	for _, c := range []prometheus.Collector{
		m.verdicts, m.modelAttempts, m.modelLatency, m.redactions,
		m.piiLeaks, m.cacheAccess, m.httpRequests, m.httpLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) RecordVerdict(verdict string) {
	m.verdicts.WithLabelValues(verdict).Inc()
}

func (m *Prometheus) RecordModelAttempt(model, outcome string, d time.Duration) {
	m.modelAttempts.WithLabelValues(model, outcome).Inc()
	m.modelLatency.WithLabelValues(model).Observe(d.Seconds())
}

func (m *Prometheus) RecordRedactions(family string, n int) {
	if n <= 0 {
		return
	}
	m.redactions.WithLabelValues(family).Add(float64(n))
}

func (m *Prometheus) RecordPIILeak() { m.piiLeaks.Inc() }

func (m *Prometheus) RecordCacheAccess(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheAccess.WithLabelValues(result).Inc()
}

func (m *Prometheus) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, path).Observe(d.Seconds())
}

type noop struct{}

// NewNoop returns a Recorder that discards everything.
func NewNoop() Recorder { return noop{} }

func (noop) RecordVerdict(string)                                 {}
func (noop) RecordModelAttempt(string, string, time.Duration)     {}
func (noop) RecordRedactions(string, int)                         {}
func (noop) RecordPIILeak()                                       {}
func (noop) RecordCacheAccess(bool)                               {}
func (noop) RecordHTTPRequest(string, string, int, time.Duration) {}

// GinMiddleware records every request against its route template so that
// path parameters do not explode label cardinality. Unmatched routes are
// grouped under "unmatched".
func GinMiddleware(rec Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		rec.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
