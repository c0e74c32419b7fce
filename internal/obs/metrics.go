package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur, m.InFlight)
	return m
}

// RenderMetrics counts price rendering outcomes.
type RenderMetrics struct {
	Rendered *prometheus.CounterVec
	Hidden   prometheus.Counter
}

// NewRenderMetrics registers and returns price render counters.
func NewRenderMetrics(namespace string, reg prometheus.Registerer) *RenderMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &RenderMetrics{
		Rendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_renders_total",
			Help:      "Total number of price values rendered, by filter.",
		}, []string{"filter"}),
		Hidden: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_renders_hidden_total",
			Help:      "Total number of renders short-circuited by hidden prices.",
		}),
	}
	reg.MustRegister(m.Rendered, m.Hidden)
	return m
}

// DurationMillis converts a duration to fractional milliseconds.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
