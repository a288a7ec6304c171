package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestsCollectorName = "http_requests_total"
	latencyCollectorName  = "http_request_duration_milliseconds"
)

var defaultLatencyBuckets = []float64{300, 500, 1000, 5000}

// Middleware counts the api requests and observes their latency, partitioned by
// status code, method and chi route pattern. Unrouted requests are not recorded.
type Middleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewMiddleware(service string, latencyBuckets []float64) *Middleware {
	if len(latencyBuckets) == 0 {
		latencyBuckets = defaultLatencyBuckets
	}

	return &Middleware{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem:   jobStorage,
				Name:        requestsCollectorName,
				Help:        "Number of api requests partitioned by status code, method and route.",
				ConstLabels: prometheus.Labels{"service": service},
			}, []string{"code", "method", "path"}),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem:   jobStorage,
				Name:        latencyCollectorName,
				Help:        "Time spent on api requests partitioned by status code, method and route.",
				ConstLabels: prometheus.Labels{"service": service},
				Buckets:     latencyBuckets,
			}, []string{"code", "method", "path"}),
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil || rctx.RoutePattern() == "" {
			return
		}
		code := strconv.Itoa(ww.Status())
		m.requests.WithLabelValues(code, r.Method, rctx.RoutePattern()).Inc()
		m.latency.WithLabelValues(code, r.Method, rctx.RoutePattern()).Observe(float64(time.Since(start).Milliseconds()))
	}
	return http.HandlerFunc(fn)
}

func (m *Middleware) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.latency}
}

// MustRegister registers the collectors to reg, or to the default registerer when reg is nil.
func (m *Middleware) MustRegister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.Collectors()...)
}
