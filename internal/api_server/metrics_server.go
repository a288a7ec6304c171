package apiserver

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricServer exposes the collected metrics on its own listener, away from the api.
type MetricServer struct {
	httpServer *http.Server
	listener   net.Listener
}

// NewMetricServer serves the metrics of gatherer, or of the default registry when gatherer is nil.
func NewMetricServer(bindAddress string, listener net.Listener, gatherer prometheus.Gatherer) *MetricServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &MetricServer{
		listener: listener,
		httpServer: &http.Server{
			Addr:    bindAddress,
			Handler: router,
		},
	}
}

func (m *MetricServer) Handler() http.Handler {
	return m.httpServer.Handler
}

func (m *MetricServer) Run(ctx context.Context) error {
	return serve(ctx, "metrics_server", m.httpServer, m.listener)
}
