package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/ibagroup-eu/vf-job-storage/internal/config"
	handlers "github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/pkg/log"
	"github.com/ibagroup-eu/vf-job-storage/pkg/metrics"
	"github.com/ibagroup-eu/vf-job-storage/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of a job storage server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

// NewRouter wires the middlewares and the API routes.
func NewRouter(cfg *config.Config, store store.Store, metricMiddleware *metrics.Middleware) *chi.Mux {
	router := chi.NewRouter()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Service.AllowedOrigins,
			AllowedMethods:   []string{"GET", "PUT", "PATCH", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		log.ConditionalLogger(cfg.Service.LogLevel, zap.L(), "http"),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "OK")
	})

	jobService := service.NewJobService(store)
	pipelineService := service.NewPipelineService(store)

	h := handlers.NewServiceHandler(
		jobService,
		pipelineService,
		service.NewConnectionService(store),
		service.NewTransferService(jobService, pipelineService),
	)
	h.RegisterApi(router)

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	metricMiddleware := metrics.NewMiddleware("job_storage", s.cfg.Service.LatencyBuckets)
	metricMiddleware.MustRegister(nil)

	srv := &http.Server{Addr: s.cfg.Service.Address, Handler: NewRouter(s.cfg, s.store, metricMiddleware)}
	return serve(ctx, "api_server", srv, s.listener)
}

// serve runs srv on listener until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, name string, srv *http.Server, listener net.Listener) error {
	logger := zap.S().Named(name)

	go func() {
		<-ctx.Done()
		logger.Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		logger.Info("server terminated")
	}()

	logger.Infof("Listening on %s...", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
