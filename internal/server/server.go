package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/metrics"
	"github.com/kitbuilder587/gcsearch-plugin/internal/plugin"
	"github.com/kitbuilder587/gcsearch-plugin/internal/service"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Provider    *plugin.Provider
	Credentials service.CredentialService
	Search      service.SearchService
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

type Server struct {
	addr        string
	router      chi.Router
	provider    *plugin.Provider
	credentials service.CredentialService
	search      service.SearchService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func New(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{
		addr:        addr,
		provider:    deps.Provider,
		credentials: deps.Credentials,
		search:      deps.Search,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/manifest", s.handleManifest)

		r.Post("/providers/{provider}/credentials/validate", s.handleValidate)
		r.Post("/tools/{tool}/invoke", s.handleInvoke)

		r.Put("/users/{user_id}/credentials", s.handleSaveCredentials)
		r.Delete("/users/{user_id}/credentials", s.handleRemoveCredentials)
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run слушает addr до отмены ctx, потом аккуратно гасит сервер.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
