package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Raisondetr3/store-sales-proxy/internal/config"
	"github.com/Raisondetr3/store-sales-proxy/internal/metrics"
	"github.com/Raisondetr3/store-sales-proxy/internal/transport/http/middleware"
	"github.com/gorilla/mux"
)

type HTTPServer struct {
	server   *http.Server
	handlers *HTTPHandlers
	config   *config.Config
}

func NewHTTPServer(cfg *config.Config, handlers *HTTPHandlers, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		handlers: handlers,
		config:   cfg,
		server: &http.Server{
			Addr:         ":" + cfg.Server.HTTPPort,
			Handler:      NewRouter(handlers, m),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// NewRouter builds the full handler chain. Logging wraps the router itself
// so unmatched routes still get a request id; recovery sits inside it so a
// panic is logged with its final status.
func NewRouter(handlers *HTTPHandlers, m *metrics.Metrics) http.Handler {
	router := mux.NewRouter()

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.PanicRecoveryMiddleware)

	handlers.SetupRoutes(router)

	return middleware.LoggingMiddleware(router)
}

func (s *HTTPServer) StartServer() error {
	slog.Info("Starting HTTP server",
		slog.String("address", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("HTTP server stopped")
			return nil
		}
		slog.Error("HTTP server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
