// Package server exposes the featval service over HTTP with gin.
//
// Every RPC method is a POST under /v1 taking and returning JSON; TSV and
// cluster file exports are GETs returning text. Failures carry an
// ErrorResponse whose status follows the error class (unknown identifiers
// and references → 404, malformed requests → 400, everything else → 500).
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/katalvlaran/featval/config"
	"github.com/katalvlaran/featval/service"
)

// NewRouter builds the gin engine with recovery, tracing and metrics
// middleware and every route registered.
func NewRouter(svc *service.Service, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("featval"))
	router.Use(metricsMiddleware())
	SetupRoutes(router, NewHandlers(svc, logger))

	return router
}

// Run serves handler on cfg.Addr until ctx is done, then shuts down
// gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx := context.Background()
	if cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
