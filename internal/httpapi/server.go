// Package httpapi serves quiz conversions over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/huangsam/quizscale/internal/contract"
)

const (
	requestTimeout    = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	maxUploadBytes    = 32 << 20
)

// NewRouter builds the chi router for the quiz API. The base config supplies
// defaults that every request may override.
func NewRouter(baseCfg *contract.Config, mgr contract.StoreManager) http.Handler {
	h := &handler{baseCfg: baseCfg, mgr: mgr}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	origins := baseCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.handleHealth)
	r.Route("/quiz", func(r chi.Router) {
		r.Post("/convert", h.handleConvert)
		r.Get("/scale", h.handleScale)
	})
	return r
}

// Serve runs the HTTP API on cfg.Addr until ctx is cancelled.
func Serve(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, mgr),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("🚀 Quiz API listening on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
