// SPDX-License-Identifier: MIT

package processor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "github.com/sportarr/sportarr/internal/log"
)

// StatusServer exposes pass state over HTTP while the daemon runs in
// watch mode: /healthz, /status, /processed, and /metrics.
type StatusServer struct {
	srv *http.Server
}

// NewStatusServer builds the server on addr. An empty addr disables it.
func NewStatusServer(addr string, p *Processor) *StatusServer {
	if addr == "" {
		return nil
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"last_pass": p.LastReport(),
			"metadata":  p.MetadataStats(),
		})
	})
	r.Get("/processed", func(w http.ResponseWriter, _ *http.Request) {
		dests, err := p.ProcessedDestinations()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count":        len(dests),
			"destinations": dests,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	return &StatusServer{srv: &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until the context is canceled, then shuts down gracefully.
// A nil server blocks until cancellation so callers need no special case.
func (s *StatusServer) Run(ctx context.Context) error {
	if s == nil {
		<-ctx.Done()
		return nil
	}
	logger := applog.WithComponent("status")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("event", "status.listen").
			Str("addr", s.srv.Addr).
			Msg("status server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
