package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/state"
)

// StartServer exposes the health and status endpoints until ctx is cancelled.
// Status is read from the shared state store so the endpoint works even when
// the trading loop is wedged.
func StartServer(ctx context.Context, port string, store *state.Store, staleAfter time.Duration) {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write error")
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		status, stale, err := store.ReadStatus(time.Now().UTC(), staleAfter)
		if err != nil {
			http.Error(w, "status unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if stale {
			w.Header().Set("X-Status-Stale", "true")
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logger.WithError(err).Error("/status write error")
		}
	})

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
