package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcdev12/planningpoker/go/internal/status"
)

// startStatusServer serves /health, /room and /stats until ctx is done.
// It returns immediately when addr is empty.
func startStatusServer(ctx context.Context, addr string, views status.ViewProvider, counters *status.Counters, logger zerolog.Logger) {
	if addr == "" {
		return
	}

	server := status.NewServer(addr, status.NewHandler(views, counters, logger))

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("status server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("status server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("status server shutdown failed")
		}
	}()
}
