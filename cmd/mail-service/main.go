package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	zlog "github.com/rs/zerolog/log"

	"github.com/fumble-dev/hire-me/internal/bootstrap"
	"github.com/fumble-dev/hire-me/internal/logger"
)

func main() {
	logger.Init()
	lg := zlog.Logger

	rt, cleanup, err := bootstrap.NewMailerRuntime()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Consumer.Start(ctx); err != nil {
		lg.Error().Err(err).Msg("consumer start failed")
		os.Exit(1)
	}

	go func() {
		lg.Info().Str("addr", rt.Ops.Addr).Msg("ops listener up")
		if err := rt.Ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error().Err(err).Msg("ops listener failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), rt.ShutdownTimeout)
	defer shutdownCancel()

	if err := rt.Consumer.Stop(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("consumer stop timed out")
	}
	if err := rt.Ops.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("ops listener shutdown failed")
		_ = rt.Ops.Close()
	}

	lg.Info().Msg("shutdown complete")
}
