// Package bootstrap assembles the services from configuration. Each
// constructor returns the runnable unit plus a cleanup that tears down its
// connections in reverse order.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/fumble-dev/hire-me/internal/application/notifier"
	"github.com/fumble-dev/hire-me/internal/application/reset"
	"github.com/fumble-dev/hire-me/internal/config"
	"github.com/fumble-dev/hire-me/internal/infrastructure/messaging/rabbitmq"
	"github.com/fumble-dev/hire-me/internal/infrastructure/postgres"
	"github.com/fumble-dev/hire-me/internal/infrastructure/redis"
	"github.com/fumble-dev/hire-me/internal/infrastructure/security"
	"github.com/fumble-dev/hire-me/internal/logger"
	"github.com/fumble-dev/hire-me/internal/transport/http/handlers"
	"github.com/fumble-dev/hire-me/internal/transport/http/router"
)

/*
========================
 Auth-service assembly
========================
*/

func NewAuthServer() (*http.Server, func(), error) {
	cfg, err := config.LoadAuth()
	if err != nil {
		return nil, nil, err
	}
	return newAuthServer(cfg)
}

func newAuthServer(cfg *config.Auth) (*http.Server, func(), error) {
	lg := logger.Logger

	db, err := config.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}
	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	userRepo := postgres.NewUserRepo(db)

	// redis is required here: the reset association is the single-use
	// guarantee, and running without it would make every signed token
	// irredeemable anyway
	redisCli := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisCli.Ping(pingCtx); err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, func() { _ = redisCli.Close() })
	resetStore := redis.NewResetStore(redisCli)

	// broker is best-effort: a down broker degrades notifications, it does
	// not block logins or resets
	pub := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.Exchange, cfg.PublishTimeout, lg)
	if err := pub.Connect(); err != nil {
		lg.Warn().Err(err).Msg("rabbitmq unavailable at startup; publisher degraded")
	}
	cleanupFns = append(cleanupFns, func() { _ = pub.Close() })

	hasher := security.NewBcryptHasher(12)
	signer := security.NewJWTSigner(cfg.JWTSecret, "hire-me/auth")

	resetSvc := reset.NewService(userRepo, hasher, signer, resetStore, pub, reset.Config{
		TokenTTL: cfg.PasswordResetTokenTTL,
		BaseURL:  cfg.PasswordResetBaseURL,
	}, lg)
	notifySvc := notifier.NewService(pub, lg)

	mux, err := router.New(router.Deps{
		Health:         handlers.NewHealthHandler(pub),
		Reset:          handlers.NewResetHandler(resetSvc),
		Notify:         handlers.NewNotifyHandler(notifySvc),
		InternalSecret: cfg.InternalSecret,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return srv, func() { runCleanup(cleanupFns) }, nil
}

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
