package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fumble-dev/hire-me/internal/application/mailer"
	"github.com/fumble-dev/hire-me/internal/config"
	"github.com/fumble-dev/hire-me/internal/infrastructure/email"
	"github.com/fumble-dev/hire-me/internal/infrastructure/messaging/rabbitmq"
	"github.com/fumble-dev/hire-me/internal/infrastructure/redis"
	"github.com/fumble-dev/hire-me/internal/logger"
)

/*
========================
 Mail-service assembly
========================
*/

// MailerRuntime is the mail-service's pair of long-running units: the queue
// consumer and the ops listener (healthz + metrics).
type MailerRuntime struct {
	Consumer *rabbitmq.Consumer
	Ops      *http.Server

	ShutdownTimeout time.Duration
}

func NewMailerRuntime() (*MailerRuntime, func(), error) {
	cfg, err := config.LoadMailer()
	if err != nil {
		return nil, nil, err
	}
	return newMailerRuntime(cfg)
}

func newMailerRuntime(cfg *config.Mailer) (*MailerRuntime, func(), error) {
	lg := logger.Logger

	var cleanupFns []func()

	// deduplication is optional: no redis address means every delivery is
	// dispatched, duplicates included
	var idem mailer.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisCli := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisCli.Ping(pingCtx); err != nil {
			lg.Warn().Err(err).Msg("redis unavailable; mail deduplication disabled")
			_ = redisCli.Close()
		} else {
			idem = redis.NewIdempotencyStore(redisCli)
			cleanupFns = append(cleanupFns, func() { _ = redisCli.Close() })
		}
	}

	var sender mailer.Sender
	switch cfg.MailSender {
	case "smtp":
		s, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.SMTPTimeout,
			Insecure: cfg.SMTPInsecure,
		}, lg)
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		sender = s
	case "fake":
		sender = email.NewFakeSender(lg)
	default:
		runCleanup(cleanupFns)
		return nil, nil, fmt.Errorf("unknown MAIL_SENDER %q", cfg.MailSender)
	}

	svc := mailer.NewService(sender, idem, cfg.IdempotencyTTL, lg)

	consumer := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		RabbitURL:       cfg.RabbitURL,
		Exchange:        cfg.Exchange,
		Queue:           cfg.Queue,
		Prefetch:        cfg.Prefetch,
		Tag:             cfg.ConsumeTag,
		MaxReconnects:   cfg.MaxReconnects,
		DispatchTimeout: cfg.DispatchTimeout,
	}, svc, lg)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	rt := &MailerRuntime{
		Consumer: consumer,
		Ops: &http.Server{
			Addr:    cfg.OpsAddr,
			Handler: mux,
		},
		ShutdownTimeout: cfg.ShutdownTimeout,
	}

	return rt, func() { runCleanup(cleanupFns) }, nil
}
