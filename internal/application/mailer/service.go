// Package mailer is the consuming side of the send-mail topic: it takes
// decoded envelopes off the broker and turns them into outbound email.
package mailer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fumble-dev/hire-me/internal/event"
	"github.com/fumble-dev/hire-me/internal/metrics"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// IdempotencyStore remembers handled event ids across deliveries. first
// reports whether this caller is the first to see the id.
type IdempotencyStore interface {
	MarkOnce(ctx context.Context, eventID string, ttl time.Duration) (first bool, err error)
}

type Service struct {
	sender Sender
	idem   IdempotencyStore // nil disables deduplication
	ttl    time.Duration
	lg     zerolog.Logger
}

func NewService(sender Sender, idem IdempotencyStore, idemTTL time.Duration, lg zerolog.Logger) *Service {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Service{
		sender: sender,
		idem:   idem,
		ttl:    idemTTL,
		lg:     lg.With().Str("component", "mailer").Logger(),
	}
}

// HandleMail dispatches one envelope. A duplicate delivery (same event id
// already marked) is dropped without error. An idempotency-store failure is
// logged and the send proceeds: a duplicate email costs less than a lost
// one.
func (s *Service) HandleMail(ctx context.Context, evt event.Envelope) error {
	if s.idem != nil {
		first, err := s.idem.MarkOnce(ctx, evt.ID, s.ttl)
		if err != nil {
			s.lg.Warn().Err(err).Str("event_id", evt.ID).Msg("idempotency mark failed, sending anyway")
		}
		if err == nil && !first {
			s.lg.Info().Str("event_id", evt.ID).Str("kind", string(evt.Kind)).Msg("duplicate delivery dropped")
			metrics.EventSkipped(string(evt.Kind), "duplicate")
			return nil
		}
	}

	start := time.Now()
	if err := s.sender.Send(ctx, evt.To, evt.Subject, evt.HTML); err != nil {
		metrics.MailFailed(string(evt.Kind), "send_error")
		s.lg.Error().Err(err).
			Str("event_id", evt.ID).
			Str("kind", string(evt.Kind)).
			Msg("mail dispatch failed")
		return err
	}

	metrics.MailSent(string(evt.Kind), time.Since(start))
	s.lg.Info().
		Str("event_id", evt.ID).
		Str("kind", string(evt.Kind)).
		Dur("took", time.Since(start)).
		Msg("mail dispatched")
	return nil
}
