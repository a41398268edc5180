// Package notifier turns platform happenings into mail events. It is the
// only producer of application-status notifications; password-reset mail is
// emitted by the reset coordinator.
package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fumble-dev/hire-me/internal/event"
	"github.com/fumble-dev/hire-me/internal/infrastructure/email"
)

type EventPublisher interface {
	Publish(ctx context.Context, evt event.Envelope) error
}

type Service struct {
	pub EventPublisher
	lg  zerolog.Logger
}

func NewService(pub EventPublisher, lg zerolog.Logger) *Service {
	return &Service{
		pub: pub,
		lg:  lg.With().Str("component", "notifier").Logger(),
	}
}

// ApplicationStatusChanged emits a status-update mail event for the
// candidate. Delivery is best-effort: a degraded broker surfaces as an
// error to the caller but never blocks the status change itself, which has
// already been committed by the applications service.
func (s *Service) ApplicationStatusChanged(ctx context.Context, to, jobTitle string) error {
	evt := event.NewEnvelope(
		event.KindApplicationStatus,
		to,
		email.SubjectApplicationStatus,
		email.ApplicationStatusHTML(jobTitle),
	)
	if err := s.pub.Publish(ctx, evt); err != nil {
		s.lg.Warn().Err(err).Str("event_id", evt.ID).Msg("status notification publish failed")
		return err
	}
	s.lg.Info().Str("event_id", evt.ID).Msg("status notification published")
	return nil
}
