package reset

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/rs/zerolog"

	"github.com/fumble-dev/hire-me/internal/domain"
	"github.com/fumble-dev/hire-me/internal/event"
	"github.com/fumble-dev/hire-me/internal/infrastructure/email"
	"github.com/fumble-dev/hire-me/internal/metrics"
)

// Service coordinates password-reset issuance and redemption. The two
// handlers share only the reset store; there is no transaction spanning the
// store write and the broker publish, and a crash between them leaves a
// valid association with no email sent (the user simply re-requests).
type Service struct {
	users  UserRepo
	hasher PasswordHasher
	signer TokenSigner
	store  ResetStore
	pub    EventPublisher
	lg     zerolog.Logger

	tokenTTL time.Duration
	baseURL  string // must contain "token="; the signed token is appended
}

type Config struct {
	TokenTTL time.Duration
	BaseURL  string
}

func NewService(users UserRepo, hasher PasswordHasher, signer TokenSigner, store ResetStore, pub EventPublisher, cfg Config, lg zerolog.Logger) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		signer:   signer,
		store:    store,
		pub:      pub,
		tokenTTL: ttl,
		baseURL:  cfg.BaseURL,
		lg:       lg.With().Str("component", "reset_service").Logger(),
	}
}

// Request issues a password reset for the email. It never reports whether
// the account exists, and every failure after the lookup is logged and
// swallowed: the HTTP response is the same generic success either way.
func (s *Service) Request(ctx context.Context, emailAddr string) {
	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		// absent account or db trouble: same outward silence
		metrics.ResetOp("request", "noop")
		s.lg.Info().Err(err).Msg("reset request for unknown account")
		return
	}

	token, err := s.signer.SignResetToken(u.Email, s.tokenTTL)
	if err != nil {
		metrics.ResetOp("request", "error")
		s.lg.Error().Err(err).Msg("reset token signing failed")
		return
	}

	// the store entry and the signature expire on the same clock; whichever
	// lapses first invalidates the token
	if err := s.store.Save(ctx, u.Email, token, s.tokenTTL); err != nil {
		metrics.ResetOp("request", "error")
		s.lg.Error().Err(err).Msg("reset association save failed")
		return
	}

	link := s.baseURL + token
	evt := event.NewEnvelope(
		event.KindPasswordReset,
		u.Email,
		email.SubjectPasswordReset,
		email.ForgotPasswordHTML(link),
	)
	if err := s.pub.Publish(ctx, evt); err != nil {
		// best-effort: the association is live, the mail just didn't go out
		metrics.ResetOp("request", "publish_degraded")
		s.lg.Warn().Err(err).Str("event_id", evt.ID).Msg("reset notification publish failed")
		return
	}

	metrics.ResetOp("request", "ok")
	s.lg.Info().Str("event_id", evt.ID).Msg("reset issued")
}

// Redeem verifies the token end to end and rotates the credential. The
// returned error carries a precise internal code; the HTTP layer collapses
// all of them into one generic client response.
func (s *Service) Redeem(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return domain.ErrMissingField("password")
	}
	if len(newPassword) < 8 {
		return domain.ErrWeakPassword("min length 8")
	}

	emailAddr, err := s.signer.VerifyResetToken(token)
	if err != nil {
		metrics.ResetOp("redeem", "rejected")
		return err
	}

	stored, err := s.store.Get(ctx, emailAddr)
	if err != nil {
		metrics.ResetOp("redeem", "rejected")
		if domain.Is(err, "cache_unavailable") {
			// fail closed: cache trouble must never skip the association check
			s.lg.Error().Err(err).Msg("reset store unavailable during redemption")
			return domain.ErrResetAssociationMissing()
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		metrics.ResetOp("redeem", "rejected")
		return domain.ErrResetAssociationMismatch()
	}

	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		metrics.ResetOp("redeem", "rejected")
		return domain.ErrResetAccountMissing()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		metrics.ResetOp("redeem", "error")
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, u.Email, hash); err != nil {
		metrics.ResetOp("redeem", "error")
		return err
	}

	// single-use: a second redemption of this token now fails
	if err := s.store.Delete(ctx, u.Email); err != nil {
		s.lg.Error().Err(err).Msg("reset association delete failed after credential update")
	}

	metrics.ResetOp("redeem", "ok")
	s.lg.Info().Msg("password reset redeemed")
	return nil
}
