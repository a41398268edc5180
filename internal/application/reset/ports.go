package reset

import (
	"context"
	"time"

	"github.com/fumble-dev/hire-me/internal/domain"
	"github.com/fumble-dev/hire-me/internal/event"
)

/*
UserRepo
--------
Persistence port onto the platform's users table. Only what the reset flow
needs; the user service owns everything else.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, email string, newHash string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
}

/*
TokenSigner
-----------
Issues and verifies the signed, purpose-bound reset token.
*/
type TokenSigner interface {
	SignResetToken(email string, ttl time.Duration) (string, error)
	VerifyResetToken(token string) (email string, err error)
}

/*
ResetStore
----------
Volatile TTL-bound association between an email and the token issued for
it. Read and written only by this coordinator, never by the mail consumer.
*/
type ResetStore interface {
	Save(ctx context.Context, email, token string, ttl time.Duration) error
	Get(ctx context.Context, email string) (token string, err error)
	Delete(ctx context.Context, email string) error
}

/*
EventPublisher
--------------
Fire-and-forget emission onto the send-mail topic. The mail service
consumes these; this service never sends email directly.
*/
type EventPublisher interface {
	Publish(ctx context.Context, evt event.Envelope) error
}
