package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fumble-dev/hire-me/internal/domain"
)

// ResetStore binds a password-reset token to the email it was issued for.
// One live association per email: Save overwrites, so a newer reset request
// implicitly invalidates every token issued before it. The entry's TTL is
// enforced by redis itself, independent of the token's embedded expiry.
type ResetStore struct {
	rdb    *goredis.Client
	prefix string // "forgot:"
}

func NewResetStore(c *Client) *ResetStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &ResetStore{
		rdb:    rdb,
		prefix: "forgot:",
	}
}

// Save stores (or overwrites) the association and resets its TTL.
func (s *ResetStore) Save(ctx context.Context, email, token string, ttl time.Duration) error {
	email = strings.TrimSpace(email)
	token = strings.TrimSpace(token)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis reset store not configured")
	}

	return s.rdb.Set(ctx, s.key(email), token, ttl).Err()
}

// Get returns the live token for the email. A key that never existed and a
// key that expired are indistinguishable: both come back as
// reset_association_missing. Any other redis failure surfaces as
// cache_unavailable so the caller can fail closed.
func (s *ResetStore) Get(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}
	if s.rdb == nil {
		return "", domain.ErrCacheUnavailable(errors.New("redis reset store not configured"))
	}

	v, err := s.rdb.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrResetAssociationMissing()
		}
		return "", domain.ErrCacheUnavailable(fmt.Errorf("reset store get: %w", err))
	}
	if strings.TrimSpace(v) == "" {
		return "", domain.ErrResetAssociationMissing()
	}
	return v, nil
}

// Delete removes the association. Deleting an absent key is a no-op, which
// keeps redemption idempotent on the happy path.
func (s *ResetStore) Delete(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if s.rdb == nil {
		return domain.ErrCacheUnavailable(errors.New("redis reset store not configured"))
	}

	if err := s.rdb.Del(ctx, s.key(email)).Err(); err != nil {
		return domain.ErrCacheUnavailable(fmt.Errorf("reset store delete: %w", err))
	}
	return nil
}

func (s *ResetStore) key(email string) string {
	return s.prefix + strings.ToLower(email)
}
