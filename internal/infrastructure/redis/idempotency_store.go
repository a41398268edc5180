package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IdempotencyStore records event ids the mail consumer has already handled.
// With at-least-once delivery the same envelope may arrive twice; marking
// the id before dispatch keeps the second delivery from sending a second
// email.
type IdempotencyStore struct {
	rdb    *Client
	prefix string // "mail:sent:"
}

func NewIdempotencyStore(c *Client) *IdempotencyStore {
	return &IdempotencyStore{
		rdb:    c,
		prefix: "mail:sent:",
	}
}

// MarkOnce sets the id if unseen and reports whether this caller won. A
// redis failure reports seen=false so delivery proceeds: duplicate mail is
// preferable to silently dropped mail.
func (s *IdempotencyStore) MarkOnce(ctx context.Context, eventID string, ttl time.Duration) (first bool, err error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return true, nil // unidentifiable events are always dispatched
	}
	if s.rdb == nil || s.rdb.rdb == nil {
		return true, errors.New("redis idempotency store not configured")
	}

	ok, err := s.rdb.rdb.SetNX(ctx, s.prefix+eventID, "1", ttl).Result()
	if err != nil {
		return true, fmt.Errorf("idempotency mark: %w", err)
	}
	return ok, nil
}
