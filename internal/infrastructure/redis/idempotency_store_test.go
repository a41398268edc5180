package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newMiniIdem(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewIdempotencyStore(NewFromRDB(rdb)), mr
}

func TestIdempotencyStore_FirstWinsSecondSkips(t *testing.T) {
	s, _ := newMiniIdem(t)
	ctx := context.Background()

	first, err := s.MarkOnce(ctx, "evt-1", time.Hour)
	if err != nil || !first {
		t.Fatalf("expected first=true, got %v, %v", first, err)
	}

	second, err := s.MarkOnce(ctx, "evt-1", time.Hour)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if second {
		t.Fatalf("expected duplicate to lose")
	}
}

func TestIdempotencyStore_ExpiredMarkAllowsResend(t *testing.T) {
	s, mr := newMiniIdem(t)
	ctx := context.Background()

	if _, err := s.MarkOnce(ctx, "evt-1", time.Minute); err != nil {
		t.Fatalf("mark: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	first, err := s.MarkOnce(ctx, "evt-1", time.Minute)
	if err != nil || !first {
		t.Fatalf("expected mark to win after expiry, got %v, %v", first, err)
	}
}

func TestIdempotencyStore_EmptyIDAlwaysDispatches(t *testing.T) {
	s, _ := newMiniIdem(t)

	first, err := s.MarkOnce(context.Background(), "", time.Hour)
	if err != nil || !first {
		t.Fatalf("expected unidentifiable events to dispatch, got %v, %v", first, err)
	}
}
