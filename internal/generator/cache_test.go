package generator

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(rdb)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "sys", "user"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set(ctx, "sys", "user", "cached content")

	got, ok := cache.Get(ctx, "sys", "user")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != "cached content" {
		t.Errorf("got %q, want %q", got, "cached content")
	}
}

func TestCacheKeysDistinguishPrompts(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "sys", "topic A", "quiz A")
	cache.Set(ctx, "sys", "topic B", "quiz B")

	got, _ := cache.Get(ctx, "sys", "topic A")
	if got != "quiz A" {
		t.Errorf("topic A returned %q", got)
	}
	got, _ = cache.Get(ctx, "sys", "topic B")
	if got != "quiz B" {
		t.Errorf("topic B returned %q", got)
	}
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	// Both operations must be no-ops, not panics.
	cache.Set(ctx, "sys", "user", "content")
	if _, ok := cache.Get(ctx, "sys", "user"); ok {
		t.Error("nil cache reported a hit")
	}
}
