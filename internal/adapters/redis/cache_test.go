package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	in := domain.TrendPoint{Month: "2024-01", ReviewCount: 3}
	if err := cache.Set(ctx, "trend:test", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.TrendPoint
	ok, err := cache.Get(ctx, "trend:test", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit")
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := cache.Del(ctx, "trend:test"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = cache.Get(ctx, "trend:test", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	var out domain.TrendPoint
	ok, err := cache.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}
