package redisad

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"aproz_tours/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	in := []domain.Tour{{Slug: "laguna-de-tota", Title: domain.Localized{ES: "Laguna", EN: "Lake"}}}
	if err := c.Set(ctx, "catalog:v1", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("aproz:catalog:v1") {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}
	if ttl := mr.TTL("aproz:catalog:v1"); ttl != 60*time.Second {
		t.Fatalf("ttl = %v", ttl)
	}

	var out []domain.Tour
	ok, err := c.Get(ctx, "catalog:v1", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].Title.EN != "Lake" {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Del(ctx, "catalog:v1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = c.Get(ctx, "catalog:v1", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after Del, ok=%v err=%v", ok, err)
	}
}

func TestCache_ExpiredIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k", "v", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	var s string
	ok, err := c.Get(ctx, "k", &s)
	if err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}

func TestCache_CorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	if err := mr.Set("aproz:k", "{not json"); err != nil {
		t.Fatal(err)
	}
	var s []string
	if ok, err := c.Get(context.Background(), "k", &s); err == nil || ok {
		t.Fatalf("expected decode error, ok=%v err=%v", ok, err)
	}
}
