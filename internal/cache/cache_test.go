package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(4, time.Hour)

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss")
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
}

func TestMemoryIsBounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, time.Hour)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("oldest entry should be evicted")
	}
}

func TestMemoryPerEntryTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(4, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	if _, ok, _ := c.Get(ctx, "short"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Fatalf("expected expiry")
	}
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(4, time.Hour)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("cache aliased caller buffer: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Layered
// ---------------------------------------------------------------------------

type failingCache struct{ err error }

func (f failingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return f.err
}

func TestLayeredBackfillsFasterLayer(t *testing.T) {
	ctx := context.Background()
	fast := NewMemory(4, time.Hour)
	slow := NewMemory(4, time.Hour)
	_ = slow.Set(ctx, "k", []byte("v"), 0)

	c := NewLayered(fast, slow)
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
	if _, ok, _ := fast.Get(ctx, "k"); !ok {
		t.Fatalf("fast layer not backfilled")
	}
}

func TestLayeredToleratesBrokenLayer(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(4, time.Hour)
	c := NewLayered(failingCache{err: errors.New("down")}, mem, nil)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); !ok || err != nil {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}

	allDown := NewLayered(failingCache{err: errors.New("down")})
	if err := allDown.Set(ctx, "k", nil, 0); err == nil {
		t.Fatalf("expected error when every layer fails")
	}
}

// ---------------------------------------------------------------------------
// Redis (integration)
// ---------------------------------------------------------------------------

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	c := NewRedis(client)
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	if _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
}
