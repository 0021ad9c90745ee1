package cache

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set(ctx, "a", 42, time.Minute)

	got, ok := c.Get(ctx, "a")
	if !ok {
		t.Fatal("expected hit for key a")
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New[string, string](0)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Set(ctx, "k", "v", 10*time.Second)

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(10 * time.Second)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss at exact TTL boundary")
	}
}

func TestCacheNoTTL(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Set(ctx, "forever", 1, 0)

	now = now.Add(24 * time.Hour)

	if _, ok := c.Get(ctx, "forever"); !ok {
		t.Fatal("entry without TTL should never expire")
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k", 1, time.Minute)
	c.Set(ctx, "k", 2, time.Minute)

	got, _ := c.Get(ctx, "k")
	if got != 2 {
		t.Fatalf("got %d, want 2 after overwrite", got)
	}
	if c.Len() != 1 {
		t.Fatalf("got %d entries, want 1", c.Len())
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k", 1, time.Minute)
	c.Delete("k")

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestCacheSweep(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Set(ctx, "old", 1, time.Second)
	c.Set(ctx, "new", 2, time.Hour)

	now = now.Add(time.Minute)
	c.sweep()

	if c.Len() != 1 {
		t.Fatalf("got %d entries after sweep, want 1", c.Len())
	}
	if _, ok := c.Get(ctx, "new"); !ok {
		t.Fatal("unexpired entry removed by sweep")
	}
}

func TestCacheCloseIdempotent(t *testing.T) {
	c := New[string, int](time.Millisecond)
	c.Close()
	c.Close()
}
