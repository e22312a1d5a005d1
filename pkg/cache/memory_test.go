package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v" {
		t.Fatalf("got %q", got)
	}
}

func TestMemoryCacheFloatDest(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "px", 45230.50, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got float64
	if err := mc.Get(ctx, "px", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 45230.50 {
		t.Fatalf("got %v", got)
	}

	// A pointer stored by the layered re-population path must still read
	// back into a plain float destination.
	stored := 101.5
	if err := mc.Set(ctx, "px2", &stored, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mc.Get(ctx, "px2", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 101.5 {
		t.Fatalf("got %v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got string
	if err := mc.Get(context.Background(), "absent", &got); err != ErrCacheMiss {
		t.Fatalf("expected cache miss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got string
	if err := mc.Get(ctx, "k", &got); err != ErrCacheMiss {
		t.Fatalf("expected cache miss after expiry, got %v", err)
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" becomes the least recently used entry.
	var tmp string
	_ = mc.Get(ctx, "a", &tmp)
	time.Sleep(time.Millisecond)

	_ = mc.Set(ctx, "c", "3", time.Minute)

	if err := mc.Get(ctx, "b", &tmp); err != ErrCacheMiss {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &tmp); err != nil {
		t.Fatalf("expected a retained: %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("spot", "BTC", "USD"); got != "spot:BTC:USD" {
		t.Fatalf("got %q", got)
	}
	if got := Key("bare"); got != "bare" {
		t.Fatalf("got %q", got)
	}
}
