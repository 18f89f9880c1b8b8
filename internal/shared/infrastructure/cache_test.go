package infrastructure

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestInMemoryCache_TTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewInMemoryCache()
	defer cache.Close()
	cache.now = clock.now

	if err := cache.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := cache.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := cache.Get("k"); ok {
		t.Error("expired entry should not be returned")
	}

	cache.purgeExpired()
	if cache.Len() != 0 {
		t.Errorf("Len after purge = %d, want 0", cache.Len())
	}
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()

	_ = cache.Set("a", []byte("1"), time.Minute)
	_ = cache.Set("b", []byte("2"), time.Minute)

	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("deleted key still present")
	}
	cache.Clear()
	if _, ok := cache.Get("b"); ok {
		t.Error("Clear left an entry behind")
	}
}

func TestShardedCache_RoutesKeysConsistently(t *testing.T) {
	cache := NewShardedCache(8)
	defer cache.Close()

	for i := 0; i < 100; i++ {
		_ = cache.Set(fmt.Sprintf("key%d", i), []byte(fmt.Sprint(i)), time.Minute)
	}
	for i := 0; i < 100; i++ {
		v, ok := cache.Get(fmt.Sprintf("key%d", i))
		if !ok || string(v) != fmt.Sprint(i) {
			t.Fatalf("key%d = %q, %v", i, v, ok)
		}
	}
	cache.Clear()
	if _, ok := cache.Get("key1"); ok {
		t.Error("Clear should empty every shard")
	}
}

func TestNewShardedCache_PanicsOnInvalidCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a shard count that is not a power of 2")
		}
	}()
	NewShardedCache(6)
}

func TestPebbleCache(t *testing.T) {
	cache, err := NewPebbleCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewPebbleCache: %v", err)
	}
	defer cache.Close()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache.now = clock.now

	body := []byte(`{"total_count":3}`)
	if err := cache.Set("top:1", body, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := cache.Get("top:1")
	if !ok || !bytes.Equal(got, body) {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	clock.t = clock.t.Add(time.Hour)
	if _, ok := cache.Get("top:1"); ok {
		t.Error("expired entry should not be returned")
	}

	clock.t = clock.t.Add(-time.Hour)
	_ = cache.Set("top:2", body, time.Minute)
	cache.Clear()
	if _, ok := cache.Get("top:2"); ok {
		t.Error("Clear left an entry behind")
	}
}

func TestNoopCache(t *testing.T) {
	var c Cache = NoopCache{}
	_ = c.Set("k", []byte("v"), time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("NoopCache should never hit")
	}
}

func TestCacheKeyBuilder(t *testing.T) {
	key := NewCacheKeyBuilder().
		Add("top_products").
		AddList([]string{"phones", "cables"}).
		AddInt(2).
		Build()

	if key != "top_products:phones,cables:2" {
		t.Errorf("key = %q", key)
	}
}

// BenchmarkInMemoryCache_Get_HighContention teste Get avec haute contention
func BenchmarkInMemoryCache_Get_HighContention(b *testing.B) {
	cache := NewInMemoryCache()
	defer cache.Close()
	_ = cache.Set("shared_key", []byte("shared_value"), 5*time.Minute)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = cache.Get("shared_key")
		}
	})
}

// BenchmarkShardedCache_Mixed_80Read_20Write teste un mix 80% lecture / 20% écriture
func BenchmarkShardedCache_Mixed_80Read_20Write(b *testing.B) {
	cache := NewShardedCache(16)
	defer cache.Close()
	for i := 0; i < 1000; i++ {
		_ = cache.Set(fmt.Sprintf("key%d", i), []byte("value"), 5*time.Minute)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			i++
			key := fmt.Sprintf("key%d", i%1000)
			if i%5 == 0 {
				_ = cache.Set(key, []byte("value"), 5*time.Minute)
			} else {
				_, _ = cache.Get(key)
			}
		}
	})
}
