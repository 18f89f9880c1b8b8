package main

import (
	"path/filepath"
	"testing"
	"time"

	"insights/internal/config"
	"insights/internal/events"
	sharedinfra "insights/internal/shared/infrastructure"
)

func TestOpenCache(t *testing.T) {
	tests := []struct {
		backend string
		check   func(sharedinfra.Cache) bool
	}{
		{"memory", func(c sharedinfra.Cache) bool { _, ok := c.(*sharedinfra.ShardedCache); return ok }},
		{"none", func(c sharedinfra.Cache) bool { _, ok := c.(sharedinfra.NoopCache); return ok }},
		{"pebble", func(c sharedinfra.Cache) bool { _, ok := c.(*sharedinfra.PebbleCache); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cache, err := openCache(config.CacheConfig{
				Backend:   tt.backend,
				PebbleDir: filepath.Join(t.TempDir(), "cache"),
			})
			if err != nil {
				t.Fatalf("openCache(%s): %v", tt.backend, err)
			}
			defer cache.Close()
			if !tt.check(cache) {
				t.Errorf("openCache(%s) returned %T", tt.backend, cache)
			}
			if err := cache.Set("k", []byte("v"), time.Minute); err != nil {
				t.Errorf("Set: %v", err)
			}
		})
	}
}

func TestOpenPublisher(t *testing.T) {
	if _, ok := openPublisher(config.KafkaConfig{}).(events.NoopPublisher); !ok {
		t.Error("no brokers must give the noop publisher")
	}
	p := openPublisher(config.KafkaConfig{Brokers: "localhost:9092", Topic: "catalog-events"})
	defer p.Close()
	if _, ok := p.(*events.KafkaPublisher); !ok {
		t.Errorf("brokers configured, got %T", p)
	}
}
