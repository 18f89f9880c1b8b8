package application

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"insights/internal/metrics"
	sharedinfra "insights/internal/shared/infrastructure"
)

// ResponseCache conserve les réponses encodées des agrégations.
// Les erreurs ne sont jamais mises en cache.
type ResponseCache struct {
	cache   sharedinfra.Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewResponseCache crée un cache de réponses; un TTL nul désactive le cache
func NewResponseCache(cache sharedinfra.Cache, ttl time.Duration, logger *zap.Logger, reg *metrics.Registry) *ResponseCache {
	if ttl <= 0 {
		cache = sharedinfra.NoopCache{}
	}
	return &ResponseCache{cache: cache, ttl: ttl, logger: logger, metrics: reg}
}

// Fetch retourne la réponse encodée sous key, ou la calcule avec compute,
// l'encode en JSON et la stocke
func (c *ResponseCache) Fetch(key string, compute func() (any, error)) ([]byte, error) {
	if body, ok := c.cache.Get(key); ok {
		c.metrics.CacheHits.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.CacheHits.WithLabelValues("miss").Inc()

	value, err := compute()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	if err := c.cache.Set(key, body, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return body, nil
}

// Invalidate vide le cache après une écriture sur le catalogue
func (c *ResponseCache) Invalidate() {
	c.cache.Clear()
}

// Key construit une clé de cache à partir d'un nom d'agrégation et de ses paramètres
func Key(name string, params ...string) string {
	b := sharedinfra.NewCacheKeyBuilder().Add("analytics").Add(name)
	for _, p := range params {
		b.Add(p)
	}
	return b.Build()
}
