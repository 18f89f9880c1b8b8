package infrastructure

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
)

var pebbleCachePrefix = []byte("cache/")

// PebbleCache persiste les réponses encodées sur disque.
// Chaque valeur est préfixée par son expiration (unix nano, big endian).
type PebbleCache struct {
	db  *pebble.DB
	now func() time.Time
}

// NewPebbleCache ouvre (ou crée) le cache dans dir
func NewPebbleCache(dir string) (*PebbleCache, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleCache{db: db, now: time.Now}, nil
}

func pebbleKey(key string) []byte {
	return append(append([]byte(nil), pebbleCachePrefix...), key...)
}

// Get récupère une valeur non expirée
func (c *PebbleCache) Get(key string) ([]byte, bool) {
	v, closer, err := c.db.Get(pebbleKey(key))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	if len(v) < 8 {
		return nil, false
	}
	expires := time.Unix(0, int64(binary.BigEndian.Uint64(v[:8])))
	if c.now().After(expires) {
		return nil, false
	}
	return append([]byte(nil), v[8:]...), true
}

// Set écrit une valeur avec son expiration
func (c *PebbleCache) Set(key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(c.now().Add(ttl).UnixNano()))
	copy(buf[8:], value)
	return c.db.Set(pebbleKey(key), buf, pebble.NoSync)
}

// Delete supprime une entrée
func (c *PebbleCache) Delete(key string) {
	_ = c.db.Delete(pebbleKey(key), pebble.NoSync)
}

// Clear supprime toutes les entrées du cache
func (c *PebbleCache) Clear() {
	end := append([]byte(nil), pebbleCachePrefix...)
	end[len(end)-1]++
	_ = c.db.DeleteRange(pebbleCachePrefix, end, pebble.NoSync)
}

// Close ferme la base
func (c *PebbleCache) Close() error {
	return c.db.Close()
}
