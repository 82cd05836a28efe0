// Package cache stores external lookup results (reference searches) in memory
// and on disk. Corpus documents are never cached here.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/savoir/internal/model"
)

const keyPrefix = "savoir:v1:"

// Cache stores opaque values by key. A zero ttl uses the store default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Clear() error
}

// Key builds a stable cache key from its parts
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// GetJSON decodes a cached JSON value into v
func GetJSON(c Cache, key string, v any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON stores v as JSON
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}

// New builds the cache described by cfg. Disabled caching yields a Nop cache.
func New(cfg model.CacheConfig, dataDir string) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	return NewLayered(cfg.MemoryTTL, Dir(cfg, dataDir), cfg.DiskTTL)
}

// Dir returns the disk cache directory, <dataDir>/data/cache unless configured
func Dir(cfg model.CacheConfig, dataDir string) string {
	if cfg.Dir != "" {
		return cfg.Dir
	}
	return filepath.Join(dataDir, "data", "cache")
}

// Nop is a cache that stores nothing
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Clear() error { return nil }
