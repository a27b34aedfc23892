// Package cache stores extracted rule records so that repeated uploads of
// the same exemplar document skip decoding.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a string key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Factory builds a cache from its configuration.
type Factory func(cfg Config) (Cache, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a cache backend available under name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New builds the cache named by cfg.Type. An empty type is the memory cache.
func New(cfg Config) (Cache, error) {
	if cfg.Type == "" {
		cfg.Type = TypeMemory
	}
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
	return factory(cfg)
}

// Cache types.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Config configures a cache backend.
type Config struct {
	Type string

	// Redis connection (redis only)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DefaultTTL applies when Set is given no ttl.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are purged (memory only).
	CleanupInterval time.Duration
}

// DefaultConfig returns an in-memory cache keeping entries for a day.
func DefaultConfig() Config {
	return Config{
		Type:            TypeMemory,
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// Key joins a prefix and parts into a cache key, e.g. "rules:ab12".
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// ContentKey returns a key for content addressed by its SHA-256.
func ContentKey(prefix string, data []byte) string {
	sum := sha256.Sum256(data)
	return Key(prefix, hex.EncodeToString(sum[:]))
}
