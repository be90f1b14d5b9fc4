// Package cache provides byte-level caching backends for registry payloads.
//
// This package defines the Cache interface over opaque byte blobs, with
// implementations for different backends:
//   - file: File-based storage for CLI usage
//   - memory: In-memory storage for development/testing
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage for shared deployments
//   - null: No-op storage that disables caching
//
// Backends store entries without expiration. Freshness is a read-time policy
// applied by callers, so an old entry stays readable until it is overwritten
// or deleted. This is what allows stale reads to serve as a fallback when a
// registry is unreachable.
//
// Use [NewScoped] to namespace keys when several components share a backend:
//
//	scoped := cache.NewScoped(backend, "relboard:")
//	scoped.Set(ctx, "github:cli/cli", data) // stored as "relboard:github:cli/cli"
package cache

import "context"

// Cache is the interface for byte-level cache backends.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns the data and true on a hit, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache, overwriting any existing entry.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes a value from the cache.
	// Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a cache backend.
type Config struct {
	// Backend is one of "file", "memory", "redis", "mongo", "none".
	Backend string

	// Dir is the root directory for the file backend.
	// Empty uses the default cache directory.
	Dir string

	// RedisURL is the connection URL for the redis backend.
	RedisURL string

	// MongoURI is the connection URI for the mongo backend.
	MongoURI string
}

// Open creates the cache backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileCache(cfg.Dir)
	case "memory":
		return NewMemoryCache(), nil
	case "redis":
		return NewRedisCache(ctx, cfg.RedisURL)
	case "mongo":
		return NewMongoCache(ctx, cfg.MongoURI)
	case "none":
		return NewNullCache(), nil
	default:
		return nil, ErrUnknownBackend
	}
}
