package cache

import "context"

// Scoped wraps a Cache with a key prefix for namespace isolation.
// This keeps different components (or different deployments sharing one
// backend) from colliding on keys.
//
// Example usage:
//
//	// All pipeline entries under the configured prefix
//	scoped := cache.NewScoped(backend, "relboard:")
//
//	// Per-user entries on a shared backend
//	userScoped := cache.NewScoped(backend, "user:abc123:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view with a prefix.
// The prefix is prepended to all keys. If inner is nil, a NullCache is used.
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{
		inner:  inner,
		prefix: prefix,
	}
}

// Get retrieves a value under the prefixed key.
func (c *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a value under the prefixed key.
func (c *Scoped) Set(ctx context.Context, key string, data []byte) error {
	return c.inner.Set(ctx, c.prefix+key, data)
}

// Delete removes the value under the prefixed key.
func (c *Scoped) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying cache.
func (c *Scoped) Close() error {
	return c.inner.Close()
}

// Ensure Scoped implements Cache.
var _ Cache = (*Scoped)(nil)
