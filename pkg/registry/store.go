package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/relboard/pkg/cache"
	"github.com/matzehuels/relboard/pkg/observability"
)

// Entry is the wire form of a cached payload.
type Entry struct {
	// TS is the write time in milliseconds since the Unix epoch.
	TS int64 `json:"ts"`

	// Data is the raw API payload exactly as fetched.
	Data json.RawMessage `json:"data"`
}

// Store persists timestamped payloads in a cache backend.
//
// Freshness is a read-time policy: entries are stored without expiration
// and never deleted on age. Read applies the caller's TTL against the
// stored timestamp; ReadStale ignores age entirely and exists for the
// last-resort fallback path.
//
// Malformed or structurally invalid entries (bad JSON, missing timestamp,
// null payload) degrade to a miss, never an error. They are best-effort
// removed so they don't linger in the backend.
type Store struct {
	cache cache.Cache
	now   func() time.Time
}

// NewStore creates a Store over the given cache backend.
// A nil backend disables caching (every read misses, writes are dropped).
func NewStore(backend cache.Cache) *Store {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Store{
		cache: backend,
		now:   time.Now,
	}
}

// Read returns the payload for key when the entry is younger than ttl,
// along with its write time. A ttl of 0 or less means entries never
// expire. Expired, missing, and malformed entries all return ok=false.
func (s *Store) Read(ctx context.Context, key string, ttl time.Duration) ([]byte, time.Time, bool) {
	entry, ok := s.load(ctx, key)
	if !ok {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, time.Time{}, false
	}
	writtenAt := time.UnixMilli(entry.TS)
	if ttl > 0 && s.now().Sub(writtenAt) > ttl {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, time.Time{}, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return entry.Data, writtenAt, true
}

// ReadStale returns the payload for key regardless of age, along with its
// write time. Used only as a last-resort fallback when live fetches fail;
// stale-but-present beats failure.
func (s *Store) ReadStale(ctx context.Context, key string) ([]byte, time.Time, bool) {
	entry, ok := s.load(ctx, key)
	if !ok {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, time.Time{}, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return entry.Data, time.UnixMilli(entry.TS), true
}

// Write stores payload under key, stamped with the current time.
//
// Writes are best-effort: failures are reported to the cache hooks and
// otherwise swallowed, so a rejecting backend never affects the caller.
func (s *Store) Write(ctx context.Context, key string, payload []byte) {
	if len(payload) == 0 {
		// An entry always carries a payload.
		return
	}
	data, err := json.Marshal(Entry{TS: s.now().UnixMilli(), Data: payload})
	if err != nil {
		observability.Cache().OnCacheSetError(ctx, key, err)
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		observability.Cache().OnCacheSetError(ctx, key, err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// load reads and validates the entry for key.
func (s *Store) load(ctx context.Context, key string) (*Entry, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid cache entry - drop it and treat as miss
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	if entry.TS <= 0 || len(entry.Data) == 0 || string(entry.Data) == "null" {
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &entry, true
}
