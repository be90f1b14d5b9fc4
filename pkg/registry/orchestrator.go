package registry

import (
	"context"
	"time"

	"github.com/matzehuels/relboard/pkg/observability"
)

// Resolution policy defaults.
const (
	// DefaultTTL is how long a cached payload counts as fresh.
	DefaultTTL = 6 * time.Hour

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultBackoffBase is the wait after the first failed attempt.
	DefaultBackoffBase = 400 * time.Millisecond

	// DefaultBackoffStep is the additional wait per failed attempt.
	DefaultBackoffStep = 500 * time.Millisecond
)

// Policy bundles the tunables for resolving one resource: freshness
// window, retry budget, and backoff curve.
type Policy struct {
	// TTL is the maximum age at which a cached entry is returned without
	// a network call. 0 or less means cached entries never expire.
	TTL time.Duration

	// MaxRetries is the number of retries after the first attempt, so a
	// resolution performs at most 1+MaxRetries fetches.
	MaxRetries int

	// BackoffBase and BackoffStep shape the wait between attempts: the
	// wait after failed attempt i (0-based) is BackoffBase + i*BackoffStep.
	BackoffBase time.Duration
	BackoffStep time.Duration
}

// DefaultPolicy returns the default resolution policy.
func DefaultPolicy() Policy {
	return Policy{
		TTL:         DefaultTTL,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
		BackoffStep: DefaultBackoffStep,
	}
}

// FetchFunc performs one live fetch attempt and returns the raw payload.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Status describes where a resolved payload came from.
type Status string

// Resolution statuses.
const (
	StatusFresh Status = "fresh" // cache entry within TTL, no network call
	StatusLive  Status = "live"  // fetched from the API during this resolution
	StatusStale Status = "stale" // expired cache entry served after fetch failure
)

// Result is a resolved payload together with its provenance.
type Result struct {
	// Payload is the raw API response.
	Payload []byte

	// Status records which stage produced the payload.
	Status Status

	// FetchedAt is when the payload was originally fetched from the API.
	FetchedAt time.Time

	// Attempts is the number of live fetches performed (0 on a fresh hit).
	Attempts int
}

// Stale reports whether the payload came from the stale fallback path.
func (r *Result) Stale() bool { return r.Status == StatusStale }

// Orchestrator resolves resources through staged fallback: fresh cache,
// live fetch with bounded retries, then stale cache of any age. The
// staging maximizes availability against a rate-limited, occasionally
// slow upstream while bounding worst-case latency and request volume.
//
// An Orchestrator holds no per-resolution state and is safe for
// concurrent use; concurrent resolutions of distinct keys never conflict.
type Orchestrator struct {
	store  *Store
	policy Policy

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an Orchestrator over the given store.
// A nil store disables caching entirely.
func NewOrchestrator(store *Store, policy Policy) *Orchestrator {
	if store == nil {
		store = NewStore(nil)
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &Orchestrator{
		store:  store,
		policy: policy,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Policy returns the resolution policy.
func (o *Orchestrator) Policy() Policy { return o.policy }

// Resolve returns the payload for key, preferring the freshest available
// source: fresh cache, then live fetch, then stale cache. Only when
// nothing is cached at any age does it fail, with the last fetch error.
//
// Rate-limited attempts (HTTP 403 or 429) abort the retry loop
// immediately. The stale fallback still applies after the abort, even
// when the rate limit hit the very first attempt.
func (o *Orchestrator) Resolve(ctx context.Context, key string, fetch FetchFunc) (*Result, error) {
	observability.Pipeline().OnResolveStart(ctx, key)
	start := o.now()

	result, attempts, err := o.resolve(ctx, key, fetch)

	status := "error"
	if result != nil {
		status = string(result.Status)
	}
	observability.Pipeline().OnResolveComplete(ctx, key, status, attempts, o.now().Sub(start), err)
	return result, err
}

func (o *Orchestrator) resolve(ctx context.Context, key string, fetch FetchFunc) (*Result, int, error) {
	// Stage 1: fresh cache.
	if payload, writtenAt, ok := o.store.Read(ctx, key, o.policy.TTL); ok {
		return &Result{Payload: payload, Status: StatusFresh, FetchedAt: writtenAt}, 0, nil
	}

	// Stage 2: live fetch with bounded retries.
	attempts := 1 + o.policy.MaxRetries
	made := 0
	var lastErr error
	for i := 0; i < attempts; i++ {
		payload, err := fetch(ctx)
		made = i + 1
		if err == nil {
			o.store.Write(ctx, key, payload)
			return &Result{Payload: payload, Status: StatusLive, FetchedAt: o.now(), Attempts: made}, made, nil
		}
		lastErr = err

		// 403 and 429 mean the API will keep refusing; stop burning attempts.
		if IsRateLimit(err) {
			break
		}
		if i < attempts-1 {
			if err := o.sleep(ctx, o.backoff(i)); err != nil {
				return nil, made, err
			}
		}
	}

	// Stage 3: stale cache, any age. Stale-but-present beats failure.
	if payload, writtenAt, ok := o.store.ReadStale(ctx, key); ok {
		return &Result{Payload: payload, Status: StatusStale, FetchedAt: writtenAt, Attempts: made}, made, nil
	}

	// Stage 4: nothing cached, surface the failure.
	if lastErr == nil {
		lastErr = ErrUnknown
	}
	return nil, made, lastErr
}

// backoff returns the wait after failed attempt i (0-based).
// The delay is monotonically non-decreasing: base, base+step, base+2*step.
func (o *Orchestrator) backoff(i int) time.Duration {
	return o.policy.BackoffBase + time.Duration(i)*o.policy.BackoffStep
}

// sleepCtx waits for d, honoring context cancellation during the wait.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
