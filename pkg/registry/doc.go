// Package registry implements the resilient fetch-and-cache pipeline for
// release metadata.
//
// # Overview
//
// Fetching "latest release" data from a public API has to survive slow
// responses, transient failures, and rate limiting. This package layers
// three pieces to do that:
//
//   - [Client]: one time-bounded HTTP GET per call, with typed error
//     classification ([TimeoutError], [StatusError], [DecodeError]).
//   - [Store]: timestamped payloads in a [cache.Cache] backend. Freshness
//     is a read-time policy; entries are never deleted on age, which makes
//     stale reads possible.
//   - [Orchestrator]: staged fallback. Fresh cache first, then live fetch
//     with bounded retries and backoff, then stale cache of any age, and
//     only then an error.
//
// # Usage
//
//	backend, _ := cache.NewFileCache("")
//	store := registry.NewStore(cache.NewScoped(backend, "relboard:"))
//	orch := registry.NewOrchestrator(store, registry.Policy{
//	    TTL:         registry.DefaultTTL,
//	    MaxRetries:  registry.DefaultMaxRetries,
//	    BackoffBase: registry.DefaultBackoffBase,
//	    BackoffStep: registry.DefaultBackoffStep,
//	})
//
//	client := github.NewClient("", registry.DefaultTimeout)
//	result, err := orch.Resolve(ctx, github.Key("cli", "cli"), func(ctx context.Context) ([]byte, error) {
//	    _, raw, err := client.FetchLatest(ctx, "cli", "cli")
//	    return raw, err
//	})
//
// # Retry Behavior
//
// A resolution performs at most 1+MaxRetries fetch attempts. The wait
// after failed attempt i is BackoffBase + i*BackoffStep (with the
// defaults: 400ms, then 900ms). Attempts that fail with HTTP 403 or 429
// abort the loop immediately: the API is refusing, and more attempts
// would only burn quota. All other failures (timeouts, other statuses,
// decode errors) are retried until the budget runs out.
//
// # Cache Wire Format
//
// Entries are stored as JSON envelopes:
//
//	{ "ts": 1735689600000, "data": { ...raw API payload... } }
//
// where ts is the write time in milliseconds since the Unix epoch. The
// data field holds the response bytes exactly as fetched. Envelopes that
// fail to parse, or that lack a timestamp or payload, are treated as
// cache misses and dropped.
//
// [cache.Cache]: github.com/matzehuels/relboard/pkg/cache.Cache
package registry
