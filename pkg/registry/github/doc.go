// Package github provides an HTTP client for the GitHub releases API.
//
// # Overview
//
// This package binds the generic [registry.Client] to the latest-release
// endpoint (GET /repos/{owner}/{repo}/releases/latest). It yields the
// decoded release plus the raw response body; the raw bytes are what the
// cache stores, so cached payloads round-trip the API response byte for
// byte.
//
// # Usage
//
//	client := github.NewClient("", 0)
//
//	rel, raw, err := client.FetchLatest(ctx, "cli", "cli")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Tag:", rel.TagName)
//
// # Rate Limits
//
// Requests are unauthenticated and subject to GitHub's 60 requests/hour
// limit per client IP. A 403 or 429 response surfaces as a
// [registry.StatusError] whose RateLimited method reports true; the
// orchestrator uses that signal to stop retrying immediately and fall
// back to cached data.
//
// # Cache Keys
//
// [Key] derives the canonical cache key for a repository
// ("github:owner/repo"). Keys are stable across runs, so entries written
// by one invocation serve later ones.
package github
