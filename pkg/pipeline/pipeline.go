// Package pipeline drives the fetch → cache → normalize → display flow.
//
// This package owns the resource list and the per-resource run loop that
// CLI commands and the HTTP server share. By centralizing this logic, all
// entry points resolve releases the same way: through the orchestrator's
// staged fallback, into the same sink.
//
// # Architecture
//
// One run walks the configured resources in order:
//
//  1. Resolve: fetch the latest-release payload through the orchestrator
//     (fresh cache, live fetch with retries, stale cache, error).
//  2. Normalize: derive the version string and primary asset URL.
//  3. Apply: route derived values to the sink per the resource bindings.
//
// Failures are isolated per resource. A resource whose fetch, decode, or
// sink write fails is logged and counted; it never affects the rows of
// sibling resources and never aborts the run.
//
// # Usage
//
// Load a config, build a runner, and execute:
//
//	cfg, err := pipeline.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	board := sink.NewBoard()
//	runner := pipeline.NewRunner(orch, fetcher, board, logger)
//	summary := runner.Run(ctx, cfg.Resources)
//
//	fmt.Printf("%d resolved, %d stale, %d failed\n",
//	    summary.Resolved, summary.Stale, summary.Failed)
package pipeline

import (
	"fmt"

	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/release"
	"github.com/matzehuels/relboard/pkg/sink"
)

// =============================================================================
// Bindings - Routing Derived Values to the Sink
// =============================================================================

// Binding kinds.
const (
	// BindText routes the normalized version string to a row's text slot.
	BindText = "text"

	// BindAssetURL routes the primary asset URL to a row attribute.
	BindAssetURL = "asset-url"
)

// ValidBindKinds is the set of supported binding kinds.
var ValidBindKinds = map[string]bool{
	BindText:     true,
	BindAssetURL: true,
}

// Binding routes one derived value to a sink target. An empty Target means
// the resource's own key; an empty Attr on an asset-url binding means
// [sink.AttrHref].
type Binding struct {
	Kind   string `toml:"kind" json:"kind"`
	Target string `toml:"target" json:"target,omitempty"`
	Attr   string `toml:"attr" json:"attr,omitempty"`
}

// =============================================================================
// Resources
// =============================================================================

// Resource is one tracked repository plus its extraction rules. The
// embedded [release.Rule] contributes the prefer and strip_v settings.
type Resource struct {
	Key   string `toml:"key" json:"key,omitempty"`
	Owner string `toml:"owner" json:"owner"`
	Repo  string `toml:"repo" json:"repo"`

	release.Rule

	Bindings []Binding `toml:"bindings" json:"bindings,omitempty"`
}

// Label is the human-readable name for the resource, "owner/repo".
func (r *Resource) Label() string {
	return r.Owner + "/" + r.Repo
}

// ValidateAndSetDefaults checks required fields and fills in the key and
// the default bindings. Idempotent.
func (r *Resource) ValidateAndSetDefaults() error {
	if r.Owner == "" || r.Repo == "" {
		return fmt.Errorf("resource needs owner and repo, got %q/%q", r.Owner, r.Repo)
	}
	if err := github.ValidateRepoRef(r.Owner, r.Repo); err != nil {
		return fmt.Errorf("resource %s: %w", r.Label(), err)
	}
	switch r.Prefer {
	case "", release.FieldTag, release.FieldName:
	default:
		return fmt.Errorf("resource %s: invalid prefer %q (must be tag or name)", r.Label(), r.Prefer)
	}

	if r.Key == "" {
		r.Key = github.Key(r.Owner, r.Repo)
	}
	if len(r.Bindings) == 0 {
		r.Bindings = []Binding{
			{Kind: BindText, Target: r.Key},
			{Kind: BindAssetURL, Target: r.Key, Attr: sink.AttrHref},
		}
	}
	for i := range r.Bindings {
		b := &r.Bindings[i]
		if b.Kind == "" {
			b.Kind = BindText
		}
		if !ValidBindKinds[b.Kind] {
			return fmt.Errorf("resource %s: invalid binding kind %q (must be text or asset-url)", r.Label(), b.Kind)
		}
		if b.Target == "" {
			b.Target = r.Key
		}
		if b.Kind == BindAssetURL && b.Attr == "" {
			b.Attr = sink.AttrHref
		}
	}
	return nil
}
