package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/relboard/pkg/observability"
	"github.com/matzehuels/relboard/pkg/registry"
	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/release"
	"github.com/matzehuels/relboard/pkg/sink"
)

// Runner executes pipeline runs against a shared orchestrator and sink.
//
// The Runner is stateless apart from its collaborators - it stores no run
// results. Multiple goroutines can safely share one Runner, and the CLI,
// the watch loop, and the HTTP server all drive the same instance.
type Runner struct {
	Orchestrator *registry.Orchestrator
	Fetcher      *github.Client
	Sink         sink.Sink
	Logger       *log.Logger
}

// NewRunner creates a runner. Nil collaborators take defaults: an
// uncached orchestrator with the default policy, the public GitHub API,
// a discarding sink, and the default logger.
func NewRunner(orch *registry.Orchestrator, fetcher *github.Client, s sink.Sink, logger *log.Logger) *Runner {
	if orch == nil {
		orch = registry.NewOrchestrator(nil, registry.DefaultPolicy())
	}
	if fetcher == nil {
		fetcher = github.NewClient("", 0)
	}
	if s == nil {
		s = (*sink.Board)(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Orchestrator: orch,
		Fetcher:      fetcher,
		Sink:         s,
		Logger:       logger,
	}
}

// Outcome records how one resource resolved.
type Outcome struct {
	Key      string          `json:"key"`
	Status   registry.Status `json:"status,omitempty"`
	Version  string          `json:"version,omitempty"`
	AssetURL string          `json:"asset_url,omitempty"`
	Attempts int             `json:"attempts"`
	Err      error           `json:"-"`
}

// Failed reports whether the resource produced no payload at all.
func (o *Outcome) Failed() bool { return o.Err != nil }

// Summary aggregates one pipeline run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Resolved int           `json:"resolved"`
	Stale    int           `json:"stale"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
	Outcomes []Outcome     `json:"outcomes"`
}

// Run resolves every resource in order and applies its bindings to the
// sink. Failures are isolated per resource: a failed resource is logged,
// counted in the summary, and skipped, leaving sibling rows untouched.
//
// Run stops early only when ctx is cancelled; resources not attempted by
// then are absent from the summary.
func (r *Runner) Run(ctx context.Context, resources []Resource) Summary {
	start := time.Now()
	summary := Summary{
		RunID:    uuid.NewString(),
		Outcomes: make([]Outcome, 0, len(resources)),
	}

	logger := r.Logger.With("run", summary.RunID[:8])
	observability.Pipeline().OnRunStart(ctx, summary.RunID, len(resources))
	logger.Debug("run started", "resources", len(resources))

	for i := range resources {
		if ctx.Err() != nil {
			logger.Warn("run cancelled", "remaining", len(resources)-i)
			break
		}

		outcome := r.runOne(ctx, logger, &resources[i])
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch {
		case outcome.Failed():
			summary.Failed++
		case outcome.Status == registry.StatusStale:
			summary.Stale++
		default:
			summary.Resolved++
		}
	}

	summary.Duration = time.Since(start)
	observability.Pipeline().OnRunComplete(ctx, summary.RunID, summary.Resolved, summary.Stale, summary.Failed, summary.Duration)
	logger.Debug("run complete",
		"resolved", summary.Resolved,
		"stale", summary.Stale,
		"failed", summary.Failed,
		"duration", summary.Duration)

	return summary
}

// runOne resolves a single resource and routes its derived values.
// It never returns an error; failures land in the outcome.
func (r *Runner) runOne(ctx context.Context, logger *log.Logger, res *Resource) Outcome {
	key := res.Key
	if key == "" {
		key = github.Key(res.Owner, res.Repo)
	}
	outcome := Outcome{Key: key}

	result, err := r.Orchestrator.Resolve(ctx, key, func(ctx context.Context) ([]byte, error) {
		_, raw, err := r.Fetcher.FetchLatest(ctx, res.Owner, res.Repo)
		return raw, err
	})
	if err != nil {
		outcome.Err = err
		logger.Error("resolve failed", "resource", res.Label(), "error", err)
		return outcome
	}
	outcome.Status = result.Status
	outcome.Attempts = result.Attempts

	var rel release.Release
	if err := json.Unmarshal(result.Payload, &rel); err != nil {
		outcome.Err = fmt.Errorf("decode release payload: %w", err)
		logger.Error("resolve failed", "resource", res.Label(), "error", outcome.Err)
		return outcome
	}

	version, versionOK := release.Version(&rel, res.Rule)
	assetURL, assetOK := release.PrimaryAssetURL(&rel)
	if versionOK {
		outcome.Version = version
	}
	if assetOK {
		outcome.AssetURL = assetURL
	}

	for _, b := range res.Bindings {
		switch b.Kind {
		case BindText:
			if !versionOK {
				continue
			}
			r.write(logger, res, b.Target, "", version)
		case BindAssetURL:
			if !assetOK {
				continue
			}
			r.write(logger, res, b.Target, b.Attr, assetURL)
		}
	}
	r.decorate(logger, res, key, &rel, result)

	if result.Stale() {
		logger.Warn("serving stale data",
			"resource", res.Label(),
			"version", outcome.Version,
			"age", time.Since(result.FetchedAt).Round(time.Second),
			"attempts", result.Attempts)
	} else {
		logger.Debug("resolved release",
			"resource", res.Label(),
			"version", outcome.Version,
			"status", result.Status)
	}
	return outcome
}

// write pushes one value into the sink. An empty attr means the text
// slot. Sink failures are logged and swallowed so one bad target cannot
// disturb sibling rows.
func (r *Runner) write(logger *log.Logger, res *Resource, target, attr, value string) {
	var err error
	if attr == "" {
		err = r.Sink.SetText(target, value)
	} else {
		err = r.Sink.SetAttr(target, attr, value)
	}
	if err != nil {
		logger.Warn("sink write failed", "resource", res.Label(), "target", target, "error", err)
	}
}

// decorate adds the display attributes the board renders beyond the
// bound values themselves.
func (r *Runner) decorate(logger *log.Logger, res *Resource, key string, rel *release.Release, result *registry.Result) {
	r.write(logger, res, key, sink.AttrLabel, res.Label())
	r.write(logger, res, key, sink.AttrStatus, string(result.Status))
	if rel.HTMLURL != "" {
		r.write(logger, res, key, sink.AttrLink, rel.HTMLURL)
	}
	if rel.PublishedAt != nil {
		r.write(logger, res, key, sink.AttrPublished, rel.PublishedAt.Format(time.RFC3339))
	}
	if rel.Prerelease {
		r.write(logger, res, key, sink.AttrPrerelease, "true")
	} else {
		r.write(logger, res, key, sink.AttrPrerelease, "false")
	}
}
