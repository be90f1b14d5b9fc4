package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/relboard/pkg/cache"
	"github.com/matzehuels/relboard/pkg/registry"
	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/release"
	"github.com/matzehuels/relboard/pkg/sink"
)

const releaseBody = `{
	"tag_name": "v5.3.3",
	"name": "v5.3.3",
	"html_url": "https://github.com/cli/cli/releases/tag/v5.3.3",
	"published_at": "2026-08-20T10:30:00Z",
	"assets": [
		{"name": "dist.zip", "browser_download_url": "https://downloads.example.com/dist.zip", "size": 2048}
	]
}`

func testResource(t *testing.T, owner, repo string) Resource {
	t.Helper()
	r := Resource{Owner: owner, Repo: repo, Rule: release.Rule{StripV: true}}
	if err := r.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	return r
}

// newTestRunner wires a runner against the given server with an
// in-memory cache and no backoff waits.
func newTestRunner(t *testing.T, serverURL string, s sink.Sink) (*Runner, *registry.Store) {
	t.Helper()
	store := registry.NewStore(cache.NewMemoryCache())
	orch := registry.NewOrchestrator(store, registry.Policy{TTL: time.Hour})
	fetcher := github.NewClient(serverURL, time.Second)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRunner(orch, fetcher, s, logger), store
}

func TestRunnerAppliesBindings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releaseBody))
	}))
	defer server.Close()

	board := sink.NewBoard()
	runner, _ := newTestRunner(t, server.URL, board)
	res := testResource(t, "cli", "cli")

	summary := runner.Run(context.Background(), []Resource{res})

	if summary.Resolved != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	row, ok := board.Row("github:cli/cli")
	if !ok {
		t.Fatal("board row missing")
	}
	if row.Text != "5.3.3" {
		t.Errorf("row text = %q, want 5.3.3", row.Text)
	}
	if row.Attrs[sink.AttrHref] != "https://downloads.example.com/dist.zip" {
		t.Errorf("href = %q", row.Attrs[sink.AttrHref])
	}
	if row.Attrs[sink.AttrStatus] != "live" {
		t.Errorf("status = %q, want live", row.Attrs[sink.AttrStatus])
	}
	if row.Attrs[sink.AttrLabel] != "cli/cli" {
		t.Errorf("label = %q", row.Attrs[sink.AttrLabel])
	}
	if row.Attrs[sink.AttrLink] != "https://github.com/cli/cli/releases/tag/v5.3.3" {
		t.Errorf("link = %q", row.Attrs[sink.AttrLink])
	}

	out := summary.Outcomes[0]
	if out.Version != "5.3.3" || out.AssetURL == "" || out.Status != registry.StatusLive {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRunnerCustomBindingRouting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releaseBody))
	}))
	defer server.Close()

	mem := sink.NewMemory()
	runner, _ := newTestRunner(t, server.URL, mem)

	res := Resource{
		Owner: "cli", Repo: "cli",
		Bindings: []Binding{{Kind: BindAssetURL, Target: "dl", Attr: "download"}},
	}
	if err := res.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	runner.Run(context.Background(), []Resource{res})

	if got, ok := mem.Attr("dl", "download"); !ok || got != "https://downloads.example.com/dist.zip" {
		t.Errorf("Attr(dl, download) = %q, %v", got, ok)
	}
	// No text binding was configured for the version string
	if _, ok := mem.Text("github:cli/cli"); ok {
		t.Error("version should not have been written without a text binding")
	}
}

func TestRunnerIsolatesResolveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/bad/") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(releaseBody))
	}))
	defer server.Close()

	board := sink.NewBoard()
	runner, _ := newTestRunner(t, server.URL, board)

	// The failing resource comes first and must not block the good one
	resources := []Resource{
		testResource(t, "bad", "bad"),
		testResource(t, "good", "good"),
	}

	summary := runner.Run(context.Background(), resources)

	if summary.Failed != 1 || summary.Resolved != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if !summary.Outcomes[0].Failed() || summary.Outcomes[0].Err == nil {
		t.Errorf("bad outcome = %+v", summary.Outcomes[0])
	}
	if summary.Outcomes[1].Version != "5.3.3" {
		t.Errorf("good outcome = %+v", summary.Outcomes[1])
	}

	// The failed resource has no row; the good one is untouched by it
	if _, ok := board.Row("github:bad/bad"); ok {
		t.Error("failed resource should not create a row")
	}
	if row, ok := board.Row("github:good/good"); !ok || row.Text != "5.3.3" {
		t.Errorf("good row = %+v, %v", row, ok)
	}
}

// failingSink rejects writes for one id and delegates the rest.
type failingSink struct {
	*sink.Memory
	failID string
}

func (f *failingSink) SetText(id, text string) error {
	if id == f.failID {
		return errors.New("sink rejected write")
	}
	return f.Memory.SetText(id, text)
}

func TestRunnerIsolatesSinkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releaseBody))
	}))
	defer server.Close()

	s := &failingSink{Memory: sink.NewMemory(), failID: "github:first/first"}
	runner, _ := newTestRunner(t, server.URL, s)

	resources := []Resource{
		testResource(t, "first", "first"),
		testResource(t, "second", "second"),
	}

	summary := runner.Run(context.Background(), resources)

	// A sink write failure never fails the resource
	if summary.Failed != 0 || summary.Resolved != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if got, ok := s.Text("github:second/second"); !ok || got != "5.3.3" {
		t.Errorf("sibling write = %q, %v", got, ok)
	}
}

func TestRunnerAbsentValuesAreNoOps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"","name":null,"assets":[]}`))
	}))
	defer server.Close()

	board := sink.NewBoard()
	runner, _ := newTestRunner(t, server.URL, board)
	res := testResource(t, "cli", "cli")

	summary := runner.Run(context.Background(), []Resource{res})

	// The payload resolved; only the derived values are absent
	if summary.Resolved != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	row, ok := board.Row("github:cli/cli")
	if !ok {
		t.Fatal("status row missing")
	}
	if row.Text != "" {
		t.Errorf("row text = %q, want empty (no version derived)", row.Text)
	}
	if _, ok := row.Attrs[sink.AttrHref]; ok {
		t.Error("href should not be written without assets")
	}
	if row.Attrs[sink.AttrStatus] != "live" {
		t.Errorf("status = %q", row.Attrs[sink.AttrStatus])
	}
}

func TestRunnerServesStaleOnFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	board := sink.NewBoard()
	store := registry.NewStore(cache.NewMemoryCache())
	// 1ns TTL: the seeded entry is expired by the time the run starts
	orch := registry.NewOrchestrator(store, registry.Policy{TTL: time.Nanosecond})
	fetcher := github.NewClient(server.URL, time.Second)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := NewRunner(orch, fetcher, board, logger)

	store.Write(context.Background(), "github:cli/cli", []byte(releaseBody))

	summary := runner.Run(context.Background(), []Resource{testResource(t, "cli", "cli")})

	if summary.Stale != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	row, _ := board.Row("github:cli/cli")
	if row.Text != "5.3.3" {
		t.Errorf("stale row text = %q", row.Text)
	}
	if row.Attrs[sink.AttrStatus] != "stale" {
		t.Errorf("status = %q, want stale", row.Attrs[sink.AttrStatus])
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	board := sink.NewBoard()
	runner, _ := newTestRunner(t, "http://127.0.0.1:0", board)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := runner.Run(ctx, []Resource{testResource(t, "cli", "cli")})
	if len(summary.Outcomes) != 0 {
		t.Errorf("cancelled run attempted %d resources", len(summary.Outcomes))
	}
}

func TestRunnerRunID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releaseBody))
	}))
	defer server.Close()

	runner, _ := newTestRunner(t, server.URL, sink.NewMemory())

	first := runner.Run(context.Background(), nil)
	second := runner.Run(context.Background(), nil)

	if _, err := uuid.Parse(first.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", first.RunID, err)
	}
	if first.RunID == second.RunID {
		t.Error("run ids should be unique per run")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if r.Orchestrator == nil || r.Fetcher == nil || r.Sink == nil || r.Logger == nil {
		t.Fatalf("defaults missing: %+v", r)
	}
	if r.Orchestrator.Policy().MaxRetries != registry.DefaultMaxRetries {
		t.Errorf("default policy = %+v", r.Orchestrator.Policy())
	}
	// The default sink accepts writes without error
	if err := r.Sink.SetText("x", "v"); err != nil {
		t.Errorf("default sink write: %v", err)
	}
}
