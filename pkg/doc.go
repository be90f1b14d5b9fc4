// Package pkg provides the core libraries for the relboard release board.
//
// # Overview
//
// Relboard tracks the latest published release of a set of repositories and
// keeps showing the last known answer when the network does not cooperate.
// The pkg directory is organized into five areas:
//
//  1. [registry] - Fetching release payloads with retries and staged cache fallback
//  2. [cache] - Byte-level cache backends (file, memory, Redis, MongoDB)
//  3. [release] - The release model and version normalization rules
//  4. [sink] - The display board and its terminal/HTML renderers
//  5. [pipeline] - Orchestration (config, resource list, run loop)
//
// # Architecture
//
// The typical data flow through relboard:
//
//	GitHub releases API
//	         ↓
//	    [registry] package (fetch + retry + cache fallback)
//	         ↓
//	    [release] package (version + asset normalization)
//	         ↓
//	    [sink] package (board rows + rendering)
//	         ↓
//	    terminal / TUI / HTML / JSON output
//
// # Quick Start
//
// Resolve the configured resources once and render the board:
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/matzehuels/relboard/pkg/pipeline"
//	    "github.com/matzehuels/relboard/pkg/sink"
//	)
//
//	cfg, _ := pipeline.LoadConfig("")
//	board := sink.NewBoard()
//	runner := pipeline.NewRunner(nil, nil, board, nil)
//
//	summary := runner.Run(context.Background(), cfg.Resources)
//	fmt.Print(board.RenderText())
//	fmt.Printf("%d resolved, %d stale, %d failed\n",
//	    summary.Resolved, summary.Stale, summary.Failed)
//
// # Main Packages
//
// [registry] - The resolution core: a bounded HTTP client with typed errors,
// a cache store with freshness tracking, and the orchestrator that walks the
// staged fallback (fresh cache → live fetch with retries → stale cache).
//
// [registry/github] - Binds the generic client to the GitHub releases API
// and validates owner/repo references.
//
// [cache] - Cache backends behind one small interface over opaque bytes.
// FileCache for the CLI (filesystem), RedisCache and MongoCache for shared
// deployments, MemoryCache for tests, NullCache to disable caching.
//
// [release] - The release payload model plus the normalization rules that
// derive a display version (preferred field, fallbacks, v-stripping) and a
// primary download link.
//
// [sink] - The board: named rows with a text slot and attributes, safe for
// concurrent writers, rendered to styled terminal text or a standalone HTML
// page.
//
// [pipeline] - Ties it together: TOML config, the resource list with its
// sink bindings, and the run loop with per-resource failure isolation. Used
// by the CLI, the watch TUI, and the HTTP server so all entry points resolve
// releases the same way.
//
// [observability] - Optional process-wide hooks on pipeline, cache, and HTTP
// events, for embedders that want metrics without relboard choosing a
// metrics stack.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/registry/...           # Specific package
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [registry]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/registry
// [registry/github]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/registry/github
// [cache]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/cache
// [release]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/release
// [sink]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/relboard/pkg/buildinfo
package pkg
