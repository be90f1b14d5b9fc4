package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relboard/pkg/buildinfo"
	"github.com/matzehuels/relboard/pkg/pipeline"
	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/release"
	"github.com/matzehuels/relboard/pkg/sink"
)

// Server timeouts. Writes are generous because a cold board may walk
// every resource through the full retry schedule before responding.
const (
	serverReadTimeout     = 10 * time.Second
	serverWriteTimeout    = 2 * time.Minute
	serverIdleTimeout     = 120 * time.Second
	serverShutdownTimeout = 10 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr string // listen address
}

// serveCommand creates the serve command: an HTTP server exposing the
// board as HTML and JSON.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the release board over HTTP",
		Long: `Serve the release board over HTTP.

Endpoints:
  GET /                              HTML board
  GET /api/v1/releases               all rows as JSON
  GET /api/v1/releases/{owner}/{repo} one row as JSON
  GET /healthz                       liveness probe

Each board request re-runs the pipeline; the shared cache collapses
repeated requests within the freshness window into cache hits, so the
server stays well under the GitHub rate limit.

Examples:
  relboard serve                     # listen on :8080
  relboard serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")

	return cmd
}

// runServe starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	co, err := c.newComponents(ctx, false)
	if err != nil {
		return err
	}
	defer co.Close()

	bs := &boardServer{co: co, logger: c.Logger}
	server := &http.Server{
		Addr:         opts.addr,
		Handler:      bs.router(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", "addr", opts.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// =============================================================================
// Board Server
// =============================================================================

// errorResponse is the standardized JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// releasesResponse is the JSON body for the releases list endpoint.
type releasesResponse struct {
	Rows     []sink.Row `json:"rows"`
	Total    int        `json:"total"`
	Resolved int        `json:"resolved"`
	Stale    int        `json:"stale"`
	Failed   int        `json:"failed"`
}

// boardServer holds the HTTP handlers for the release board. All handlers
// share one runner and one board; the cache collapses concurrent refreshes.
type boardServer struct {
	co     *components
	logger *log.Logger
}

// router builds the chi router with the standard middleware stack.
func (s *boardServer) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logging)

	r.Get("/", s.handleBoard)
	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/releases", s.handleReleases)
		r.Get("/releases/{owner}/{repo}", s.handleRelease)
	})

	return r
}

// logging attaches a request-scoped logger to the context and logs each
// request on completion.
func (s *boardServer) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		reqLogger := s.logger.With("request", middleware.GetReqID(r.Context()))

		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), reqLogger)))

		reqLogger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// refresh runs the pipeline and logs one timed line per refresh.
func (s *boardServer) refresh(ctx context.Context, resources []pipeline.Resource) pipeline.Summary {
	prog := newProgress(loggerFromContext(ctx))
	summary := s.co.Runner.Run(ctx, resources)
	prog.done(fmt.Sprintf("Refreshed %d resources", len(summary.Outcomes)))
	return summary
}

// handleBoard handles GET /: refresh the configured resources and render
// the HTML board.
func (s *boardServer) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.refresh(r.Context(), s.co.Config.Resources)

	page, err := s.co.Board.RenderHTML(sink.WithTitle(appName))
	if err != nil {
		loggerFromContext(r.Context()).Error("render board", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to render board")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// handleReleases handles GET /api/v1/releases: refresh the configured
// resources and return every row.
func (s *boardServer) handleReleases(w http.ResponseWriter, r *http.Request) {
	summary := s.refresh(r.Context(), s.co.Config.Resources)

	rows := s.co.Board.Rows()
	s.writeJSON(w, http.StatusOK, releasesResponse{
		Rows:     rows,
		Total:    len(rows),
		Resolved: summary.Resolved,
		Stale:    summary.Stale,
		Failed:   summary.Failed,
	})
}

// handleRelease handles GET /api/v1/releases/{owner}/{repo}: refresh a
// single repository and return its row. Repositories outside the
// configured set resolve with the default rule.
func (s *boardServer) handleRelease(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	res, err := s.resourceFor(owner, repo)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.refresh(r.Context(), []pipeline.Resource{res})

	row, ok := s.co.Board.Row(res.Key)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no release found for "+res.Label())
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

// handleHealthz handles GET /healthz.
func (s *boardServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// resourceFor returns the configured resource for owner/repo, or an
// ad-hoc one with the default rule.
func (s *boardServer) resourceFor(owner, repo string) (pipeline.Resource, error) {
	key := github.Key(owner, repo)
	for _, res := range s.co.Config.Resources {
		if res.Key == key {
			return res, nil
		}
	}

	res := pipeline.Resource{Owner: owner, Repo: repo, Rule: release.Rule{StripV: true}}
	if err := res.ValidateAndSetDefaults(); err != nil {
		return pipeline.Resource{}, err
	}
	return res, nil
}

// writeJSON writes a JSON response with the given status and body.
func (s *boardServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a standardized JSON error response.
func (s *boardServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
