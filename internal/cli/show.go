package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relboard/pkg/pipeline"
	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/release"
	"github.com/matzehuels/relboard/pkg/sink"
)

// showOpts holds the command-line flags for the show command.
type showOpts struct {
	jsonOut bool // print the board as a JSON snapshot
	plain   bool // disable styling, for piped output
	links   bool // append download/release links to each row
	noCache bool // disable the cache for this run
}

// showCommand creates the show command that runs the pipeline once and
// prints the resulting board.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts

	cmd := &cobra.Command{
		Use:   "show [owner/repo ...]",
		Short: "Fetch the latest releases and print the board",
		Long: `Fetch the latest releases and print the board.

Without arguments, show runs the resources from the config file (or the
built-in defaults). Passing owner/repo arguments overrides the configured
set for this run.

Results are cached locally, so repeated runs within the freshness window
make no network calls. When a repository cannot be fetched, its cached
release is shown even past expiry; a repository that was never fetched is
simply missing from the board.

Examples:
  relboard show                       # configured resources
  relboard show cli/cli golang/go     # ad-hoc repositories
  relboard show --json                # machine-readable snapshot
  relboard show --no-cache            # force live fetches`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the board as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable styled output")
	cmd.Flags().BoolVar(&opts.links, "links", false, "show download and release links")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runShow resolves the resources once and prints the board.
func (c *CLI) runShow(ctx context.Context, args []string, opts showOpts) error {
	co, err := c.newComponents(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer co.Close()

	resources := co.Config.Resources
	if len(args) > 0 {
		resources, err = resourcesFromArgs(args)
		if err != nil {
			return err
		}
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %d releases...", len(resources)))
	spinner.Start()
	summary := co.Runner.Run(ctx, resources)
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.jsonOut {
		snapshot, err := co.Board.Snapshot()
		if err != nil {
			return fmt.Errorf("encode board: %w", err)
		}
		fmt.Println(string(snapshot))
		return nil
	}

	var textOpts []sink.TextOption
	if opts.plain {
		textOpts = append(textOpts, sink.WithPlain())
	}
	if opts.links {
		textOpts = append(textOpts, sink.WithLinks())
	}

	printNewline()
	fmt.Print(co.Board.RenderText(textOpts...))
	printNewline()
	printStats(summary.Resolved, summary.Stale, summary.Failed, summary.Duration)

	if summary.Failed > 0 {
		printNewline()
		printNextStep("Details", appName+" show -v")
	}
	return nil
}

// resourcesFromArgs builds ad-hoc resources from owner/repo arguments.
// Each gets the default rule (prefer tag, strip the leading v) and the
// default bindings.
func resourcesFromArgs(args []string) ([]pipeline.Resource, error) {
	resources := make([]pipeline.Resource, 0, len(args))
	for _, arg := range args {
		owner, repo, err := github.ParseRepoRef(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		r := pipeline.Resource{Owner: owner, Repo: repo, Rule: release.Rule{StripV: true}}
		if err := r.ValidateAndSetDefaults(); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, nil
}
