package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relboard/pkg/pipeline"
	"github.com/matzehuels/relboard/pkg/sink"
)

// =============================================================================
// Watch Command
// =============================================================================

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	interval time.Duration // time between refreshes
	noCache  bool          // disable the cache for this run
}

// watchCommand creates the watch command: a live board that re-runs the
// pipeline on an interval.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch [owner/repo ...]",
		Short: "Live release board that refreshes on an interval",
		Long: `Live release board that refreshes on an interval.

Watch keeps a full-screen board of the configured resources and re-runs
the pipeline every interval. Rows update in place; a repository that
temporarily cannot be fetched keeps showing its last known release.

Keys:
  r        refresh now
  q        quit

Examples:
  relboard watch                      # configured resources, 5m interval
  relboard watch --interval 30s       # faster refresh
  relboard watch cli/cli golang/go    # ad-hoc repositories`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", 5*time.Minute, "refresh interval")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runWatch wires the components and hands control to the bubbletea program
// until the user quits or the context is cancelled.
func (c *CLI) runWatch(ctx context.Context, args []string, opts watchOpts) error {
	if opts.interval < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %s", opts.interval)
	}

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

	m := NewWatchModel(ctx, co.Board, opts.interval, func(ctx context.Context) pipeline.Summary {
		return co.Runner.Run(ctx, resources)
	})

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// =============================================================================
// WatchModel - Live release board
// =============================================================================

// Messages driving the watch loop.
type (
	// refreshTickMsg fires when the interval elapses and a refresh is due.
	refreshTickMsg time.Time

	// frameTickMsg advances the spinner while a refresh is in flight.
	frameTickMsg time.Time

	// refreshDoneMsg carries the summary of a completed pipeline run.
	refreshDoneMsg struct {
		Summary pipeline.Summary
	}
)

// WatchModel is the bubbletea model for the live release board. The board
// itself is the shared sink the runner writes into; the model only reads it
// when rendering, so refreshes can run off the UI goroutine.
type WatchModel struct {
	Board    *sink.Board
	Interval time.Duration

	// run executes one pipeline pass. Injected so tests can drive the
	// model without network or cache.
	run func(ctx context.Context) pipeline.Summary

	ctx        context.Context
	refreshing bool
	frame      int
	lastRun    *pipeline.Summary
	updatedAt  time.Time
	width      int
	height     int
}

// NewWatchModel creates a watch model that refreshes via run every
// interval. The model starts in the refreshing state; Init dispatches
// the first refresh.
func NewWatchModel(ctx context.Context, board *sink.Board, interval time.Duration, run func(ctx context.Context) pipeline.Summary) WatchModel {
	return WatchModel{
		Board:      board,
		Interval:   interval,
		run:        run,
		ctx:        ctx,
		refreshing: true,
	}
}

// Init kicks off the first refresh immediately.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.frameCmd())
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if !m.refreshing {
				m.refreshing = true
				return m, tea.Batch(m.refreshCmd(), m.frameCmd())
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case refreshTickMsg:
		if !m.refreshing {
			m.refreshing = true
			return m, tea.Batch(m.refreshCmd(), m.frameCmd())
		}
	case frameTickMsg:
		if m.refreshing {
			m.frame++
			return m, m.frameCmd()
		}
	case refreshDoneMsg:
		m.refreshing = false
		m.lastRun = &msg.Summary
		m.updatedAt = time.Now()
		return m, m.intervalCmd()
	}
	return m, nil
}

// refreshCmd runs one pipeline pass off the UI goroutine. The model's
// refreshing flag is set by the caller before dispatch.
func (m WatchModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{Summary: m.run(m.ctx)}
	}
}

// intervalCmd schedules the next periodic refresh.
func (m WatchModel) intervalCmd() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// frameCmd schedules the next spinner frame. Frames only reschedule while
// a refresh is in flight, so an idle board costs nothing.
func (m WatchModel) frameCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(StyleTitle.Render("Release Board"))
	b.WriteString("\n  ")
	b.WriteString(StyleDim.Render("r refresh  q quit"))
	b.WriteString("\n\n")

	rows := m.Board.Rows()
	if len(rows) == 0 {
		b.WriteString("  ")
		if m.refreshing {
			b.WriteString(StyleDim.Render("Waiting for first refresh..."))
		} else {
			b.WriteString(StyleDim.Render("No releases yet"))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTable(rows))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(m.footer())
	b.WriteString("\n")

	return b.String()
}

// renderTable renders the board rows as a bordered table with the status
// column colored by freshness.
func (m WatchModel) renderTable(rows []sink.Row) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	cells := make([][]string, 0, len(rows))
	statuses := make([]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			row.Label(),
			row.Version(),
			row.Attrs[sink.AttrStatus],
			row.PublishedDate(),
		})
		statuses = append(statuses, row.Attrs[sink.AttrStatus])
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Repository", "Version", "Status", "Published").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorWhite)
			case 1:
				return base.Foreground(colorCyan)
			case 2:
				if row < len(statuses) {
					return base.Foreground(statusColor(statuses[row]))
				}
				return base.Foreground(colorDim)
			default:
				return base.Foreground(colorGray)
			}
		})

	return t.Render()
}

// footer renders the activity line: the spinner while refreshing, the
// last-run stats otherwise.
func (m WatchModel) footer() string {
	if m.refreshing {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		return styleIconSpinner.Render(frame) + " " + StyleDim.Render("Refreshing...")
	}
	if m.lastRun == nil {
		return ""
	}

	parts := []string{StyleDim.Render(fmt.Sprintf("%d resolved", m.lastRun.Resolved))}
	if m.lastRun.Stale > 0 {
		parts = append(parts, styleStale.Render(fmt.Sprintf("%d stale", m.lastRun.Stale)))
	}
	if m.lastRun.Failed > 0 {
		parts = append(parts, styleFailed.Render(fmt.Sprintf("%d failed", m.lastRun.Failed)))
	}
	parts = append(parts, StyleDim.Render("updated "+m.updatedAt.Format("15:04:05")))
	parts = append(parts, StyleDim.Render("every "+m.Interval.String()))

	return strings.Join(parts, StyleDim.Render(" · "))
}

// statusColor maps a freshness status to its display color.
func statusColor(status string) lipgloss.Color {
	switch status {
	case "fresh":
		return colorGreen
	case "live":
		return colorCyan
	case "stale":
		return colorYellow
	default:
		return colorDim
	}
}
