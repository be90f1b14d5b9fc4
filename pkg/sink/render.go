package sink

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")) // bright white
	styleVersion = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))  // teal
	styleFresh   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))  // green
	styleLive    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))  // teal
	styleStale   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // amber
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // dim gray
	styleURL     = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true)
)

// TextOption configures terminal rendering via [Board.RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	plain bool
	links bool
}

// WithPlain disables all styling, for piped or logged output.
func WithPlain() TextOption { return func(r *textRenderer) { r.plain = true } }

// WithLinks appends the download or release link to each row.
func WithLinks() TextOption { return func(r *textRenderer) { r.links = true } }

// RenderText renders the board as an aligned terminal table, one row per
// line in first-write order. Rows without a version show a dash.
func (b *Board) RenderText(opts ...TextOption) string {
	r := textRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	rows := b.Rows()
	if len(rows) == 0 {
		return ""
	}

	type line struct {
		label, version, status, published, link string
	}

	lines := make([]line, 0, len(rows))
	labelW, versionW, statusW := 0, 0, 0
	for _, row := range rows {
		l := line{
			label:     row.Label(),
			version:   row.Version(),
			status:    row.Attrs[AttrStatus],
			published: row.PublishedDate(),
		}
		if r.links {
			l.link = row.Link()
		}
		labelW = max(labelW, lipgloss.Width(l.label))
		versionW = max(versionW, lipgloss.Width(l.version))
		statusW = max(statusW, lipgloss.Width(l.status))
		lines = append(lines, l)
	}

	var buf strings.Builder
	for _, l := range lines {
		label := pad(l.label, labelW)
		version := pad(l.version, versionW)
		status := pad(l.status, statusW)

		if !r.plain {
			label = styleLabel.Render(label)
			version = styleVersion.Render(version)
			status = statusStyle(l.status).Render(status)
		}

		buf.WriteString("  " + label + "  " + version)
		if statusW > 0 {
			buf.WriteString("  " + status)
		}
		if l.published != "" {
			if r.plain {
				buf.WriteString("  " + l.published)
			} else {
				buf.WriteString("  " + styleDim.Render(l.published))
			}
		}
		if l.link != "" {
			if r.plain {
				buf.WriteString("  " + l.link)
			} else {
				buf.WriteString("  " + styleURL.Render(l.link))
			}
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "fresh":
		return styleFresh
	case "live":
		return styleLive
	case "stale":
		return styleStale
	default:
		return styleDim
	}
}

func pad(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

// HTMLOption configures HTML rendering via [Board.RenderHTML].
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title string
}

// WithTitle sets the page title. Defaults to "relboard".
func WithTitle(title string) HTMLOption { return func(r *htmlRenderer) { r.title = title } }

type htmlData struct {
	Title string
	Rows  []htmlRow
}

type htmlRow struct {
	Label      string
	Version    string
	Status     string
	Published  string
	Link       string
	Href       string
	Prerelease bool
}

var boardTmpl = template.Must(template.New("board").Parse(boardHTML))

// RenderHTML renders the board as a standalone HTML page. All row values
// pass through html/template escaping.
func (b *Board) RenderHTML(opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: "relboard"}
	for _, opt := range opts {
		opt(&r)
	}

	rows := b.Rows()
	data := htmlData{Title: r.title, Rows: make([]htmlRow, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, htmlRow{
			Label:      row.Label(),
			Version:    row.Text,
			Status:     row.Attrs[AttrStatus],
			Published:  row.PublishedDate(),
			Link:       row.Attrs[AttrLink],
			Href:       row.Attrs[AttrHref],
			Prerelease: row.Attrs[AttrPrerelease] == "true",
		})
	}

	var buf bytes.Buffer
	if err := boardTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render board: %w", err)
	}
	return buf.Bytes(), nil
}

const boardHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; margin: 2rem auto; max-width: 44rem; padding: 0 1rem; color: #24292f; }
  h1 { font-size: 1.15rem; font-weight: 600; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 0.4rem 1rem 0.4rem 0; border-bottom: 1px solid #eaeef2; }
  th { color: #6e7781; font-weight: normal; font-size: 0.85rem; }
  a { color: #0969da; text-decoration: none; }
  a:hover { text-decoration: underline; }
  .status { color: #6e7781; }
  .status.fresh { color: #1a7f37; }
  .status.live { color: #0969da; }
  .status.stale { color: #9a6700; }
  .pre { color: #6e7781; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr><th>resource</th><th>version</th><th>status</th><th>published</th></tr>
{{range .Rows}}<tr>
<td>{{if .Link}}<a href="{{.Link}}">{{.Label}}</a>{{else}}{{.Label}}{{end}}</td>
<td>{{if .Href}}<a href="{{.Href}}">{{.Version}}</a>{{else}}{{.Version}}{{end}}{{if .Prerelease}} <span class="pre">pre</span>{{end}}</td>
<td class="status {{.Status}}">{{.Status}}</td>
<td>{{.Published}}</td>
</tr>
{{end}}</table>
</body>
</html>
`
