package sink

import (
	"encoding/json"
	"sync"
	"time"
)

// Well-known attribute names the board renderers understand. Rows may
// carry arbitrary additional attributes; these are the ones given visual
// treatment.
const (
	// AttrLabel is the display name for a row. Falls back to the row id.
	AttrLabel = "label"

	// AttrHref is the primary download link for the release.
	AttrHref = "href"

	// AttrLink is the release page URL.
	AttrLink = "link"

	// AttrStatus records how the value was obtained: fresh, live, or stale.
	AttrStatus = "status"

	// AttrPublished is the release publish timestamp, RFC 3339.
	AttrPublished = "published"

	// AttrPrerelease is "true" when the release is marked as a pre-release.
	AttrPrerelease = "prerelease"
)

// Row is one entry on the board: a text slot plus named attributes.
type Row struct {
	ID    string            `json:"id"`
	Text  string            `json:"text,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Label returns the display name for the row, falling back to the id.
func (r Row) Label() string {
	if label := r.Attrs[AttrLabel]; label != "" {
		return label
	}
	return r.ID
}

// Version returns the display version: the text slot with a pre-release
// marker, or a dash when no version was written.
func (r Row) Version() string {
	if r.Text == "" {
		return "-"
	}
	if r.Attrs[AttrPrerelease] == "true" {
		return r.Text + " (pre)"
	}
	return r.Text
}

// Link returns the row's primary link: the download URL when present,
// otherwise the release page.
func (r Row) Link() string {
	if href := r.Attrs[AttrHref]; href != "" {
		return href
	}
	return r.Attrs[AttrLink]
}

// PublishedDate returns the published attribute trimmed to its date.
// Values that do not parse as RFC 3339 are returned as-is.
func (r Row) PublishedDate() string {
	v := r.Attrs[AttrPublished]
	if v == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Format("2006-01-02")
	}
	return v
}

// Board is the real presentation sink: a keyed set of rows that can be
// rendered as a terminal table, an HTML page, or a JSON snapshot.
//
// Rows are created on first write and keep their first-write order.
// All methods are safe for concurrent use, and all writes to a nil
// board are no-ops.
type Board struct {
	mu    sync.RWMutex
	rows  map[string]*Row
	order []string
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{rows: make(map[string]*Row)}
}

// SetText sets the text slot of the row identified by id, creating the
// row if needed.
func (b *Board) SetText(id, text string) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.row(id).Text = text
	return nil
}

// SetAttr sets a named attribute on the row identified by id, creating
// the row if needed.
func (b *Board) SetAttr(id, attr, value string) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	row := b.row(id)
	if row.Attrs == nil {
		row.Attrs = make(map[string]string)
	}
	row.Attrs[attr] = value
	return nil
}

// row returns the row for id, creating it in place. Callers hold b.mu.
func (b *Board) row(id string) *Row {
	if r, ok := b.rows[id]; ok {
		return r
	}
	r := &Row{ID: id}
	b.rows[id] = r
	b.order = append(b.order, id)
	return r
}

// Rows returns a copy of all rows in first-write order.
func (b *Board) Rows() []Row {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := make([]Row, 0, len(b.order))
	for _, id := range b.order {
		rows = append(rows, copyRow(b.rows[id]))
	}
	return rows
}

// Row returns a copy of the row for id.
func (b *Board) Row(id string) (Row, bool) {
	if b == nil {
		return Row{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.rows[id]
	if !ok {
		return Row{}, false
	}
	return copyRow(r), true
}

// Len reports the number of rows.
func (b *Board) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rows)
}

// Snapshot exports the board as a pretty-printed JSON document, rows in
// first-write order.
func (b *Board) Snapshot() ([]byte, error) {
	return json.MarshalIndent(b.Rows(), "", "  ")
}

func copyRow(r *Row) Row {
	out := Row{ID: r.ID, Text: r.Text}
	if len(r.Attrs) > 0 {
		out.Attrs = make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

var _ Sink = (*Board)(nil)
