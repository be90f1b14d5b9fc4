// Package sink routes derived release values to presentation targets.
//
// # Overview
//
// A "sink" is the write-only surface the pipeline pushes values into: a
// text slot per row plus named attributes. The pipeline never reads from
// a sink, and it never writes absent values, so existing content survives
// a failed refresh.
//
// Two implementations:
//
//   - [Memory]: records writes in maps; the test double.
//   - [Board]: keyed rows that render as a terminal table, an HTML page,
//     or a JSON snapshot.
//
// # Rendering
//
// [Board.RenderText] produces the aligned terminal table, styled with
// lipgloss unless [WithPlain] is given. [Board.RenderHTML] produces a
// standalone page. [Board.Snapshot] exports the rows as JSON for
// machine consumers.
//
// # Attributes
//
// Rows carry free-form attributes; the renderers give visual treatment
// to the well-known names ([AttrLabel], [AttrHref], [AttrLink],
// [AttrStatus], [AttrPublished], [AttrPrerelease]).
package sink
