// Package grid compiles named panel topologies into cell geometry.
//
// # Overview
//
// A [Topology] is a fixed arrangement of named cells. Its shape is described
// by one or more groups, each owning a proportion vector that splits a span
// of the container along one axis. Dividers sit between adjacent elements of
// a group; dragging a divider changes only the two elements it separates.
//
// Topologies are registered once at package init and looked up by name:
//
//	t := grid.MustLookup("three-columns")
//	cells, err := grid.Compile("three-columns", grid.Proportions{
//	    grid.MainGroup: proportion.Of(25, 50, 25),
//	}, grid.Options{GapPx: 4})
//
// # Families
//
// Each family has its own geometry formula:
//
//   - linear: 2 to 8 cells along one axis (two-columns … eight-rows)
//   - composite: a large cell plus a stack in the remaining space
//     (L-shape-left-large, large-top-four-stack, large-left-strip-two)
//   - grid: R×C cells with a row-height group and one column group per row
//   - nested: arbitrary trees of groups (header-three-columns-footer)
//
// Stack and nested group shares are percentages of the span their parent
// assigned, so a stacked cell's share of the container is the product of the
// shares along its path.
//
// # Output
//
// [CellGeometry] edges are [Length] values combining a percentage and a pixel
// offset, rendered CSS-style: "40%", "calc(40% + 4px)". For gap 0 the cells
// tile the container exactly; for gap g they never overlap and leave strips
// at most g pixels wide where the dividers are drawn.
//
// # Diagrams
//
// [ToDOT] exports the divider adjacency of a topology for Graphviz and
// [RenderSVG] renders it in-process with [github.com/goccy/go-graphviz].
package grid
