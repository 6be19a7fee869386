// Package board composes a topology, one resize controller per proportion
// group and the persistence gateway into a renderable panel list.
//
// # Lifecycle
//
//	b, err := board.New("header-three-columns-footer",
//	    board.WithPersistence(gateway),
//	    board.WithContent(widgets),
//	    board.WithGap(4),
//	)
//	err = b.Load(ctx)          // persisted sizes, equal splits when absent
//	panels := b.Panels()       // geometry + content for every cell
//
// # Dragging
//
// Dividers are addressed by id ("main:0", "row-2:1") or found by pixel
// position with [Board.DividerAt]. A drag is routed to the controller of the
// divider's group: a pairwise [resize.Controller] for two-element groups and
// a [resize.GroupController] otherwise.
//
//	d, ok := b.DividerAt(x, y, w, h)
//	b.BeginDrag(d.ID, x, y, w, h)
//	b.Move(x2, y2)
//	b.EndDrag(ctx)             // one save per drag
//
// The drag extent is the pixel size of the group's own region, so a stack
// nested inside a column is resized relative to that column.
//
// # External updates
//
// [Board.Sync] and [Board.Refresh] feed persisted records through each
// controller's guard, which rejects echoes of the board's own saves and
// never interrupts a drag.
package board
