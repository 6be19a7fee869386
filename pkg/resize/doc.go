// Package resize implements divider dragging and the external sync guard.
//
// # Controllers
//
// [Controller] manages two panels and one divider; [GroupController] manages
// N panels and N-1 dividers. Both follow the same lifecycle:
//
//	c, _ := resize.NewGroupController(3, proportion.Of(33.33, 33.33, 33.34),
//	    resize.WithMinPercent(10),
//	    resize.OnChange(redraw),
//	    resize.WithPersister(saver),
//	)
//	c.Begin(0, 500, 1000) // divider 0, pointer at 500px of 1000px
//	c.Move(400)           // publishes [23.33 43.33 33.34]
//	c.End(ctx)            // persists and arms echo suppression
//
// Every Move publishes synchronously; there is no debouncing on the drag
// path. The minimum size is max(MinPercent, MinPixels/extent×100), where the
// extent is the one captured at Begin.
//
// # Sync guard
//
// Vectors arriving from outside (loaded from storage, pushed by a parent) go
// through [Guard.Decide] via Sync. The guard refuses to interrupt a drag,
// recognises echoes of our own saves by revision or by value within the
// suppression window, ignores values it already evaluated, and keeps the
// display when the external vector is within tolerance of it.
//
// # Pointer events
//
// A [PointerSource] is subscribed only for the duration of a drag session
// and released on End or Abandon. [PointerHub] is a fan-out implementation
// that hosts feed from their event loop.
package resize
