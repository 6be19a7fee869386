package board

import (
	"context"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
	"github.com/matzehuels/dashgrid/pkg/resize"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// DefaultHitSlop is how many pixels either side of a divider still count
// as a hit.
const DefaultHitSlop = 4.0

// Content is an opaque panel payload.
type Content = any

// ContentResolver maps cell ids to panel content.
type ContentResolver interface {
	Resolve(cellID string) Content
}

// ContentFunc adapts a function to [ContentResolver].
type ContentFunc func(cellID string) Content

// Resolve calls f.
func (f ContentFunc) Resolve(cellID string) Content { return f(cellID) }

// StaticContent resolves cells from a fixed map; unknown cells get nil.
type StaticContent map[string]Content

// Resolve looks up cellID.
func (s StaticContent) Resolve(cellID string) Content { return s[cellID] }

// Persistence is the part of the gateway a board needs.
type Persistence interface {
	Load(ctx context.Context, topology, group string) (store.Record, bool, error)
	Delete(ctx context.Context, topology, group string) error
	Bind(topology, group string) resize.Persister
}

// Panel is one cell ready to render.
type Panel struct {
	ID       string
	Geometry grid.CellGeometry
	Content  Content
}

// Rect resolves the panel geometry in a w×h container.
func (p Panel) Rect(w, h float64) grid.Rect {
	return p.Geometry.Resolve(w, h)
}

// Option configures a Board.
type Option func(*Board)

// WithPersistence loads and saves group vectors through p.
func WithPersistence(p Persistence) Option {
	return func(b *Board) { b.persist = p }
}

// WithContent sets the content resolver.
func WithContent(r ContentResolver) Option {
	return func(b *Board) {
		if r != nil {
			b.content = r
		}
	}
}

// WithGap sets the gap between panels in pixels.
func WithGap(px float64) Option {
	return func(b *Board) { b.gap = px }
}

// WithHitSlop sets the divider hit tolerance in pixels.
func WithHitSlop(px float64) Option {
	return func(b *Board) { b.slop = px }
}

// WithResizeOptions passes options to every controller.
func WithResizeOptions(opts ...resize.Option) Option {
	return func(b *Board) { b.resizeOpts = append(b.resizeOpts, opts...) }
}

// WithPointerHub subscribes each drag to hub on its group's axis. Pointer
// moves and the final pointer-up then reach the controller through the hub
// instead of [Board.Move] and [Board.EndDrag].
func WithPointerHub(hub *resize.PointerHub) Option {
	return func(b *Board) { b.hub = hub }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// OnChange is called after any group vector changes, outside the board
// lock.
func OnChange(fn func(group string, v proportion.Vector)) Option {
	return func(b *Board) { b.onChange = fn }
}

// Board is a topology with live controllers.
type Board struct {
	topo       *grid.Topology
	persist    Persistence
	content    ContentResolver
	gap        float64
	slop       float64
	resizeOpts []resize.Option
	hub        *resize.PointerHub
	logger     *log.Logger
	onChange   func(string, proportion.Vector)

	ctrls map[string]resize.Resizer

	mu     sync.Mutex
	active *grid.Divider
}

// New creates a board with equal splits. An unknown topology is
// INVALID_TOPOLOGY.
func New(topology string, opts ...Option) (*Board, error) {
	t, err := grid.Lookup(topology)
	if err != nil {
		return nil, err
	}
	b := &Board{
		topo:    t,
		content: StaticContent(nil),
		slop:    DefaultHitSlop,
		logger:  log.Default(),
		ctrls:   make(map[string]resize.Resizer, len(t.Groups)),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.gap < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gap must not be negative, got %g", b.gap)
	}

	defaults := t.Defaults()
	for _, g := range t.Groups {
		c, err := b.newController(g, defaults[g.ID])
		if err != nil {
			return nil, err
		}
		b.ctrls[g.ID] = c
	}
	return b, nil
}

func (b *Board) newController(g grid.Group, initial proportion.Vector) (resize.Resizer, error) {
	id := g.ID
	opts := []resize.Option{
		resize.WithName(store.Key(b.topo.Name, id)),
		resize.WithLogger(b.logger),
	}
	if b.persist != nil {
		opts = append(opts, resize.WithPersister(b.persist.Bind(b.topo.Name, id)))
	}
	if b.onChange != nil {
		fn := b.onChange
		opts = append(opts, resize.OnChange(func(v proportion.Vector) { fn(id, v) }))
	}
	if b.hub != nil {
		opts = append(opts, resize.WithPointer(b.hub.Along(g.Axis)))
	}
	opts = append(opts, b.resizeOpts...)

	if g.Size == 2 {
		return resize.NewController(initial, opts...)
	}
	return resize.NewGroupController(g.Size, initial, opts...)
}

// Topology returns the board's topology.
func (b *Board) Topology() *grid.Topology { return b.topo }

// Controller returns the controller of a group.
func (b *Board) Controller(group string) (resize.Resizer, error) {
	c, ok := b.ctrls[group]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidGroup, "topology %s has no group %q", b.topo.Name, group)
	}
	return c, nil
}

// Load mounts the board: every group takes its persisted vector, or its
// equal split when nothing usable is stored. Load failures are logged and
// fall back to the default.
func (b *Board) Load(ctx context.Context) error {
	if b.persist == nil {
		return nil
	}
	for _, g := range b.topo.Groups {
		rec, ok, err := b.persist.Load(ctx, b.topo.Name, g.ID)
		if err != nil {
			b.logger.Warn("load failed, using defaults", "topology", b.topo.Name, "group", g.ID, "err", err)
			continue
		}
		if !ok {
			continue
		}
		if err := rec.Sizes.ValidateLen(g.Size); err != nil {
			b.logger.Warn("ignoring stored layout", "topology", b.topo.Name, "group", g.ID, "err", err)
			continue
		}
		if err := b.ctrls[g.ID].Set(rec.Sizes); err != nil {
			return err
		}
	}
	return nil
}

// Refresh reloads every group and passes the records through the guard.
func (b *Board) Refresh(ctx context.Context) map[string]resize.Decision {
	out := make(map[string]resize.Decision, len(b.topo.Groups))
	if b.persist == nil {
		return out
	}
	for _, g := range b.topo.Groups {
		rec, ok, err := b.persist.Load(ctx, b.topo.Name, g.ID)
		if err != nil || !ok {
			continue
		}
		out[g.ID] = b.ctrls[g.ID].Sync(resize.External{Vector: rec.Sizes, Revision: rec.Revision})
	}
	return out
}

// Sync offers one externally supplied record to a group's guard.
func (b *Board) Sync(group string, rec store.Record) (resize.Decision, error) {
	c, err := b.Controller(group)
	if err != nil {
		return 0, err
	}
	return c.Sync(resize.External{Vector: rec.Sizes, Revision: rec.Revision}), nil
}

// Proportions returns the displayed vector of every group.
func (b *Board) Proportions() grid.Proportions {
	p := make(grid.Proportions, len(b.ctrls))
	for id, c := range b.ctrls {
		p[id] = c.Proportions()
	}
	return p
}

// Geometry compiles the current proportions.
func (b *Board) Geometry() map[string]grid.CellGeometry {
	cells, err := b.topo.Compile(b.Proportions(), grid.Options{GapPx: b.gap})
	if err != nil {
		// controllers only ever hold validated vectors of the right length
		panic(err)
	}
	return cells
}

// Panels returns every cell in topology order with its geometry and content.
func (b *Board) Panels() []Panel {
	cells := b.Geometry()
	out := make([]Panel, len(b.topo.Cells))
	for i, id := range b.topo.Cells {
		out[i] = Panel{ID: id, Geometry: cells[id], Content: b.content.Resolve(id)}
	}
	return out
}

// Reset returns every group to its equal split and deletes the persisted
// records. It fails while a drag is active.
func (b *Board) Reset(ctx context.Context) error {
	if b.Dragging() {
		return resize.ErrDragActive
	}
	defaults := b.topo.Defaults()
	for _, g := range b.topo.Groups {
		if err := b.ctrls[g.ID].Set(defaults[g.ID]); err != nil {
			return err
		}
		if b.persist != nil {
			if err := b.persist.Delete(ctx, b.topo.Name, g.ID); err != nil {
				b.logger.Warn("delete persisted layout failed", "topology", b.topo.Name, "group", g.ID, "err", err)
			}
		}
	}
	return nil
}

// Dragging reports whether any divider is being dragged.
func (b *Board) Dragging() bool {
	return b.activeDivider() != nil
}

// unionOf returns the bounding rectangle of a set of cells.
func unionOf(rects map[string]grid.Rect, ids []string) grid.Rect {
	var u grid.Rect
	for i, id := range ids {
		if i == 0 {
			u = rects[id]
			continue
		}
		u = u.Union(rects[id])
	}
	return u
}

// DividerAt finds the divider under (x, y) in a w×h container. When two
// dividers are within reach the closer one wins.
func (b *Board) DividerAt(x, y, w, h float64) (grid.Divider, bool) {
	rects := grid.Resolve(b.Geometry(), w, h)
	best, bestDist := -1, math.Inf(1)
	for i, d := range b.topo.Dividers {
		before, after := unionOf(rects, d.Before), unionOf(rects, d.After)
		var along, cross, lo, hi, crossLo, crossHi float64
		if d.Axis == grid.Horizontal {
			along, cross = x, y
			lo, hi = before.Right(), after.X
			crossLo, crossHi = math.Max(before.Y, after.Y), math.Min(before.Bottom(), after.Bottom())
		} else {
			along, cross = y, x
			lo, hi = before.Bottom(), after.Y
			crossLo, crossHi = math.Max(before.X, after.X), math.Min(before.Right(), after.Right())
		}
		if cross < crossLo || cross > crossHi {
			continue
		}
		if along < lo-b.slop || along > hi+b.slop {
			continue
		}
		if dist := math.Abs(along - (lo+hi)/2); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return grid.Divider{}, false
	}
	return b.topo.Dividers[best], true
}

// Extent returns the pixel size of a group's region along its axis.
func (b *Board) Extent(group string, w, h float64) (float64, error) {
	g, ok := b.topo.Group(group)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidGroup, "topology %s has no group %q", b.topo.Name, group)
	}
	rects := grid.Resolve(b.Geometry(), w, h)
	u := unionOf(rects, b.topo.GroupCells(group))
	if g.Axis == grid.Horizontal {
		return u.W, nil
	}
	return u.H, nil
}

// DividerPoint returns the centre of a divider in a w×h container, where a
// pointer would grab it.
func (b *Board) DividerPoint(dividerID string, w, h float64) (x, y float64, err error) {
	d, ok := b.topo.Divider(dividerID)
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidDivider, "topology %s has no divider %q", b.topo.Name, dividerID)
	}
	rects := grid.Resolve(b.Geometry(), w, h)
	before, after := unionOf(rects, d.Before), unionOf(rects, d.After)
	if d.Axis == grid.Horizontal {
		top, bottom := math.Max(before.Y, after.Y), math.Min(before.Bottom(), after.Bottom())
		return (before.Right() + after.X) / 2, (top + bottom) / 2, nil
	}
	left, right := math.Max(before.X, after.X), math.Min(before.Right(), after.Right())
	return (left + right) / 2, (before.Bottom() + after.Y) / 2, nil
}

// BeginDrag starts dragging the divider with the given id at pointer
// (x, y) in a w×h container.
func (b *Board) BeginDrag(dividerID string, x, y, w, h float64) error {
	d, ok := b.topo.Divider(dividerID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidDivider, "topology %s has no divider %q", b.topo.Name, dividerID)
	}
	extent, err := b.Extent(d.Group, w, h)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.active != nil && b.ctrls[b.active.Group].Dragging() {
		b.mu.Unlock()
		return resize.ErrDragActive
	}
	b.active = &d
	b.mu.Unlock()

	if err := b.ctrls[d.Group].BeginDivider(d.Index, along(d.Axis, x, y), extent); err != nil {
		b.mu.Lock()
		b.active = nil
		b.mu.Unlock()
		return err
	}
	return nil
}

// Move forwards a pointer position to the active drag. It returns false
// when no drag is active.
func (b *Board) Move(x, y float64) (proportion.Vector, bool) {
	d := b.activeDivider()
	if d == nil {
		return nil, false
	}
	return b.ctrls[d.Group].Move(along(d.Axis, x, y))
}

// EndDrag commits the active drag and persists the group vector.
func (b *Board) EndDrag(ctx context.Context) (proportion.Vector, error) {
	d := b.takeActive()
	if d == nil {
		return nil, nil
	}
	return b.ctrls[d.Group].End(ctx)
}

// AbandonDrag drops the active drag without persisting it.
func (b *Board) AbandonDrag() {
	if d := b.takeActive(); d != nil {
		b.ctrls[d.Group].Abandon()
	}
}

// ActiveDivider returns the divider being dragged.
func (b *Board) ActiveDivider() (grid.Divider, bool) {
	d := b.activeDivider()
	if d == nil {
		return grid.Divider{}, false
	}
	return *d, true
}

// activeDivider returns the active divider, forgetting it when its
// controller ended the session on its own (pointer-up from a subscribed
// PointerSource, or a stale session dropped by AbandonAfter).
func (b *Board) activeDivider() *grid.Divider {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != nil && !b.ctrls[b.active.Group].Dragging() {
		b.active = nil
	}
	return b.active
}

func (b *Board) takeActive() *grid.Divider {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.active
	b.active = nil
	return d
}

func along(axis grid.Axis, x, y float64) float64 {
	if axis == grid.Horizontal {
		return x
	}
	return y
}
