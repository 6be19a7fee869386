package resize

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

var (
	// ErrDragActive is returned by Begin and Set while a drag is in progress.
	ErrDragActive = errors.New(errors.ErrCodeDragActive, "a drag is already in progress")
)

// DragSession lives between pointer-down and pointer-up.
type DragSession struct {
	Divider      int
	Start        proportion.Vector
	StartPos     float64
	Extent       float64 // container pixels along the drag axis, captured once at Begin
	Began        time.Time
	LastActivity time.Time
	Moves        int
}

// MinPercent returns the minimum element size for this session. It is
// derived from the extent captured at Begin so reflows during the drag do
// not move the limit.
func (s DragSession) MinPercent(minPixels, floor float64) float64 {
	return proportion.MinPercent(minPixels, s.Extent, floor)
}

// stepFunc computes the vector for one pointer position.
type stepFunc func(start proportion.Vector, divider int, delta, minPct float64) proportion.Vector

// engine holds the state shared by both controller kinds. Exported methods
// are promoted to [Controller] and [GroupController].
type engine struct {
	mu      sync.Mutex
	opts    options
	guard   Guard
	step    stepFunc
	current proportion.Vector
	session *DragSession
	sync    SyncState
	release func()
}

func newEngine(initial proportion.Vector, tolerance float64, step stepFunc, opts []Option) *engine {
	o := defaultOptions(tolerance)
	for _, opt := range opts {
		opt(&o)
	}
	return &engine{
		opts:    o,
		guard:   Guard{Tolerance: o.tolerance},
		step:    step,
		current: initial.Clone(),
	}
}

func (e *engine) begin(divider int, pos, extent float64) error {
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "container extent must be positive, got %g", extent)
	}

	e.mu.Lock()
	if divider < 0 || divider+1 >= len(e.current) {
		n := len(e.current)
		e.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidDivider, "divider %d out of range for %d cells", divider, n)
	}

	now := e.opts.now()
	var stale *DragSession
	var staleRelease func()
	var reverted proportion.Vector
	if e.session != nil {
		if e.opts.abandonAfter <= 0 || now.Sub(e.session.LastActivity) < e.opts.abandonAfter {
			e.mu.Unlock()
			return ErrDragActive
		}
		stale = e.session
		staleRelease, reverted = e.abandonLocked()
	}

	sess := &DragSession{
		Divider:      divider,
		Start:        e.current.Clone(),
		StartPos:     pos,
		Extent:       extent,
		Began:        now,
		LastActivity: now,
	}
	e.session = sess
	e.mu.Unlock()

	if stale != nil {
		e.abandoned(stale, staleRelease, reverted)
	}

	if e.opts.pointer != nil {
		release := e.opts.pointer.Subscribe(
			func(p float64) { e.Move(p) },
			func(p float64) {
				e.Move(p)
				_, _ = e.End(context.Background())
			},
		)
		e.mu.Lock()
		if e.session == sess {
			e.release = release
			release = nil
		}
		e.mu.Unlock()
		if release != nil {
			// the session ended while subscribing
			release()
		}
	}

	observability.Drag().OnDragStart(context.Background(), e.opts.name, divider)
	e.opts.logger.Debug("drag started", "name", e.opts.name, "divider", divider, "extent", extent)
	return nil
}

// Move recomputes the vector for the pointer position and publishes it.
// Without an active session it does nothing and returns false.
func (e *engine) Move(pos float64) (proportion.Vector, bool) {
	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return nil, false
	}
	delta := (pos - s.StartPos) / s.Extent * 100
	minPct := s.MinPercent(e.opts.minPixels, e.opts.minPercent)
	next := e.step(s.Start, s.Divider, delta, minPct)
	e.current = next
	s.LastActivity = e.opts.now()
	s.Moves++
	out := next.Clone()
	e.mu.Unlock()

	e.publish(out)
	return out, true
}

// End commits the session: it releases the pointer subscription, arms the
// echo suppression window and hands the final vector to the persister. A
// persister error is logged and returned; the displayed vector is kept.
// Without an active session End does nothing.
func (e *engine) End(ctx context.Context) (proportion.Vector, error) {
	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return nil, nil
	}
	now := e.opts.now()
	final := e.current.Clone()
	e.sync.Arm(final, now, e.opts.suppressWindow)
	release := e.release
	e.release = nil
	e.session = nil
	e.mu.Unlock()

	if release != nil {
		release()
	}
	observability.Drag().OnDragEnd(ctx, e.opts.name, s.Divider, s.Moves, now.Sub(s.Began))
	e.opts.logger.Debug("drag committed", "name", e.opts.name, "divider", s.Divider, "proportions", proportion.Format(final))

	if e.opts.persister == nil {
		return final, nil
	}
	rev, err := e.opts.persister.Persist(ctx, final)
	if err != nil {
		e.opts.logger.Warn("persist failed", "name", e.opts.name, "err", err)
		return final, err
	}
	e.mu.Lock()
	e.sync.Acknowledge(final, rev)
	e.mu.Unlock()
	return final, nil
}

// Abandon drops the active session without committing, restores the vector
// from before the drag and releases the pointer subscription.
func (e *engine) Abandon() {
	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return
	}
	release, reverted := e.abandonLocked()
	e.mu.Unlock()
	e.abandoned(s, release, reverted)
}

func (e *engine) abandonLocked() (func(), proportion.Vector) {
	e.current = e.session.Start.Clone()
	e.session = nil
	release := e.release
	e.release = nil
	return release, e.current.Clone()
}

func (e *engine) abandoned(s *DragSession, release func(), reverted proportion.Vector) {
	if release != nil {
		release()
	}
	e.publish(reverted)
	observability.Drag().OnDragAbandoned(context.Background(), e.opts.name, s.Divider)
	e.opts.logger.Debug("drag abandoned", "name", e.opts.name, "divider", s.Divider)
}

// Sync evaluates an externally supplied vector and adopts it when the guard
// allows.
func (e *engine) Sync(ext External) Decision {
	e.mu.Lock()
	d := e.guard.Decide(&e.sync, ext, e.current, e.session != nil, e.opts.now())
	var adopted proportion.Vector
	if d.Adopted() {
		e.current = ext.Vector.Clone()
		adopted = e.current.Clone()
	}
	e.mu.Unlock()

	if adopted != nil {
		e.publish(adopted)
	}
	observability.Sync().OnDecision(context.Background(), e.opts.name, d.String())
	e.opts.logger.Debug("external proportions", "name", e.opts.name, "decision", d, "proportions", proportion.Format(ext.Vector))
	return d
}

// Set replaces the displayed vector directly, bypassing the guard. It is
// used for local resets and fails while dragging.
func (e *engine) Set(v proportion.Vector) error {
	e.mu.Lock()
	if err := v.ValidateLen(len(e.current)); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.session != nil {
		e.mu.Unlock()
		return ErrDragActive
	}
	e.current = v.Clone()
	e.sync.LastAppliedExternal = ""
	out := e.current.Clone()
	e.mu.Unlock()

	e.publish(out)
	return nil
}

// Proportions returns a copy of the displayed vector.
func (e *engine) Proportions() proportion.Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// Dragging reports whether a session is active.
func (e *engine) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Session returns a copy of the active session.
func (e *engine) Session() (DragSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return DragSession{}, false
	}
	s := *e.session
	s.Start = s.Start.Clone()
	return s, true
}

// SyncState returns a copy of the guard bookkeeping.
func (e *engine) SyncState() SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sync
}

func (e *engine) publish(v proportion.Vector) {
	if e.opts.onChange != nil {
		e.opts.onChange(v)
	}
}
