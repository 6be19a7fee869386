package resize

import (
	"sync"

	"github.com/matzehuels/dashgrid/pkg/grid"
)

// PointerSource delivers pointer positions along one axis. Subscribe
// registers callbacks until the returned release function is called;
// release is idempotent.
type PointerSource interface {
	Subscribe(onMove, onUp func(pos float64)) (release func())
}

// Point is a pointer position in container pixels.
type Point struct {
	X, Y float64
}

// Along returns the coordinate of p that a divider on axis a follows.
func (p Point) Along(a grid.Axis) float64 {
	if a == grid.Horizontal {
		return p.X
	}
	return p.Y
}

// PointerHub fans global pointer events out to the active subscriptions.
// Hosts feed it from their event loop; controllers subscribe through
// [PointerHub.Along] only while a drag is in progress.
type PointerHub struct {
	mu   sync.Mutex
	next int
	subs map[int]hubSub
}

type hubSub struct {
	axis         grid.Axis
	onMove, onUp func(float64)
}

// NewPointerHub returns an empty hub.
func NewPointerHub() *PointerHub {
	return &PointerHub{subs: make(map[int]hubSub)}
}

// Along returns a [PointerSource] projecting hub events onto axis a.
func (h *PointerHub) Along(a grid.Axis) PointerSource {
	return axisSource{hub: h, axis: a}
}

type axisSource struct {
	hub  *PointerHub
	axis grid.Axis
}

func (s axisSource) Subscribe(onMove, onUp func(float64)) func() {
	h := s.hub
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = hubSub{axis: s.axis, onMove: onMove, onUp: onUp}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Move dispatches a pointer-move to every subscription.
func (h *PointerHub) Move(p Point) {
	for _, s := range h.snapshot() {
		if s.onMove != nil {
			s.onMove(p.Along(s.axis))
		}
	}
}

// Up dispatches a pointer-up to every subscription.
func (h *PointerHub) Up(p Point) {
	for _, s := range h.snapshot() {
		if s.onUp != nil {
			s.onUp(p.Along(s.axis))
		}
	}
}

// Active returns the number of live subscriptions.
func (h *PointerHub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// snapshot copies the subscriptions so callbacks run without the hub lock;
// a callback may release its own subscription.
func (h *PointerHub) snapshot() []hubSub {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]hubSub, 0, len(h.subs))
	for _, s := range h.subs {
		out = append(out, s)
	}
	return out
}
