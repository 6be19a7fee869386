package resize

import (
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// GroupController resizes N panels separated by N-1 dividers. Dragging
// divider i changes only elements i and i+1; every other element is copied
// unchanged from the start of the drag.
type GroupController struct {
	*engine
}

// NewGroupController returns an N-way controller over initial. A nil
// initial vector is an equal split of n.
func NewGroupController(n int, initial proportion.Vector, opts ...Option) (*GroupController, error) {
	if initial == nil {
		initial = proportion.Equal(n)
	}
	if err := initial.ValidateLen(n); err != nil {
		return nil, err
	}
	return &GroupController{engine: newEngine(initial, GroupTolerance, groupStep, opts)}, nil
}

// Begin starts dragging divider (between elements divider and divider+1).
// An out-of-range index is rejected with INVALID_DIVIDER and no session is
// started.
func (g *GroupController) Begin(divider int, pos, extent float64) error {
	return g.begin(divider, pos, extent)
}

// BeginDivider is an alias of Begin satisfying [Resizer].
func (g *GroupController) BeginDivider(divider int, pos, extent float64) error {
	return g.Begin(divider, pos, extent)
}

// groupStep redistributes the combined extent of the two neighbours of
// divider i. When both minimums cannot fit the divider sits in the middle.
func groupStep(start proportion.Vector, i int, delta, minPct float64) proportion.Vector {
	out := start.Clone()
	combined := start[i] + start[i+1]
	left := proportion.Clamp(start[i]+delta, minPct, combined-minPct)
	out[i] = left
	out[i+1] = combined - left
	return out
}
