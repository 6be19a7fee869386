package resize

import (
	"context"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// Resizer is the behaviour shared by [Controller] and [GroupController].
type Resizer interface {
	BeginDivider(divider int, pos, extent float64) error
	Move(pos float64) (proportion.Vector, bool)
	End(ctx context.Context) (proportion.Vector, error)
	Abandon()
	Sync(ext External) Decision
	Set(v proportion.Vector) error
	Proportions() proportion.Vector
	Dragging() bool
}

var (
	_ Resizer = (*Controller)(nil)
	_ Resizer = (*GroupController)(nil)
)

// Controller resizes two panels separated by one divider.
type Controller struct {
	*engine
}

// NewController returns a pairwise controller. A nil initial vector starts
// at 50/50.
func NewController(initial proportion.Vector, opts ...Option) (*Controller, error) {
	if initial == nil {
		initial = proportion.Equal(2)
	}
	if err := initial.ValidateLen(2); err != nil {
		return nil, err
	}
	return &Controller{engine: newEngine(initial, PairTolerance, pairStep, opts)}, nil
}

// Begin starts a drag at pointer position pos. extent is the container size
// in pixels along the drag axis; it is captured once for the whole session.
func (c *Controller) Begin(pos, extent float64) error {
	return c.begin(0, pos, extent)
}

// BeginDivider is Begin for callers that address dividers by index. The
// only valid index is 0.
func (c *Controller) BeginDivider(divider int, pos, extent float64) error {
	if divider != 0 {
		return errors.New(errors.ErrCodeInvalidDivider, "pairwise controller has no divider %d", divider)
	}
	return c.Begin(pos, extent)
}

// pairStep moves the single divider: the first panel follows the pointer
// within [min, 100-min] and the second takes the rest of 100.
func pairStep(start proportion.Vector, _ int, delta, minPct float64) proportion.Vector {
	first := proportion.Clamp(start[0]+delta, minPct, 100-minPct)
	return proportion.Of(first, 100-first)
}
