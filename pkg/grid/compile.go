package grid

import (
	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Options configures compilation.
type Options struct {
	// GapPx is the divider width in pixels. Every cell but the first of a
	// group gives up this much at its leading edge.
	GapPx float64
}

// Compile computes the geometry of every cell of the named topology.
// Groups missing from p use an equal split. Compile is pure: identical
// inputs produce identical output.
func Compile(name string, p Proportions, opts Options) (map[string]CellGeometry, error) {
	t, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return t.Compile(p, opts)
}

// MustCompile is like [Compile] but panics on error. It is meant for
// topologies and proportions that are known to be valid.
func MustCompile(name string, p Proportions, opts Options) map[string]CellGeometry {
	cells, err := Compile(name, p, opts)
	if err != nil {
		panic(err)
	}
	return cells
}

// Compile computes the geometry of every cell of t.
func (t *Topology) Compile(p Proportions, opts Options) (map[string]CellGeometry, error) {
	if opts.GapPx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gap must not be negative: %g", opts.GapPx)
	}
	resolved, err := t.Resolve(p)
	if err != nil {
		return nil, err
	}
	return t.formula(resolved, opts.GapPx), nil
}
