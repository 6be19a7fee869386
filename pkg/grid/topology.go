package grid

import (
	"fmt"
	"sort"
	"sync"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// Cell count limits of a topology.
const (
	MinCells = 2
	MaxCells = 32
)

// Axis is the direction along which a group lays out its children.
type Axis int

const (
	// Horizontal groups lay children left to right; their dividers are
	// vertical lines dragged along the x axis.
	Horizontal Axis = iota
	// Vertical groups lay children top to bottom; their dividers are
	// horizontal lines dragged along the y axis.
	Vertical
)

// Cross returns the perpendicular axis.
func (a Axis) Cross() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// MarshalText encodes the axis name.
func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Family classifies the geometry formula of a topology.
type Family string

const (
	FamilyLinear    Family = "linear"
	FamilyComposite Family = "composite"
	FamilyGrid      Family = "grid"
	FamilyNested    Family = "nested"
)

// Group is one proportion vector slot of a topology.
type Group struct {
	ID   string `json:"id"`
	Axis Axis   `json:"axis"`
	Size int    `json:"size"`
}

// Divider is the draggable boundary between elements Index and Index+1 of a
// group. Before and After list the cells on either side; they are what the
// divider separates on screen and are used for hit testing.
type Divider struct {
	ID     string   `json:"id"`
	Group  string   `json:"group"`
	Index  int      `json:"index"`
	Axis   Axis     `json:"axis"`
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// Proportions holds one vector per group, keyed by group id.
type Proportions map[string]proportion.Vector

// Clone returns a deep copy.
func (p Proportions) Clone() Proportions {
	out := make(Proportions, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}
	return out
}

// formula computes cell geometry from fully resolved proportions.
type formula func(p Proportions, gap float64) map[string]CellGeometry

// Topology is an immutable, named arrangement of cells. Topologies are
// registered once at package init and looked up by name.
type Topology struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Family      Family    `json:"family"`
	Cells       []string  `json:"cells"`
	Groups      []Group   `json:"groups"`
	Dividers    []Divider `json:"dividers"`

	formula formula
}

// clone returns a deep copy sharing only the formula.
func (t *Topology) clone() *Topology {
	c := *t
	c.Cells = append([]string(nil), t.Cells...)
	c.Groups = append([]Group(nil), t.Groups...)
	c.Dividers = make([]Divider, len(t.Dividers))
	for i, d := range t.Dividers {
		d.Before = append([]string(nil), d.Before...)
		d.After = append([]string(nil), d.After...)
		c.Dividers[i] = d
	}
	return &c
}

// Defaults returns an equal split for every group.
func (t *Topology) Defaults() Proportions {
	p := make(Proportions, len(t.Groups))
	for _, g := range t.Groups {
		p[g.ID] = proportion.Equal(g.Size)
	}
	return p
}

// Group returns the group with the given id.
func (t *Topology) Group(id string) (Group, bool) {
	for _, g := range t.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// Divider returns the divider with the given id (e.g. "main:0").
func (t *Topology) Divider(id string) (Divider, bool) {
	for _, d := range t.Dividers {
		if d.ID == id {
			return d, true
		}
	}
	return Divider{}, false
}

// GroupDividers returns the dividers of one group ordered by index.
func (t *Topology) GroupDividers(group string) []Divider {
	var out []Divider
	for _, d := range t.Dividers {
		if d.Group == group {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// GroupCells returns every cell laid out by the group, in cell order.
func (t *Topology) GroupCells(group string) []string {
	in := map[string]bool{}
	for _, d := range t.GroupDividers(group) {
		for _, c := range d.Before {
			in[c] = true
		}
		for _, c := range d.After {
			in[c] = true
		}
	}
	var out []string
	for _, c := range t.Cells {
		if in[c] {
			out = append(out, c)
		}
	}
	return out
}

// HasCell reports whether id is a cell of t.
func (t *Topology) HasCell(id string) bool {
	for _, c := range t.Cells {
		if c == id {
			return true
		}
	}
	return false
}

// Resolve fills in defaults for missing groups and validates the rest.
func (t *Topology) Resolve(p Proportions) (Proportions, error) {
	out := make(Proportions, len(t.Groups))
	for id := range p {
		if _, ok := t.Group(id); !ok {
			return nil, errors.New(errors.ErrCodeInvalidGroup, "topology %s has no group %q", t.Name, id)
		}
	}
	for _, g := range t.Groups {
		v, ok := p[g.ID]
		if !ok || v == nil {
			out[g.ID] = proportion.Equal(g.Size)
			continue
		}
		if err := v.ValidateLen(g.Size); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProportions, err, "group %s of %s", g.ID, t.Name)
		}
		out[g.ID] = v.Clone()
	}
	return out, nil
}

func (t *Topology) validate() error {
	if err := errors.ValidateTopologyName(t.Name); err != nil {
		return err
	}
	if n := len(t.Cells); n < MinCells || n > MaxCells {
		return fmt.Errorf("topology %s: %d cells, want %d..%d", t.Name, n, MinCells, MaxCells)
	}
	seen := map[string]bool{}
	for _, c := range t.Cells {
		if err := errors.ValidateCellID(c); err != nil {
			return err
		}
		if seen[c] {
			return fmt.Errorf("topology %s: duplicate cell %q", t.Name, c)
		}
		seen[c] = true
	}
	for _, g := range t.Groups {
		if err := errors.ValidateGroupID(g.ID); err != nil {
			return err
		}
		if g.Size < 2 {
			return fmt.Errorf("topology %s: group %s has %d elements", t.Name, g.ID, g.Size)
		}
		if n := len(t.GroupDividers(g.ID)); n != g.Size-1 {
			return fmt.Errorf("topology %s: group %s has %d dividers, want %d", t.Name, g.ID, n, g.Size-1)
		}
	}
	for _, d := range t.Dividers {
		if _, ok := t.Group(d.Group); !ok {
			return fmt.Errorf("topology %s: divider %s references unknown group", t.Name, d.ID)
		}
		for _, c := range append(append([]string{}, d.Before...), d.After...) {
			if !seen[c] {
				return fmt.Errorf("topology %s: divider %s references unknown cell %q", t.Name, d.ID, c)
			}
		}
	}
	if t.formula == nil {
		return fmt.Errorf("topology %s: no formula", t.Name)
	}
	return nil
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Topology{}
	order      []string
)

// register adds t to the registry. A malformed or duplicate topology is a
// programming error and panics.
func register(t *Topology) {
	if err := t.validate(); err != nil {
		panic(err)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t.Name]; dup {
		panic(fmt.Sprintf("grid: topology %s registered twice", t.Name))
	}
	registry[t.Name] = t
	order = append(order, t.Name)
}

// Lookup returns a copy of the registered topology with the given name.
// Changing the copy does not affect the registry.
func Lookup(name string) (*Topology, error) {
	t, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return t.clone(), nil
}

func lookup(name string) (*Topology, error) {
	registryMu.RLock()
	t, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidTopology, "unknown topology %q", name)
	}
	return t, nil
}

// MustLookup is like [Lookup] but panics for unknown names. Referencing a
// topology that was never registered is a programming error.
func MustLookup(name string) *Topology {
	t, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns all registered topology names in registration order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return append([]string(nil), order...)
}

// All returns copies of every registered topology in registration order.
func All() []*Topology {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Topology, len(order))
	for i, name := range order {
		out[i] = registry[name].clone()
	}
	return out
}
