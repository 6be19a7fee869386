package grid

import "fmt"

// Well-known group ids.
const (
	MainGroup  = "main"
	StackGroup = "stack"
	RowsGroup  = "rows"
	LargeCell  = "large"
)

// RowGroup returns the id of the column-width group of grid row r (1-based).
func RowGroup(r int) string { return fmt.Sprintf("row-%d", r) }

func dividerID(group string, index int) string {
	return fmt.Sprintf("%s:%d", group, index)
}

// chain builds the dividers of one group. slots[i] lists the cells of the
// group's i-th element.
func chain(group string, axis Axis, slots [][]string) []Divider {
	out := make([]Divider, 0, len(slots)-1)
	for i := 0; i+1 < len(slots); i++ {
		out = append(out, Divider{
			ID:     dividerID(group, i),
			Group:  group,
			Index:  i,
			Axis:   axis,
			Before: slots[i],
			After:  slots[i+1],
		})
	}
	return out
}

func singletons(cells []string) [][]string {
	out := make([][]string, len(cells))
	for i, c := range cells {
		out[i] = []string{c}
	}
	return out
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return out
}

// linear lays n cells along one axis. Each cell's leading edge is the running
// sum of the preceding proportions and its cross extent is the full container.
func linear(name, desc string, axis Axis, n int) *Topology {
	prefix := "col"
	if axis == Vertical {
		prefix = "row"
	}
	cells := numbered(prefix, n)
	t := &Topology{
		Name:        name,
		Description: desc,
		Family:      FamilyLinear,
		Cells:       cells,
		Groups:      []Group{{ID: MainGroup, Axis: axis, Size: n}},
		Dividers:    chain(MainGroup, axis, singletons(cells)),
	}
	t.formula = func(p Proportions, gap float64) map[string]CellGeometry {
		out := make(map[string]CellGeometry, n)
		for i, s := range split(full, p[MainGroup], gap) {
			out[cells[i]] = place(axis, s, full)
		}
		return out
	}
	return t
}

// Side is where the large cell of a composite topology sits.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

func (s Side) String() string {
	return [...]string{"left", "right", "top", "bottom"}[s]
}

// composite places one large cell and a stack of n cells in the remaining
// space. The main group holds [large, stack] in layout order. The stack
// group's shares are percentages of the stack's own extent: a stacked cell
// covers stackShare × own / 100 of the container. When inline is set the
// stack continues along the main axis, otherwise it runs across it.
func composite(name, desc string, side Side, n int, inline bool) *Topology {
	mainAxis := Horizontal
	if side == SideTop || side == SideBottom {
		mainAxis = Vertical
	}
	stackAxis := mainAxis.Cross()
	if inline {
		stackAxis = mainAxis
	}
	largeFirst := side == SideLeft || side == SideTop
	stack := numbered("stack", n)

	mainSlots := [][]string{{LargeCell}, stack}
	large, rest := 0, 1
	if !largeFirst {
		mainSlots = [][]string{stack, {LargeCell}}
		large, rest = 1, 0
	}

	t := &Topology{
		Name:        name,
		Description: desc,
		Family:      FamilyComposite,
		Cells:       append([]string{LargeCell}, stack...),
		Groups: []Group{
			{ID: MainGroup, Axis: mainAxis, Size: 2},
			{ID: StackGroup, Axis: stackAxis, Size: n},
		},
	}
	t.Dividers = append(chain(MainGroup, mainAxis, mainSlots), chain(StackGroup, stackAxis, singletons(stack))...)

	t.formula = func(p Proportions, gap float64) map[string]CellGeometry {
		out := make(map[string]CellGeometry, n+1)
		mainSpans := split(full, p[MainGroup], gap)
		out[LargeCell] = place(mainAxis, mainSpans[large], full)
		if inline {
			for j, s := range split(mainSpans[rest], p[StackGroup], gap) {
				out[stack[j]] = place(mainAxis, s, full)
			}
			return out
		}
		for j, s := range split(full, p[StackGroup], gap) {
			out[stack[j]] = place(mainAxis, mainSpans[rest], s)
		}
		return out
	}
	return t
}

// grid arranges rows×cols cells. The rows group sizes the row bands; each
// row has its own group sizing the columns within it, so rows can be split
// independently.
func grid(name, desc string, rows, cols int) *Topology {
	cells := make([]string, 0, rows*cols)
	rowCells := make([][]string, rows)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			id := fmt.Sprintf("r%dc%d", r, c)
			cells = append(cells, id)
			rowCells[r-1] = append(rowCells[r-1], id)
		}
	}

	groups := []Group{{ID: RowsGroup, Axis: Vertical, Size: rows}}
	dividers := chain(RowsGroup, Vertical, rowCells)
	for r := 1; r <= rows; r++ {
		groups = append(groups, Group{ID: RowGroup(r), Axis: Horizontal, Size: cols})
		dividers = append(dividers, chain(RowGroup(r), Horizontal, singletons(rowCells[r-1]))...)
	}

	t := &Topology{
		Name:        name,
		Description: desc,
		Family:      FamilyGrid,
		Cells:       cells,
		Groups:      groups,
		Dividers:    dividers,
	}
	t.formula = func(p Proportions, gap float64) map[string]CellGeometry {
		out := make(map[string]CellGeometry, len(cells))
		for r, band := range split(full, p[RowsGroup], gap) {
			for c, col := range split(full, p[RowGroup(r+1)], gap) {
				out[rowCells[r][c]] = place(Horizontal, col, band)
			}
		}
		return out
	}
	return t
}

// node is one element of a nested topology: either a cell or a group of
// child nodes laid out along an axis.
type node struct {
	cell     string
	group    string
	axis     Axis
	children []node
}

func leaf(id string) node { return node{cell: id} }

func branch(group string, axis Axis, children ...node) node {
	return node{group: group, axis: axis, children: children}
}

func (n node) cells() []string {
	if n.cell != "" {
		return []string{n.cell}
	}
	var out []string
	for _, c := range n.children {
		out = append(out, c.cells()...)
	}
	return out
}

func (n node) collect(groups *[]Group, dividers *[]Divider) {
	if n.cell != "" {
		return
	}
	*groups = append(*groups, Group{ID: n.group, Axis: n.axis, Size: len(n.children)})
	slots := make([][]string, len(n.children))
	for i, c := range n.children {
		slots[i] = c.cells()
	}
	*dividers = append(*dividers, chain(n.group, n.axis, slots)...)
	for _, c := range n.children {
		c.collect(groups, dividers)
	}
}

func (n node) fill(p Proportions, gap float64, xs, ys Span, out map[string]CellGeometry) {
	if n.cell != "" {
		out[n.cell] = CellGeometry{Left: xs.Start, Width: xs.Size, Top: ys.Start, Height: ys.Size}
		return
	}
	if n.axis == Horizontal {
		for i, s := range split(xs, p[n.group], gap) {
			n.children[i].fill(p, gap, s, ys, out)
		}
		return
	}
	for i, s := range split(ys, p[n.group], gap) {
		n.children[i].fill(p, gap, xs, s, out)
	}
}

// nested builds a topology from an arbitrary tree of groups. Every group's
// shares are percentages of the span its parent assigned to it.
func nested(name, desc string, root node) *Topology {
	t := &Topology{
		Name:        name,
		Description: desc,
		Family:      FamilyNested,
		Cells:       root.cells(),
	}
	root.collect(&t.Groups, &t.Dividers)
	t.formula = func(p Proportions, gap float64) map[string]CellGeometry {
		out := make(map[string]CellGeometry, len(t.Cells))
		root.fill(p, gap, full, full, out)
		return out
	}
	return t
}
