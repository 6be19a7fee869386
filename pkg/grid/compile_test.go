package grid

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

const eps = 1e-6

func randomProportions(t *Topology, rng *rand.Rand) Proportions {
	p := make(Proportions, len(t.Groups))
	for _, g := range t.Groups {
		v := make(proportion.Vector, g.Size)
		for i := range v {
			v[i] = 0.2 + rng.Float64()
		}
		p[g.ID] = v.Normalize()
	}
	return p
}

func TestCatalog(t *testing.T) {
	names := Names()
	if len(names) < 40 {
		t.Fatalf("catalog has %d topologies, want at least 40", len(names))
	}
	families := map[Family]int{}
	for _, top := range All() {
		families[top.Family]++
		if n := len(top.Cells); n < MinCells || n > MaxCells {
			t.Errorf("%s: %d cells", top.Name, n)
		}
	}
	for _, f := range []Family{FamilyLinear, FamilyComposite, FamilyGrid, FamilyNested} {
		if families[f] == 0 {
			t.Errorf("no topology of family %s", f)
		}
	}
	if top := MustLookup("thirty-two-grid"); len(top.Cells) != 32 {
		t.Errorf("thirty-two-grid has %d cells", len(top.Cells))
	}
}

func TestTilingWithoutGap(t *testing.T) {
	const w, h = 1200.0, 800.0
	rng := rand.New(rand.NewSource(7))

	for _, top := range All() {
		t.Run(top.Name, func(t *testing.T) {
			inputs := []Proportions{top.Defaults()}
			for i := 0; i < 5; i++ {
				inputs = append(inputs, randomProportions(top, rng))
			}
			for _, p := range inputs {
				cells, err := top.Compile(p, Options{})
				if err != nil {
					t.Fatalf("Compile: %v", err)
				}
				if len(cells) != len(top.Cells) {
					t.Fatalf("compiled %d cells, want %d", len(cells), len(top.Cells))
				}
				rs := Resolve(cells, w, h)
				var area float64
				for id, r := range rs {
					area += r.Area()
					if r.X < -eps || r.Y < -eps || r.Right() > w+eps || r.Bottom() > h+eps {
						t.Errorf("%s outside container: %+v", id, r)
					}
				}
				if math.Abs(area-w*h) > eps*w*h {
					t.Errorf("cell areas sum to %v, want %v", area, w*h)
				}
				assertNoOverlap(t, rs)
			}
		})
	}
}

func TestTilingWithGap(t *testing.T) {
	const w, h, gap = 4000.0, 3000.0, 4.0

	for _, top := range All() {
		t.Run(top.Name, func(t *testing.T) {
			cells, err := top.Compile(top.Defaults(), Options{GapPx: gap})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			rs := Resolve(cells, w, h)
			var area float64
			for id, r := range rs {
				if r.W <= 0 || r.H <= 0 {
					t.Fatalf("%s degenerate: %+v", id, r)
				}
				area += r.Area()
			}
			assertNoOverlap(t, rs)
			uncovered := w*h - area
			if limit := float64(len(top.Dividers)) * gap * math.Max(w, h); uncovered > limit+eps {
				t.Errorf("uncovered area %v exceeds divider strips %v", uncovered, limit)
			}
		})
	}
}

func assertNoOverlap(t *testing.T, rs map[string]Rect) {
	t.Helper()
	ids := make([]string, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if a := rs[ids[i]].Intersect(rs[ids[j]]).Area(); a > eps {
				t.Errorf("%s and %s overlap by %v", ids[i], ids[j], a)
			}
		}
	}
}

func TestDividersSeparateAdjacentCells(t *testing.T) {
	const w, h = 1000.0, 1000.0
	for _, top := range All() {
		t.Run(top.Name, func(t *testing.T) {
			rs := Resolve(MustCompile(top.Name, nil, Options{}), w, h)
			for _, d := range top.Dividers {
				before, after := bounds(rs, d.Before), bounds(rs, d.After)
				var edge, start float64
				if d.Axis == Horizontal {
					edge, start = before.Right(), after.X
				} else {
					edge, start = before.Bottom(), after.Y
				}
				if math.Abs(edge-start) > eps {
					t.Errorf("divider %s: before ends at %v, after starts at %v", d.ID, edge, start)
				}
			}
		})
	}
}

func bounds(rs map[string]Rect, ids []string) Rect {
	u := rs[ids[0]]
	for _, id := range ids[1:] {
		u = u.Union(rs[id])
	}
	return u
}

func TestCompileIdempotent(t *testing.T) {
	p := Proportions{MainGroup: proportion.Of(60, 40), StackGroup: proportion.Of(30, 70)}
	a, err := Compile("L-shape-left-large", p, Options{GapPx: 3})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Compile("L-shape-left-large", p, Options{GapPx: 3})
	if !reflect.DeepEqual(a, b) {
		t.Error("Compile is not deterministic")
	}

	p[MainGroup][0] = 10
	c, _ := Compile("L-shape-left-large", Proportions{MainGroup: proportion.Of(60, 40), StackGroup: proportion.Of(30, 70)}, Options{GapPx: 3})
	if !reflect.DeepEqual(a, c) {
		t.Error("compiled output shares storage with the input")
	}
}

func TestCompositeTwoLevel(t *testing.T) {
	p := Proportions{MainGroup: proportion.Of(60, 40), StackGroup: proportion.Of(50, 50)}

	t.Run("across", func(t *testing.T) {
		cells := MustCompile("L-shape-left-large", p, Options{})
		rs := Resolve(cells, 1000, 500)
		for _, id := range []string{"stack-1", "stack-2"} {
			if share := rs[id].Area() / (1000 * 500); math.Abs(share-0.2) > eps {
				t.Errorf("%s covers %v of the container, want 0.2", id, share)
			}
		}
		if got := cells["stack-2"]; got.Left.String() != "60%" || got.Top.String() != "50%" || got.Width.String() != "40%" {
			t.Errorf("stack-2 = %+v", got)
		}
	})

	t.Run("inline", func(t *testing.T) {
		cells := MustCompile("large-left-strip-two", p, Options{})
		if got := cells["stack-1"].Width.Percent; got != 20 {
			t.Errorf("stack-1 width = %v%%, want 20%%", got)
		}
		if got := cells["stack-2"].Left.Percent; got != 80 {
			t.Errorf("stack-2 left = %v%%, want 80%%", got)
		}
	})

	t.Run("inline with gap", func(t *testing.T) {
		cells := MustCompile("large-left-strip-two", p, Options{GapPx: 4})
		want := map[string][2]string{
			"large":   {"0%", "60%"},
			"stack-1": {"calc(60% + 4px)", "calc(20% - 2px)"},
			"stack-2": {"calc(80% + 6px)", "calc(20% - 6px)"},
		}
		for id, w := range want {
			g := cells[id]
			if g.Left.String() != w[0] || g.Width.String() != w[1] {
				t.Errorf("%s left/width = %s/%s, want %s/%s", id, g.Left, g.Width, w[0], w[1])
			}
		}
	})
}

func TestLinearGap(t *testing.T) {
	cells := MustCompile("three-columns", Proportions{MainGroup: proportion.Of(25, 50, 25)}, Options{GapPx: 4})
	tests := []struct {
		cell        string
		left, width string
	}{
		{"col-1", "0%", "25%"},
		{"col-2", "calc(25% + 4px)", "calc(50% - 4px)"},
		{"col-3", "calc(75% + 4px)", "calc(25% - 4px)"},
	}
	for _, tt := range tests {
		g := cells[tt.cell]
		if g.Left.String() != tt.left || g.Width.String() != tt.width {
			t.Errorf("%s = %s/%s, want %s/%s", tt.cell, g.Left, g.Width, tt.left, tt.width)
		}
		if g.Top.String() != "0%" || g.Height.String() != "100%" {
			t.Errorf("%s cross axis = %s/%s", tt.cell, g.Top, g.Height)
		}
	}
}

func TestGridRowsAreIndependent(t *testing.T) {
	cells := MustCompile("four-grid", Proportions{
		RowsGroup:   proportion.Of(30, 70),
		RowGroup(1): proportion.Of(20, 80),
	}, Options{})

	if got := cells["r1c2"]; got.Left.Percent != 20 || got.Height.Percent != 30 {
		t.Errorf("r1c2 = %+v", got)
	}
	// row-2 was omitted and falls back to an equal split
	if got := cells["r2c2"]; got.Left.Percent != 50 || got.Top.Percent != 30 || got.Height.Percent != 70 {
		t.Errorf("r2c2 = %+v", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		topology string
		p        Proportions
		opts     Options
		code     errors.Code
	}{
		{"unknown topology", "five-grid", nil, Options{}, errors.ErrCodeInvalidTopology},
		{"wrong length", "three-columns", Proportions{MainGroup: proportion.Of(50, 50)}, Options{}, errors.ErrCodeInvalidProportions},
		{"bad sum", "two-columns", Proportions{MainGroup: proportion.Of(50, 40)}, Options{}, errors.ErrCodeInvalidProportions},
		{"unknown group", "two-columns", Proportions{"sidebar": proportion.Of(50, 50)}, Options{}, errors.ErrCodeInvalidGroup},
		{"negative gap", "two-columns", nil, Options{GapPx: -1}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.topology, tt.p, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Compile error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestMustVariantsPanic(t *testing.T) {
	for name, fn := range map[string]func(){
		"MustLookup":  func() { MustLookup("no-such-topology") },
		"MustCompile": func() { MustCompile("no-such-topology", nil, Options{}) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", name)
				}
			}()
			fn()
		})
	}
}

func TestRegisterRejectsMalformed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("register accepted a duplicate name")
		}
	}()
	register(linear("two-columns", "duplicate", Horizontal, 2))
}

func TestGroupCells(t *testing.T) {
	top := MustLookup("L-shape-right-large")
	if got := top.GroupCells(MainGroup); !reflect.DeepEqual(got, []string{"large", "stack-1", "stack-2"}) {
		t.Errorf("GroupCells(main) = %v", got)
	}
	if got := top.GroupCells(StackGroup); !reflect.DeepEqual(got, []string{"stack-1", "stack-2"}) {
		t.Errorf("GroupCells(stack) = %v", got)
	}
	d, ok := top.Divider("main:0")
	if !ok || d.Before[0] != "stack-1" || d.After[0] != "large" {
		t.Errorf("main:0 = %+v", d)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	top := MustLookup("L-shape-left-large")
	top.Cells[0] = "mutated"
	top.Groups[0].Size = 9
	top.Dividers[0].Before[0] = "mutated"
	all := All()
	all[0].Cells[0] = "mutated"

	again := MustLookup("L-shape-left-large")
	if again.Cells[0] == "mutated" || again.Groups[0].Size == 9 || again.Dividers[0].Before[0] == "mutated" {
		t.Errorf("registry changed through a looked up topology: %+v", again)
	}
	if first := MustLookup(Names()[0]); first.Cells[0] == "mutated" {
		t.Error("registry changed through All")
	}
	if _, err := Compile("L-shape-left-large", nil, Options{}); err != nil {
		t.Errorf("Compile after mutating a copy: %v", err)
	}
}
