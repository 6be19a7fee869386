package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

func TestParseVector(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    proportion.Vector
		wantErr bool
	}{
		{"separate args", []string{"70", "30"}, proportion.Vector{70, 30}, false},
		{"comma list", []string{"25,50,25"}, proportion.Vector{25, 50, 25}, false},
		{"slash list", []string{"60/40"}, proportion.Vector{60, 40}, false},
		{"spaces around commas", []string{"60, 40"}, proportion.Vector{60, 40}, false},
		{"fractional", []string{"33.33", "33.33", "33.34"}, proportion.Vector{33.33, 33.33, 33.34}, false},
		{"not a number", []string{"60", "forty"}, nil, true},
		{"bad sum", []string{"60,30"}, nil, true},
		{"negative", []string{"120,-20"}, nil, true},
		{"empty", []string{""}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVector(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseVector(%q) = %v, want error", tt.args, got)
				}
				if code := errors.GetCode(err); code != errors.ErrCodeInvalidProportions {
					t.Errorf("code = %q, want %q", code, errors.ErrCodeInvalidProportions)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVector(%q): %v", tt.args, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseVector(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	p, err := parseAssignments([]string{"main=60,40", "stack=30/70"})
	if err != nil {
		t.Fatalf("parseAssignments: %v", err)
	}
	want := grid.Proportions{
		"main":  {60, 40},
		"stack": {30, 70},
	}
	for g, v := range want {
		if !p[g].Equal(v) {
			t.Errorf("%s = %v, want %v", g, p[g], v)
		}
	}

	for _, bad := range []string{"main", "=50,50", "main=50,40"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Errorf("parseAssignments(%q) succeeded, want error", bad)
		}
	}
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps([]string{"-60", "12.5", "+3"})
	if err != nil {
		t.Fatalf("parseSteps: %v", err)
	}
	want := []float64{-60, 12.5, 3}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %g, want %g", i, steps[i], want[i])
		}
	}

	_, err = parseSteps([]string{"10", "left"})
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeInvalidInput)
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		v     proportion.Vector
		width int
	}{
		{proportion.Vector{50, 50}, 10},
		{proportion.Vector{33.33, 33.33, 33.34}, 40},
		{proportion.Vector{5, 95}, 40},
		{proportion.Vector{100}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			if n := strings.Count(renderBar(tt.v, tt.width), "█"); n != tt.width {
				t.Errorf("bar has %d blocks, want %d", n, tt.width)
			}
		})
	}
}

func TestRenderGeometryTable(t *testing.T) {
	topo, err := grid.Lookup("two-columns")
	if err != nil {
		t.Fatal(err)
	}
	cells, err := topo.Compile(grid.Proportions{"main": {60, 40}}, grid.Options{})
	if err != nil {
		t.Fatal(err)
	}

	out := renderGeometryTable(topo, cells, 1000, 500)
	for _, want := range []string{"col-1", "col-2", "60%", "40%", "Pixels", "600×500"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(renderGeometryTable(topo, cells, 0, 0), "Pixels") {
		t.Error("pixel column rendered without a container size")
	}
}

func TestDescribeMarkdown(t *testing.T) {
	topo, err := grid.Lookup("L-shape-left-large")
	if err != nil {
		t.Fatal(err)
	}
	md, err := describeMarkdown(topo)
	if err != nil {
		t.Fatalf("describeMarkdown: %v", err)
	}
	for _, want := range []string{
		"# L-shape-left-large",
		"## Groups",
		"`main`",
		"`stack`",
		"`main:0`",
		"`stack:0`",
		"| `large` |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
