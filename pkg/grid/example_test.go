package grid_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

func ExampleCompile() {
	cells, err := grid.Compile("three-columns", grid.Proportions{
		grid.MainGroup: proportion.Of(25, 50, 25),
	}, grid.Options{GapPx: 4})
	if err != nil {
		panic(err)
	}

	for _, id := range grid.MustLookup("three-columns").Cells {
		g := cells[id]
		fmt.Printf("%s left=%s width=%s\n", id, g.Left, g.Width)
	}
	// Output:
	// col-1 left=0% width=25%
	// col-2 left=calc(25% + 4px) width=calc(50% - 4px)
	// col-3 left=calc(75% + 4px) width=calc(25% - 4px)
}

func ExampleCompile_composite() {
	// The stack's shares are relative to the stack's own 40%.
	cells := grid.MustCompile("large-left-strip-two", grid.Proportions{
		grid.MainGroup:  proportion.Of(60, 40),
		grid.StackGroup: proportion.Of(50, 50),
	}, grid.Options{})

	fmt.Println(cells["stack-1"].Width, cells["stack-2"].Left)
	// Output:
	// 20% 80%
}

func ExampleTopology_Defaults() {
	t := grid.MustLookup("header-three-columns-footer")
	p := t.Defaults()
	for _, g := range t.Groups {
		fmt.Println(g.ID, g.Axis, p[g.ID])
	}
	// Output:
	// main vertical [33.33 33.33 33.33]
	// body horizontal [33.33 33.33 33.33]
}

func ExampleToDOT() {
	dot := grid.ToDOT(grid.MustLookup("two-columns"))
	fmt.Println(strings.Contains(dot, `"col-1" -- "div:main:0"`))
	// Output:
	// true
}
