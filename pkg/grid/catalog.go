package grid

import "fmt"

var numberWords = map[int]string{
	2: "two", 3: "three", 4: "four", 5: "five", 6: "six", 7: "seven", 8: "eight",
}

func init() {
	for n := 2; n <= 8; n++ {
		register(linear(numberWords[n]+"-columns", fmt.Sprintf("%d columns side by side", n), Horizontal, n))
	}
	for n := 2; n <= 8; n++ {
		register(linear(numberWords[n]+"-rows", fmt.Sprintf("%d rows stacked top to bottom", n), Vertical, n))
	}

	for _, side := range []Side{SideLeft, SideRight, SideTop, SideBottom} {
		register(composite(
			fmt.Sprintf("L-shape-%s-large", side),
			fmt.Sprintf("Large panel on the %s, two stacked panels beside it", side),
			side, 2, false,
		))
	}
	for _, n := range []int{3, 4} {
		for _, side := range []Side{SideLeft, SideRight, SideTop, SideBottom} {
			register(composite(
				fmt.Sprintf("large-%s-%s-stack", side, numberWords[n]),
				fmt.Sprintf("Large panel on the %s, %d stacked panels beside it", side, n),
				side, n, false,
			))
		}
	}
	register(composite("large-left-strip-two", "Large panel on the left, two columns sharing the rest", SideLeft, 2, true))
	register(composite("large-left-strip-three", "Large panel on the left, three columns sharing the rest", SideLeft, 3, true))
	register(composite("large-top-strip-two", "Large panel on top, two rows sharing the rest", SideTop, 2, true))

	for _, g := range []struct {
		name       string
		rows, cols int
	}{
		{"four-grid", 2, 2},
		{"six-grid", 2, 3},
		{"nine-grid", 3, 3},
		{"twelve-grid", 3, 4},
		{"sixteen-grid", 4, 4},
		{"twenty-grid", 4, 5},
		{"twenty-four-grid", 4, 6},
		{"thirty-two-grid", 4, 8},
	} {
		register(grid(g.name, fmt.Sprintf("%d×%d grid with independently sized rows", g.rows, g.cols), g.rows, g.cols))
	}

	register(nested("three-columns-center-stack", "Three columns, the center one split into two rows",
		branch(MainGroup, Horizontal,
			leaf("left"),
			branch("center", Vertical, leaf("center-top"), leaf("center-bottom")),
			leaf("right"),
		)))
	register(nested("split-columns-stacked", "Two columns, two rows on the left and three on the right",
		branch(MainGroup, Horizontal,
			branch("left", Vertical, leaf("left-top"), leaf("left-bottom")),
			branch("right", Vertical, leaf("right-top"), leaf("right-middle"), leaf("right-bottom")),
		)))
	register(nested("header-three-columns-footer", "Header and footer around three body columns",
		branch(MainGroup, Vertical,
			leaf("header"),
			branch("body", Horizontal, leaf("left"), leaf("center"), leaf("right")),
			leaf("footer"),
		)))
	register(nested("sidebar-two-rows", "Sidebar beside a content area whose lower row is split in two",
		branch(MainGroup, Horizontal,
			leaf("sidebar"),
			branch("content", Vertical,
				leaf("top"),
				branch("bottom", Horizontal, leaf("bottom-left"), leaf("bottom-right")),
			),
		)))
	register(nested("header-sidebar-content", "Header above a sidebar and a content panel",
		branch(MainGroup, Vertical,
			leaf("header"),
			branch("body", Horizontal, leaf("sidebar"), leaf("content")),
		)))
}
