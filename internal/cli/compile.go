package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// compileCommand creates the compile command for printing cell geometry.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		sets   []string
		gap    float64
		width  float64
		height float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "compile <topology>",
		Short: "Print the CSS geometry of every cell",
		Long: `Compile a topology into per-cell geometry.

Group vectors default to an equal split; override them with --set, e.g.

  dashgrid compile L-shape-left-large --set main=60,40 --set stack=50,50

With --width and --height the geometry is also resolved to pixels.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := grid.Lookup(args[0])
			if err != nil {
				return err
			}
			p, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("gap") {
				gap = c.cfg.Grid.GapPx
			}
			cells, err := t.Compile(p, grid.Options{GapPx: gap})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cells)
			}
			fmt.Fprintln(out, renderGeometryTable(t, cells, width, height))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "group vector as group=p1,p2,... (repeatable)")
	cmd.Flags().Float64Var(&gap, "gap", 0, "gap between cells in pixels (default: grid.gap_px from config)")
	cmd.Flags().Float64Var(&width, "width", 0, "container width in pixels")
	cmd.Flags().Float64Var(&height, "height", 0, "container height in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// parseAssignments parses repeated group=p1,p2,... flags.
func parseAssignments(sets []string) (grid.Proportions, error) {
	p := make(grid.Proportions, len(sets))
	for _, s := range sets {
		group, list, ok := strings.Cut(s, "=")
		if !ok || group == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "expected group=p1,p2,..., got %q", s)
		}
		v, err := parseVector(strings.Split(list, ","))
		if err != nil {
			return nil, err
		}
		p[group] = v
	}
	return p, nil
}

// parseVector parses proportions given as separate arguments or a single
// comma or slash separated list ("70,30", "70/30").
func parseVector(args []string) (proportion.Vector, error) {
	if len(args) == 1 {
		args = strings.FieldsFunc(args[0], func(r rune) bool { return r == ',' || r == '/' })
	}
	v := make(proportion.Vector, 0, len(args))
	for _, a := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidProportions, "%q is not a number", a)
		}
		v = append(v, f)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// renderGeometryTable renders one row per cell in topology order. Pixel
// columns are added when both w and h are positive.
func renderGeometryTable(t *grid.Topology, cells map[string]grid.CellGeometry, w, h float64) string {
	pixels := w > 0 && h > 0
	headers := []string{"Cell", "Left", "Top", "Width", "Height"}
	if pixels {
		headers = append(headers, "Pixels")
	}

	rows := make([][]string, 0, len(t.Cells))
	for _, id := range t.Cells {
		g := cells[id]
		row := []string{id, g.Left.String(), g.Top.String(), g.Width.String(), g.Height.String()}
		if pixels {
			r := g.Resolve(w, h)
			row = append(row, fmt.Sprintf("%.0f,%.0f %.0f×%.0f", r.X, r.Y, r.W, r.H))
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		}).
		Render()
}
