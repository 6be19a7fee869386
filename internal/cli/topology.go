package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// topologyCommand creates the topology inspection command.
func (c *CLI) topologyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topology",
		Aliases: []string{"topo"},
		Short:   "Inspect the registered panel topologies",
	}

	cmd.AddCommand(c.topologyListCommand())
	cmd.AddCommand(c.topologyDescribeCommand())
	cmd.AddCommand(c.topologyGraphCommand())

	return cmd
}

// topologyListCommand creates the "topology list" subcommand.
func (c *CLI) topologyListCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List topologies with their cells and groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			var topos []*grid.Topology
			for _, t := range grid.All() {
				if family == "" || string(t.Family) == family {
					topos = append(topos, t)
				}
			}
			if len(topos) == 0 {
				printWarning("No topologies in family %q", family)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTopologyTable(topos))
			printDetail("%d topologies", len(topos))
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "only list one family: linear, composite, grid, nested")
	return cmd
}

// renderTopologyTable renders one row per topology.
func renderTopologyTable(topos []*grid.Topology) string {
	rows := make([][]string, 0, len(topos))
	for _, t := range topos {
		groups := make([]string, len(t.Groups))
		for i, g := range t.Groups {
			groups[i] = fmt.Sprintf("%s(%d)", g.ID, g.Size)
		}
		rows = append(rows, []string{
			t.Name,
			string(t.Family),
			fmt.Sprint(len(t.Cells)),
			strings.Join(groups, " "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Topology", "Family", "Cells", "Groups").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorWhite)
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		}).
		Render()
}

// topologyDescribeCommand creates the "topology describe" subcommand.
func (c *CLI) topologyDescribeCommand() *cobra.Command {
	var (
		raw   bool
		width int
	)

	cmd := &cobra.Command{
		Use:               "describe <topology>",
		Short:             "Describe a topology: cells, groups, dividers and default geometry",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := grid.Lookup(args[0])
			if err != nil {
				return err
			}
			md, err := describeMarkdown(t)
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("create markdown renderer: %w", err)
			}
			out, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render description: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width")
	return cmd
}

// describeMarkdown documents a topology as markdown.
func describeMarkdown(t *grid.Topology) (string, error) {
	cells, err := t.Compile(nil, grid.Options{})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", t.Name, t.Description)
	fmt.Fprintf(&b, "Family: **%s**, %d cells, %d dividers.\n\n", t.Family, len(t.Cells), len(t.Dividers))

	b.WriteString("## Groups\n\n| Group | Axis | Size | Default |\n|---|---|---|---|\n")
	defaults := t.Defaults()
	for _, g := range t.Groups {
		fmt.Fprintf(&b, "| `%s` | %s | %d | %s |\n", g.ID, g.Axis, g.Size, proportion.Format(defaults[g.ID]))
	}

	b.WriteString("\n## Dividers\n\n| Divider | Between | And |\n|---|---|---|\n")
	for _, d := range t.Dividers {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", d.ID, strings.Join(d.Before, ", "), strings.Join(d.After, ", "))
	}

	b.WriteString("\n## Default geometry\n\n| Cell | Left | Top | Width | Height |\n|---|---|---|---|---|\n")
	for _, id := range t.Cells {
		g := cells[id]
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n", id, g.Left, g.Top, g.Width, g.Height)
	}
	return b.String(), nil
}

// topologyGraphCommand creates the "topology graph" subcommand.
func (c *CLI) topologyGraphCommand() *cobra.Command {
	var (
		output string
		dot    bool
	)

	cmd := &cobra.Command{
		Use:               "graph <topology>",
		Short:             "Render the cell adjacency graph of a topology",
		Long:              "Render the cells of a topology as graph nodes joined by the dividers between them, as Graphviz DOT or SVG.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd, args[0], output, dot)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <topology>.svg, or stdout with --dot)")
	cmd.Flags().BoolVar(&dot, "dot", false, "emit DOT source instead of SVG")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, cmd *cobra.Command, name, output string, dot bool) error {
	t, err := grid.Lookup(name)
	if err != nil {
		return err
	}
	src := grid.ToDOT(t)

	if dot {
		if output == "" {
			fmt.Fprint(cmd.OutOrStdout(), src)
			return nil
		}
		if err := os.WriteFile(output, []byte(src), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("DOT written")
		printFile(output)
		return nil
	}

	prog := newProgress(c.Logger)
	spinner := c.startSpinner(ctx, "Rendering graph...")
	svg, err := grid.RenderSVG(ctx, src)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered " + t.Name)

	if output == "" {
		output = t.Name + ".svg"
	}
	if err := os.WriteFile(output, svg, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Graph rendered")
	printFile(output)
	return nil
}

// completeTopologies completes the first argument with topology names.
func completeTopologies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, name := range grid.Names() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
