package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/board"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// dragOptions holds the flags of the drag command.
type dragOptions struct {
	width   float64
	height  float64
	save    bool
	abandon bool
}

// dragCommand creates the drag command for replaying a scripted drag.
func (c *CLI) dragCommand() *cobra.Command {
	opts := dragOptions{}

	cmd := &cobra.Command{
		Use:   "drag <topology> <divider> <step>...",
		Short: "Replay a divider drag and print every published vector",
		Long: `Replay a divider drag on a simulated board.

The pointer grabs the centre of the divider and moves by each step in
pixels along the divider's axis; steps accumulate. Dividers are named
group:index, see 'dashgrid topology describe'.

  dashgrid drag three-columns main:0 -- -60 -120

With --save the board is loaded from and committed to the configured
store, exactly like an interactive drag.`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args[2:])
			if err != nil {
				return err
			}
			return c.runDrag(cmd.Context(), args[0], args[1], steps, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", defaultWidth, "container width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", defaultHeight, "container height in pixels")
	cmd.Flags().BoolVar(&opts.save, "save", false, "load and persist through the configured store")
	cmd.Flags().BoolVar(&opts.abandon, "abandon", false, "drop the drag instead of committing it")
	return cmd
}

func parseSteps(args []string) ([]float64, error) {
	steps := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "step %q is not a pixel offset", a)
		}
		steps[i] = f
	}
	return steps, nil
}

// runDrag builds a board, replays the steps and commits or abandons.
func (c *CLI) runDrag(ctx context.Context, topology, dividerID string, steps []float64, opts dragOptions) error {
	boardOpts := []board.Option{
		board.WithGap(c.cfg.Grid.GapPx),
		board.WithLogger(c.Logger),
		board.WithResizeOptions(c.cfg.ResizeOptions()...),
	}
	if opts.save {
		gw, err := c.openGateway(ctx)
		if err != nil {
			return err
		}
		defer gw.Close()
		boardOpts = append(boardOpts, board.WithPersistence(gw))
	}

	b, err := board.New(topology, boardOpts...)
	if err != nil {
		return err
	}
	if err := b.Load(ctx); err != nil {
		return err
	}

	d, ok := b.Topology().Divider(dividerID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidDivider, "topology %s has no divider %q", topology, dividerID)
	}
	x, y, err := b.DividerPoint(d.ID, opts.width, opts.height)
	if err != nil {
		return err
	}

	printVector(fmt.Sprintf("%s start", d.Group), b.Proportions()[d.Group])
	if err := b.BeginDrag(d.ID, x, y, opts.width, opts.height); err != nil {
		return err
	}

	for i, step := range steps {
		if d.Axis == grid.Horizontal {
			x += step
		} else {
			y += step
		}
		v, ok := b.Move(x, y)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "drag ended before step %d", i+1)
		}
		printVector(fmt.Sprintf("%s step %d (%+g px)", d.Group, i+1, step), v)
	}

	if opts.abandon {
		b.AbandonDrag()
		printWarning("Drag abandoned")
		printVector(fmt.Sprintf("%s restored", d.Group), b.Proportions()[d.Group])
		return nil
	}

	final, err := b.EndDrag(ctx)
	if err != nil {
		return err
	}
	printSuccess("Drag committed")
	printKeyValue("divider", d.ID)
	printKeyValue("vector", proportion.Format(final))
	if opts.save {
		printDetail("Saved as %s/%s", topology, d.Group)
	}
	return nil
}
