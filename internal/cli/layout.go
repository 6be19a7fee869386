package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/persist"
	"github.com/matzehuels/dashgrid/pkg/proportion"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// layoutCommand creates the command for managing persisted layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Read and write persisted group vectors",
		Long: `Read and write the proportion vectors persisted for a topology.

Writes go to the local cache first and then to the configured store, the
same path a committed drag takes. Reads prefer the store and fall back to
the cache; groups without a record use an equal split.`,
	}

	cmd.AddCommand(c.layoutGetCommand())
	cmd.AddCommand(c.layoutSetCommand())
	cmd.AddCommand(c.layoutResetCommand())
	cmd.AddCommand(c.layoutImportCommand())
	cmd.AddCommand(c.layoutExportCommand())

	return cmd
}

// withGateway opens the gateway, runs fn and closes it, waiting for
// pending remote writes.
func (c *CLI) withGateway(ctx context.Context, fn func(*persist.Gateway) error) error {
	gw, err := c.openGateway(ctx)
	if err != nil {
		return err
	}
	err = fn(gw)
	if cerr := gw.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if gw.Degraded() {
		printWarning("Remote store is unreachable; changes are kept in the local cache")
	}
	return err
}

// selectGroups resolves an optional group argument to the groups it names.
func selectGroups(t *grid.Topology, args []string) ([]grid.Group, error) {
	if len(args) == 0 {
		return t.Groups, nil
	}
	g, ok := t.Group(args[0])
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidGroup, "topology %s has no group %q", t.Name, args[0])
	}
	return []grid.Group{g}, nil
}

// loadDocument reads every group of t, defaulting absent ones.
func loadDocument(ctx context.Context, gw *persist.Gateway, t *grid.Topology, groups []grid.Group) (*store.Document, map[string]bool, error) {
	doc := &store.Document{Topology: t.Name, Groups: make(map[string]proportion.Vector, len(groups))}
	found := make(map[string]bool, len(groups))
	for _, g := range groups {
		rec, ok, err := gw.Load(ctx, t.Name, g.ID)
		if err != nil {
			return nil, nil, err
		}
		if ok && rec.Sizes.ValidateLen(g.Size) == nil {
			doc.Groups[g.ID] = rec.Sizes
			found[g.ID] = true
			continue
		}
		doc.Groups[g.ID] = proportion.Equal(g.Size)
	}
	return doc, found, nil
}

// layoutGetCommand creates the "layout get" subcommand.
func (c *CLI) layoutGetCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "get <topology> [group]",
		Short:             "Print the persisted vectors of a topology",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := grid.Lookup(args[0])
			if err != nil {
				return err
			}
			groups, err := selectGroups(t, args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withGateway(ctx, func(gw *persist.Gateway) error {
				doc, found, err := loadDocument(ctx, gw, t, groups)
				if err != nil {
					return err
				}
				if asJSON {
					return writeDocument(cmd.OutOrStdout(), doc)
				}
				for _, g := range groups {
					label := g.ID
					if !found[g.ID] {
						label += " (default)"
					}
					printVector(label, doc.Groups[g.ID])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print a layout document")
	return cmd
}

// layoutSetCommand creates the "layout set" subcommand.
func (c *CLI) layoutSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <topology> <group> <proportions>...",
		Short: "Persist a group vector",
		Long: `Persist a group vector. Proportions are given as separate arguments or as
one list:

  dashgrid layout set two-columns main 70 30
  dashgrid layout set three-columns main 25,50,25`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := grid.Lookup(args[0])
			if err != nil {
				return err
			}
			groups, err := selectGroups(t, args[1:2])
			if err != nil {
				return err
			}
			g := groups[0]
			v, err := parseVector(args[2:])
			if err != nil {
				return err
			}
			if err := v.ValidateLen(g.Size); err != nil {
				return err
			}

			ctx := cmd.Context()
			return c.withGateway(ctx, func(gw *persist.Gateway) error {
				receipt, err := gw.Save(ctx, t.Name, g.ID, v)
				if err != nil {
					return err
				}
				printSuccess("Saved %s", receipt.Key)
				printVector(g.ID, v)
				printKeyValue("revision", receipt.Revision)
				return nil
			})
		},
	}
}

// layoutResetCommand creates the "layout reset" subcommand.
func (c *CLI) layoutResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "reset <topology> [group]",
		Short:             "Delete persisted vectors so groups return to an equal split",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := grid.Lookup(args[0])
			if err != nil {
				return err
			}
			groups, err := selectGroups(t, args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withGateway(ctx, func(gw *persist.Gateway) error {
				for _, g := range groups {
					if err := gw.Delete(ctx, t.Name, g.ID); err != nil {
						return err
					}
				}
				printSuccess("Reset %d group(s) of %s", len(groups), t.Name)
				return nil
			})
		},
	}
}

// layoutImportCommand creates the "layout import" subcommand.
func (c *CLI) layoutImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Persist every group of a layout document",
		Long: `Persist every group of a layout document:

  {"topology": "four-grid", "groups": {"rows": [40, 60], "row-1": [50, 50]}}

The document is validated as a whole before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			doc, err := store.ParseDocument(data)
			if err != nil {
				return err
			}
			if err := checkDocument(doc); err != nil {
				return err
			}

			ctx := cmd.Context()
			prog := newProgress(c.Logger)
			return c.withGateway(ctx, func(gw *persist.Gateway) error {
				for _, rec := range doc.Records() {
					if _, err := gw.Save(ctx, rec.Topology, rec.Group, rec.Sizes); err != nil {
						return err
					}
				}
				prog.done(fmt.Sprintf("Imported %d layouts", len(doc.Groups)))
				printSuccess("Imported %s", doc.Topology)
				return nil
			})
		},
	}
}

// layoutExportCommand creates the "layout export" subcommand.
func (c *CLI) layoutExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "export <topology>",
		Short:             "Write every group vector of a topology as a layout document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTopologies,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := grid.Lookup(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withGateway(ctx, func(gw *persist.Gateway) error {
				doc, _, err := loadDocument(ctx, gw, t, t.Groups)
				if err != nil {
					return err
				}
				if output == "" {
					return writeDocument(cmd.OutOrStdout(), doc)
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := writeDocument(f, doc); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printSuccess("Layout exported")
				printFile(output)
				printNextStep("Restore it with", "dashgrid layout import "+output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// checkDocument verifies a parsed document against its topology.
func checkDocument(doc *store.Document) error {
	t, err := grid.Lookup(doc.Topology)
	if err != nil {
		return err
	}
	for id, v := range doc.Groups {
		g, ok := t.Group(id)
		if !ok {
			return errors.New(errors.ErrCodeInvalidGroup, "topology %s has no group %q", t.Name, id)
		}
		if err := v.ValidateLen(g.Size); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProportions, err, "group %s", id)
		}
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeDocument(w io.Writer, doc *store.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
