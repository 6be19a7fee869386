package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dashgrid/internal/config"
	"github.com/matzehuels/dashgrid/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve topologies, geometry and layouts over HTTP",
		Long: `Serve the dashgrid HTTP API backed by the configured store.

Boards configured with the http store backend persist through this server.
Compile results are cached in the configured local cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	if c.cfg.Store.Backend == config.StoreHTTP {
		return fmt.Errorf("serve needs a storage backend, not %q", config.StoreHTTP)
	}

	st, err := c.cfg.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open %s store: %w", c.cfg.Store.Backend, err)
	}
	defer st.Close()

	cc, err := c.cfg.OpenCache(ctx)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", c.cfg.Cache.Backend, err)
	}
	defer cc.Close()

	srv := server.New(st,
		server.WithLogger(c.Logger),
		server.WithCache(cc, server.DefaultCompileTTL),
		server.WithKeyer(c.cfg.Keyer()),
	)
	printInfo("Serving on %s (store: %s)", StyleHighlight.Render(addr), c.cfg.Store.Backend)

	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}
