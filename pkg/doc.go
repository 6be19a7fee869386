// Package pkg provides the core libraries for dashgrid dashboard layouts.
//
// # Overview
//
// Dashgrid arranges dashboard panels in named topologies, lets users drag
// the dividers between panels, and persists the resulting proportions. The
// pkg directory is organized into four areas:
//
//  1. [grid] and [proportion] - Topologies, proportion vectors and the
//     compiler that turns them into CSS geometry
//  2. [resize] - Drag controllers and the guard that decides whether an
//     externally loaded vector may replace the displayed one
//  3. [persist], [cache] and [store] - The write-through gateway with its
//     local cache tier and remote layout stores
//  4. [board] - A topology with live controllers, hit testing and
//     persistence wired together
//
// # Architecture
//
// The data flow of a drag:
//
//	pointer down on a divider
//	         ↓
//	    [board] (hit test, pick the group controller)
//	         ↓
//	    [resize] (clamped vector per pointer move)
//	         ↓
//	    [grid] (compile the new vector into cell geometry)
//	         ↓
//	pointer up → [persist] (local cache, then remote store)
//
// A load goes the other way: [persist] reads the remote store, falls back to
// the cache, and [resize] decides whether the loaded vector is adopted.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/dashgrid/pkg/board"
//	    "github.com/matzehuels/dashgrid/pkg/cache"
//	    "github.com/matzehuels/dashgrid/pkg/persist"
//	    "github.com/matzehuels/dashgrid/pkg/store"
//	)
//
//	gw := persist.New(cache.NewNullCache(), store.NewMemory())
//	defer gw.Close()
//
//	b, _ := board.New("L-shape-left-large", board.WithPersistence(gw))
//	_ = b.Load(ctx)
//
//	x, y, _ := b.DividerPoint("main:0", 1200, 800)
//	_ = b.BeginDrag("main:0", x, y, 1200, 800)
//	b.Move(x+120, y)
//	v, _ := b.EndDrag(ctx) // [60 40], saved
//
// # Main Packages
//
// [grid] - The topology registry (linear, composite, grid and nested
// families), the geometry compiler and Graphviz rendering of the cell
// adjacency graph.
//
// [proportion] - Percentage vectors: validation, equal splits, clamping and
// the four-decimal key used for idempotent comparison.
//
// [resize] - Pair and group controllers sharing one drag engine, pointer
// fan-out, and the sync guard with its suppression window.
//
// [persist] - The gateway: write-through saves with revision receipts,
// remote loads with retries, and degraded-mode tracking.
//
// [cache] - Local tiers: JSON files, SQLite, or none.
//
// [store] - Remote layout stores: memory, files, Redis, MongoDB, PostgreSQL
// and an HTTP client for the dashgrid server.
//
// [board] - Topology plus controllers plus persistence, as used by the CLI,
// the terminal board and tests.
//
// ## Infrastructure
//
// [errors] - Coded errors with HTTP status mapping.
//
// [httputil] - Retrying JSON HTTP client.
//
// [observability] - Hooks for persistence and drag events.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/resize/...   # Specific package
//	go test -run Example       # Examples only
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/grid
// [proportion]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/proportion
// [resize]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/resize
// [persist]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/persist
// [cache]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/store
// [board]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/board
// [errors]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dashgrid/pkg/buildinfo
package pkg
