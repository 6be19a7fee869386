package resize

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// Defaults for controller options.
const (
	DefaultMinPixels      = 48
	DefaultMinPercent     = 5
	DefaultSuppressWindow = 500 * time.Millisecond
	DefaultAbandonAfter   = 30 * time.Second
)

// Persister receives the final vector of every committed drag and returns
// the revision it was stored under.
type Persister interface {
	Persist(ctx context.Context, v proportion.Vector) (revision string, err error)
}

// PersisterFunc adapts a function to [Persister].
type PersisterFunc func(ctx context.Context, v proportion.Vector) (string, error)

// Persist calls f.
func (f PersisterFunc) Persist(ctx context.Context, v proportion.Vector) (string, error) {
	return f(ctx, v)
}

// Option configures a controller.
type Option func(*options)

type options struct {
	name           string
	minPixels      float64
	minPercent     float64
	suppressWindow time.Duration
	abandonAfter   time.Duration
	tolerance      float64
	now            func() time.Time
	persister      Persister
	pointer        PointerSource
	onChange       func(proportion.Vector)
	logger         *log.Logger
}

func defaultOptions(tolerance float64) options {
	return options{
		minPixels:      DefaultMinPixels,
		minPercent:     DefaultMinPercent,
		suppressWindow: DefaultSuppressWindow,
		abandonAfter:   DefaultAbandonAfter,
		tolerance:      tolerance,
		now:            time.Now,
		logger:         log.Default(),
	}
}

// WithName labels the controller in logs and hooks, e.g. "four-grid/rows".
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMinPixels sets the minimum cell size in pixels.
func WithMinPixels(px float64) Option {
	return func(o *options) { o.minPixels = px }
}

// WithMinPercent sets the minimum cell size in percent, applied even when
// the pixel minimum is smaller.
func WithMinPercent(p float64) Option {
	return func(o *options) { o.minPercent = p }
}

// WithSuppressWindow sets how long a committed vector is treated as an echo.
func WithSuppressWindow(d time.Duration) Option {
	return func(o *options) { o.suppressWindow = d }
}

// WithAbandonAfter sets the inactivity after which a session without
// pointer-up is dropped by the next Begin. Zero disables it.
func WithAbandonAfter(d time.Duration) Option {
	return func(o *options) { o.abandonAfter = d }
}

// WithTolerance overrides the guard tolerance.
func WithTolerance(points float64) Option {
	return func(o *options) { o.tolerance = points }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPersister sets where committed vectors go.
func WithPersister(p Persister) Option {
	return func(o *options) { o.persister = p }
}

// WithPointer subscribes the controller to pointer events for the duration
// of each drag session.
func WithPointer(src PointerSource) Option {
	return func(o *options) { o.pointer = src }
}

// OnChange registers the publish callback. It runs synchronously, outside
// the controller lock, on every move and every adopted external vector.
func OnChange(fn func(proportion.Vector)) Option {
	return func(o *options) { o.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
