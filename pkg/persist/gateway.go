package persist

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/httputil"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/proportion"
	"github.com/matzehuels/dashgrid/pkg/resize"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// Defaults for gateway options.
const (
	DefaultDegradedAfter = 3
	DefaultRemoteTimeout = 10 * time.Second
)

// Load sources reported to hooks and logs.
const (
	SourceRemote  = "remote"
	SourceLocal   = "local"
	SourceDefault = "default"
)

// Receipt acknowledges a save.
type Receipt struct {
	Key      string
	Revision string
	SavedAt  time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithKeyer sets the keyer used for local cache keys.
func WithKeyer(k cache.Keyer) Option {
	return func(g *Gateway) {
		if k != nil {
			g.keyer = k
		}
	}
}

// WithDegradedAfter sets how many consecutive remote failures mark the
// gateway degraded.
func WithDegradedAfter(n int) Option {
	return func(g *Gateway) { g.degradedAfter = max(n, 1) }
}

// WithRemoteTimeout bounds each background remote write.
func WithRemoteTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.remoteTimeout = d }
}

// WithLoadRetry sets the attempts and initial backoff for remote reads.
func WithLoadRetry(attempts int, delay time.Duration) Option {
	return func(g *Gateway) {
		g.loadRetry.Attempts = attempts
		g.loadRetry.Delay = delay
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// Gateway combines a local cache with an optional remote store.
type Gateway struct {
	local  cache.Cache
	remote store.Store
	keyer  cache.Keyer
	logger *log.Logger
	now    func() time.Time

	degradedAfter int
	remoteTimeout time.Duration
	loadRetry     httputil.Backoff

	wg       sync.WaitGroup
	mu       sync.Mutex
	failures int
	closed   bool
}

// New creates a gateway. A nil local cache disables local writes; a nil
// remote store makes the gateway local-only.
func New(local cache.Cache, remote store.Store, opts ...Option) *Gateway {
	if local == nil {
		local = cache.NewNullCache()
	}
	g := &Gateway{
		local:         local,
		remote:        remote,
		keyer:         cache.NewDefaultKeyer(),
		logger:        log.Default(),
		now:           time.Now,
		degradedAfter: DefaultDegradedAfter,
		remoteTimeout: DefaultRemoteTimeout,
		loadRetry:     httputil.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Save stores v for topology/group. Only a failed local write is returned
// as an error; the remote write happens in the background.
func (g *Gateway) Save(ctx context.Context, topology, group string, v proportion.Vector) (Receipt, error) {
	rec := &store.Record{
		Topology:  topology,
		Group:     group,
		Sizes:     v.Clone(),
		Revision:  uuid.NewString(),
		UpdatedAt: g.now().UTC(),
	}
	if err := rec.Validate(); err != nil {
		return Receipt{}, err
	}
	key := rec.Key()

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return Receipt{}, errors.New(errors.ErrCodeStorage, "gateway is closed")
	}
	if g.remote != nil {
		g.wg.Add(1)
	}
	g.mu.Unlock()

	if err := g.writeLocal(ctx, rec); err != nil {
		if g.remote != nil {
			g.wg.Done()
		}
		return Receipt{}, errors.Wrap(errors.ErrCodeStorage, err, "save %s locally", key)
	}
	observability.Persist().OnSave(ctx, key, g.remote != nil)
	g.logger.Debug("layout saved", "key", key, "revision", rec.Revision, "sizes", proportion.Format(v))

	if g.remote != nil {
		go g.writeRemote(context.WithoutCancel(ctx), rec.Clone())
	}
	return Receipt{Key: key, Revision: rec.Revision, SavedAt: rec.UpdatedAt}, nil
}

func (g *Gateway) writeRemote(ctx context.Context, rec *store.Record) {
	defer g.wg.Done()
	if g.remoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.remoteTimeout)
		defer cancel()
	}
	err := g.remote.Put(ctx, rec)
	g.observe(ctx, rec.Key(), "save", err)
}

// Load returns the stored record for topology/group. ok is false when no
// backend has it.
func (g *Gateway) Load(ctx context.Context, topology, group string) (rec store.Record, ok bool, err error) {
	key := store.Key(topology, group)

	if g.remote != nil {
		var got *store.Record
		retry := g.loadRetry
		retry.OnRetry = func(attempt int, err error, wait time.Duration) {
			g.logger.Debug("remote load failed, retrying", "key", key, "attempt", attempt, "wait", wait, "err", err)
		}
		rerr := retry.Do(ctx, func(ctx context.Context) error {
			r, err := g.remote.Get(ctx, topology, group)
			got = r
			return err
		})
		g.observe(ctx, key, "load", rerr)
		if rerr == nil && got != nil {
			if err := g.writeLocal(ctx, got); err != nil {
				g.logger.Warn("local write-through failed", "key", key, "err", err)
			}
			observability.Persist().OnLoad(ctx, key, SourceRemote)
			return *got, true, nil
		}
	}

	local, found, err := g.readLocal(ctx, topology, group)
	if err != nil {
		return store.Record{}, false, errors.Wrap(errors.ErrCodeStorage, err, "load %s locally", key)
	}
	if found {
		observability.Persist().OnLoad(ctx, key, SourceLocal)
		return *local, true, nil
	}
	observability.Persist().OnLoad(ctx, key, SourceDefault)
	return store.Record{}, false, nil
}

// Delete removes topology/group from both backends.
func (g *Gateway) Delete(ctx context.Context, topology, group string) error {
	if err := g.local.Delete(ctx, g.keyer.LayoutKey(topology, group)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete %s locally", store.Key(topology, group))
	}
	if g.remote == nil {
		return nil
	}
	err := g.remote.Delete(ctx, topology, group)
	g.observe(ctx, store.Key(topology, group), "delete", err)
	return err
}

// Degraded reports whether the remote store has failed repeatedly.
func (g *Gateway) Degraded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures >= g.degradedAfter
}

// Failures returns the number of consecutive remote failures.
func (g *Gateway) Failures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures
}

// Remote returns the remote store, or nil for a local-only gateway.
func (g *Gateway) Remote() store.Store { return g.remote }

// Wait blocks until all background remote writes have finished.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

// Close waits for pending writes and closes both backends. Further saves
// fail.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()
	var first error
	if g.remote != nil {
		first = g.remote.Close()
	}
	if err := g.local.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Bind returns a [resize.Persister] that saves to topology/group.
func (g *Gateway) Bind(topology, group string) resize.Persister {
	return resize.PersisterFunc(func(ctx context.Context, v proportion.Vector) (string, error) {
		r, err := g.Save(ctx, topology, group, v)
		return r.Revision, err
	})
}

func (g *Gateway) observe(ctx context.Context, key, op string, err error) {
	g.mu.Lock()
	if err == nil {
		g.failures = 0
		g.mu.Unlock()
		return
	}
	g.failures++
	n := g.failures
	degraded := n == g.degradedAfter
	g.mu.Unlock()

	observability.Persist().OnRemoteError(ctx, key, op, err)
	g.logger.Warn("remote "+op+" failed", "key", key, "failures", n, "err", err)
	if degraded {
		g.logger.Error("remote store degraded", "failures", n)
	}
}

func (g *Gateway) writeLocal(ctx context.Context, rec *store.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return g.local.Set(ctx, g.keyer.LayoutKey(rec.Topology, rec.Group), data, 0)
}

func (g *Gateway) readLocal(ctx context.Context, topology, group string) (*store.Record, bool, error) {
	data, ok, err := g.local.Get(ctx, g.keyer.LayoutKey(topology, group))
	if err != nil || !ok {
		return nil, false, err
	}
	var rec store.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		g.logger.Warn("discarding corrupt cached layout", "key", store.Key(topology, group), "err", err)
		return nil, false, nil
	}
	if rec.Sizes.Validate() != nil {
		return nil, false, nil
	}
	return &rec, true, nil
}
