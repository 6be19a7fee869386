package persist

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/cache"
	dgerrors "github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/httputil"
	"github.com/matzehuels/dashgrid/pkg/proportion"
	"github.com/matzehuels/dashgrid/pkg/resize"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// flakyStore wraps a memory store and fails on demand.
type flakyStore struct {
	*store.Memory
	mu       sync.Mutex
	putErr   error
	getErrs  []error // consumed one per Get
	puts     int
	gets     int
	putDelay time.Duration
}

func newFlaky() *flakyStore { return &flakyStore{Memory: store.NewMemory()} }

func (f *flakyStore) Put(ctx context.Context, rec *store.Record) error {
	f.mu.Lock()
	f.puts++
	err, delay := f.putErr, f.putDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return err
	}
	return f.Memory.Put(ctx, rec)
}

func (f *flakyStore) Get(ctx context.Context, topology, group string) (*store.Record, error) {
	f.mu.Lock()
	f.gets++
	var err error
	if len(f.getErrs) > 0 {
		err, f.getErrs = f.getErrs[0], f.getErrs[1:]
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Memory.Get(ctx, topology, group)
}

func (f *flakyStore) setPutErr(err error) {
	f.mu.Lock()
	f.putErr = err
	f.mu.Unlock()
}

// failingCache fails every write.
type failingCache struct{ *cache.NullCache }

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk full")
}

func quiet() Option { return WithLogger(log.New(io.Discard)) }

func newGateway(t *testing.T, remote store.Store, opts ...Option) (*Gateway, *cache.FileCache) {
	t.Helper()
	local, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{quiet(), WithLoadRetry(3, time.Millisecond)}, opts...)
	return New(local, remote, opts...), local
}

func TestSaveWritesLocalThenRemote(t *testing.T) {
	ctx := context.Background()
	remote := newFlaky()
	remote.putDelay = 20 * time.Millisecond
	gw, local := newGateway(t, remote)

	v := proportion.Of(23.33, 43.33, 33.34)
	r, err := gw.Save(ctx, "three-columns", "main", v)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if r.Revision == "" || r.Key != "three-columns/main" {
		t.Errorf("receipt = %+v", r)
	}

	// local copy is there before the remote write finishes
	if _, ok, _ := local.Get(ctx, cache.NewDefaultKeyer().LayoutKey("three-columns", "main")); !ok {
		t.Error("local cache not written synchronously")
	}

	gw.Wait()
	rec, _ := remote.Memory.Get(ctx, "three-columns", "main")
	if rec == nil || rec.Revision != r.Revision || rec.Sizes.Key() != v.Key() {
		t.Errorf("remote record = %+v", rec)
	}
}

func TestSaveRevisionsAreUnique(t *testing.T) {
	gw, _ := newGateway(t, nil)
	seen := map[string]bool{}
	for range 20 {
		r, err := gw.Save(context.Background(), "two-rows", "main", proportion.Of(50, 50))
		if err != nil {
			t.Fatal(err)
		}
		if seen[r.Revision] {
			t.Fatalf("duplicate revision %s", r.Revision)
		}
		seen[r.Revision] = true
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	remote := newFlaky()
	gw, _ := newGateway(t, remote)

	tests := []struct {
		name     string
		topology string
		group    string
		v        proportion.Vector
		code     dgerrors.Code
	}{
		{"bad sum", "two-rows", "main", proportion.Of(50, 40), dgerrors.ErrCodeInvalidProportions},
		{"bad topology", "two/rows", "main", proportion.Of(50, 50), dgerrors.ErrCodeInvalidTopology},
		{"bad group", "two-rows", "", proportion.Of(50, 50), dgerrors.ErrCodeInvalidGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Save(context.Background(), tt.topology, tt.group, tt.v)
			if dgerrors.GetCode(err) != tt.code {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
	gw.Wait()
	if remote.puts != 0 {
		t.Errorf("remote written %d times for invalid saves", remote.puts)
	}
}

func TestLocalFailureIsReturned(t *testing.T) {
	remote := newFlaky()
	gw := New(failingCache{cache.NewNullCache()}, remote, quiet())

	_, err := gw.Save(context.Background(), "two-rows", "main", proportion.Of(50, 50))
	if !dgerrors.Is(err, dgerrors.ErrCodeStorage) {
		t.Fatalf("err = %v", err)
	}
	gw.Wait()
	if remote.puts != 0 {
		t.Error("remote written after local failure")
	}
}

func TestRemoteFailureDegrades(t *testing.T) {
	ctx := context.Background()
	remote := newFlaky()
	remote.setPutErr(errors.New("connection refused"))
	gw, _ := newGateway(t, remote)

	for i := 1; i <= DefaultDegradedAfter; i++ {
		if _, err := gw.Save(ctx, "two-rows", "main", proportion.Of(40, 60)); err != nil {
			t.Fatalf("remote failure leaked into Save: %v", err)
		}
		gw.Wait()
		if got := gw.Degraded(); got != (i >= DefaultDegradedAfter) {
			t.Errorf("after %d failures Degraded = %v", i, got)
		}
	}
	if remote.puts != DefaultDegradedAfter {
		t.Errorf("remote puts = %d, failed saves must not be retried", remote.puts)
	}

	remote.setPutErr(nil)
	gw.Save(ctx, "two-rows", "main", proportion.Of(45, 55))
	gw.Wait()
	if gw.Degraded() || gw.Failures() != 0 {
		t.Error("success did not reset the failure count")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	transient := &httputil.RetryableError{Err: errors.New("503")}

	t.Run("remote hit writes through", func(t *testing.T) {
		remote := newFlaky()
		remote.Memory.Put(ctx, &store.Record{Topology: "four-grid", Group: "rows", Sizes: proportion.Of(30, 70), Revision: "r9"})
		gw, local := newGateway(t, remote)

		rec, ok, err := gw.Load(ctx, "four-grid", "rows")
		if err != nil || !ok || rec.Revision != "r9" {
			t.Fatalf("Load = %+v %v %v", rec, ok, err)
		}
		if _, hit, _ := local.Get(ctx, "layout:four-grid/rows"); !hit {
			t.Error("remote hit not written to local cache")
		}
	})

	t.Run("transient errors are retried", func(t *testing.T) {
		remote := newFlaky()
		remote.Memory.Put(ctx, &store.Record{Topology: "four-grid", Group: "rows", Sizes: proportion.Of(30, 70)})
		remote.getErrs = []error{transient, transient}
		gw, _ := newGateway(t, remote)

		if _, ok, err := gw.Load(ctx, "four-grid", "rows"); !ok || err != nil {
			t.Fatalf("Load = %v %v", ok, err)
		}
		if remote.gets != 3 {
			t.Errorf("gets = %d, want 3", remote.gets)
		}
	})

	t.Run("remote failure falls back to local", func(t *testing.T) {
		remote := newFlaky()
		gw, _ := newGateway(t, remote)
		if _, err := gw.Save(ctx, "four-grid", "row-1", proportion.Of(25, 75)); err != nil {
			t.Fatal(err)
		}
		gw.Wait()
		remote.getErrs = []error{errors.New("auth failed")}

		rec, ok, err := gw.Load(ctx, "four-grid", "row-1")
		if err != nil || !ok || rec.Sizes[0] != 25 {
			t.Fatalf("Load = %+v %v %v", rec, ok, err)
		}
		if remote.gets != 1 {
			t.Errorf("permanent error retried: gets = %d", remote.gets)
		}
	})

	t.Run("absent everywhere", func(t *testing.T) {
		gw, _ := newGateway(t, newFlaky())
		if _, ok, err := gw.Load(ctx, "nine-grid", "rows"); ok || err != nil {
			t.Errorf("Load = %v %v", ok, err)
		}
	})

	t.Run("local only", func(t *testing.T) {
		gw, _ := newGateway(t, nil)
		gw.Save(ctx, "two-columns", "main", proportion.Of(70, 30))
		rec, ok, _ := gw.Load(ctx, "two-columns", "main")
		if !ok || rec.Sizes[0] != 70 {
			t.Errorf("Load = %+v %v", rec, ok)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	remote := newFlaky()
	gw, _ := newGateway(t, remote)
	gw.Save(ctx, "two-columns", "main", proportion.Of(70, 30))
	gw.Wait()

	if err := gw.Delete(ctx, "two-columns", "main"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := gw.Load(ctx, "two-columns", "main"); ok {
		t.Error("record survived Delete")
	}
}

func TestCloseDrainsAndRejects(t *testing.T) {
	ctx := context.Background()
	remote := newFlaky()
	remote.putDelay = 30 * time.Millisecond
	gw, _ := newGateway(t, remote)

	gw.Save(ctx, "two-rows", "main", proportion.Of(50, 50))
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if remote.puts != 1 {
		t.Errorf("Close did not wait for the pending write")
	}
	if _, err := gw.Save(ctx, "two-rows", "main", proportion.Of(50, 50)); !dgerrors.Is(err, dgerrors.ErrCodeStorage) {
		t.Errorf("Save after Close err = %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestBindAcknowledgesRevision(t *testing.T) {
	ctx := context.Background()
	remote := newFlaky()
	gw, _ := newGateway(t, remote)

	clock := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	c, err := resize.NewController(nil,
		resize.WithPersister(gw.Bind("two-columns", "main")),
		resize.WithClock(func() time.Time { return clock }),
		resize.WithMinPixels(0),
		resize.WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		t.Fatal(err)
	}
	c.Begin(500, 1000)
	c.Move(700)
	final, err := c.End(ctx)
	if err != nil {
		t.Fatal(err)
	}
	gw.Wait()

	// the record comes back long after the suppression window
	clock = clock.Add(time.Minute)
	rec, ok, _ := gw.Load(ctx, "two-columns", "main")
	if !ok {
		t.Fatal("record not persisted")
	}
	if d := c.Sync(resize.External{Vector: rec.Sizes, Revision: rec.Revision}); d != resize.RejectEcho {
		t.Errorf("Sync of own save = %s, want %s", d, resize.RejectEcho)
	}
	if c.Proportions().Key() != final.Key() {
		t.Errorf("display changed to %v", c.Proportions())
	}
}
