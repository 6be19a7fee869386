package resize

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/dashgrid/pkg/proportion"
)

func TestGuardDecide(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sent := proportion.Of(60, 40)

	tests := []struct {
		name      string
		guard     Guard
		state     SyncState
		ext       External
		displayed proportion.Vector
		dragging  bool
		want      Decision
	}{
		{
			name:      "genuine change",
			guard:     Guard{Tolerance: PairTolerance},
			ext:       External{Vector: sent},
			displayed: proportion.Of(50, 50),
			want:      Adopt,
		},
		{
			name:      "wrong length",
			guard:     Guard{Tolerance: PairTolerance},
			ext:       External{Vector: proportion.Of(30, 30, 40)},
			displayed: proportion.Of(50, 50),
			want:      RejectMalformed,
		},
		{
			name:      "bad sum",
			guard:     Guard{Tolerance: PairTolerance},
			ext:       External{Vector: proportion.Of(60, 30)},
			displayed: proportion.Of(50, 50),
			want:      RejectMalformed,
		},
		{
			name:      "dragging",
			guard:     Guard{Tolerance: PairTolerance},
			ext:       External{Vector: sent},
			displayed: proportion.Of(50, 50),
			dragging:  true,
			want:      RejectDragging,
		},
		{
			name:      "echo inside window",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastSent: sent.Key(), SuppressUntil: now.Add(time.Second)},
			ext:       External{Vector: sent},
			displayed: proportion.Of(50, 50),
			want:      RejectEcho,
		},
		{
			name:      "same value after window",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastSent: sent.Key(), SuppressUntil: now.Add(-time.Millisecond)},
			ext:       External{Vector: sent},
			displayed: proportion.Of(50, 50),
			want:      Adopt,
		},
		{
			name:      "echo by revision after window",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastSentRevision: "r1"},
			ext:       External{Vector: sent, Revision: "r1"},
			displayed: proportion.Of(50, 50),
			want:      RejectEcho,
		},
		{
			name:      "other revision",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastSentRevision: "r1"},
			ext:       External{Vector: sent, Revision: "r2"},
			displayed: proportion.Of(50, 50),
			want:      Adopt,
		},
		{
			name:      "different value inside window",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastSent: sent.Key(), SuppressUntil: now.Add(time.Second)},
			ext:       External{Vector: proportion.Of(25, 75)},
			displayed: sent,
			want:      Adopt,
		},
		{
			name:      "already evaluated",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastAppliedExternal: sent.Key()},
			ext:       External{Vector: sent},
			displayed: proportion.Of(60.4, 39.6),
			want:      RejectUnchanged,
		},
		{
			name:      "already evaluated but display moved",
			guard:     Guard{Tolerance: PairTolerance},
			state:     SyncState{LastAppliedExternal: sent.Key()},
			ext:       External{Vector: sent},
			displayed: proportion.Of(30, 70),
			want:      Adopt,
		},
		{
			name:      "pairwise tolerance",
			guard:     Guard{Tolerance: PairTolerance},
			ext:       External{Vector: proportion.Of(50.6, 49.4)},
			displayed: proportion.Of(50, 50),
			want:      RejectWithinTolerance,
		},
		{
			name:      "group tolerance",
			guard:     Guard{Tolerance: GroupTolerance},
			ext:       External{Vector: proportion.Of(50.6, 49.4)},
			displayed: proportion.Of(50, 50),
			want:      Adopt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.state
			if got := tt.guard.Decide(&s, tt.ext, tt.displayed, tt.dragging, now); got != tt.want {
				t.Errorf("Decide = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGuardBookkeeping(t *testing.T) {
	now := time.Now()
	g := Guard{Tolerance: PairTolerance}

	s := SyncState{LastSent: "x", LastSentRevision: "r", SuppressUntil: now.Add(time.Second)}
	if d := g.Decide(&s, External{Vector: proportion.Of(70, 30)}, proportion.Of(50, 50), false, now); d != Adopt {
		t.Fatalf("Decide = %s", d)
	}
	if s.LastSent != "" || s.LastSentRevision != "" || !s.SuppressUntil.IsZero() {
		t.Errorf("adopt did not clear suppression: %+v", s)
	}
	if s.LastAppliedExternal != proportion.Of(70, 30).Key() {
		t.Errorf("LastAppliedExternal = %q", s.LastAppliedExternal)
	}

	s = SyncState{}
	g.Decide(&s, External{Vector: proportion.Of(50.2, 49.8)}, proportion.Of(50, 50), false, now)
	if s.LastAppliedExternal != proportion.Of(50.2, 49.8).Key() {
		t.Error("tolerance rejection did not record the external value")
	}

	s = SyncState{LastSent: "x", SuppressUntil: now.Add(-time.Second)}
	g.Decide(&s, External{Vector: proportion.Of(50, 50)}, proportion.Of(50, 50), false, now)
	if s.LastSent != "" || !s.SuppressUntil.IsZero() {
		t.Errorf("expired window not cleared: %+v", s)
	}
}

func TestEchoSuppression(t *testing.T) {
	clk := newClock()
	rec := &recorder{}
	c, _ := NewController(nil, WithClock(clk.now), WithPersister(rec), WithMinPixels(0), quiet())

	c.Begin(500, 1000)
	c.Move(620)
	final, _ := c.End(context.Background())

	clk.advance(200 * time.Millisecond)
	if d := c.Sync(External{Vector: final.Clone()}); d != RejectEcho {
		t.Errorf("echo inside window = %s", d)
	}
	assertVector(t, c.Proportions(), final)

	// a genuine external change inside the window is still adopted
	other := proportion.Of(35, 65)
	if d := c.Sync(External{Vector: other}); d != Adopt {
		t.Errorf("different update = %s", d)
	}
	assertVector(t, c.Proportions(), other)
}

func TestReadoptAfterLocalDrag(t *testing.T) {
	clk := newClock()
	c, _ := NewController(nil, WithClock(clk.now), WithMinPixels(0), quiet())

	remote := proportion.Of(60, 40)
	if d := c.Sync(External{Vector: remote}); d != Adopt {
		t.Fatalf("first Sync = %s, want %s", d, Adopt)
	}

	c.Begin(600, 1000)
	c.Move(300)
	c.End(context.Background())
	assertVector(t, c.Proportions(), proportion.Of(30, 70))
	if s := c.SyncState(); s.LastAppliedExternal != "" {
		t.Errorf("commit kept LastAppliedExternal %q", s.LastAppliedExternal)
	}

	// the remote value differs from both the sent and the displayed vector
	if d := c.Sync(External{Vector: remote}); d != Adopt {
		t.Errorf("Sync inside the window = %s, want %s", d, Adopt)
	}
	assertVector(t, c.Proportions(), remote)

	c.Begin(600, 1000)
	c.Move(300)
	c.End(context.Background())
	clk.advance(2 * time.Second)
	if d := c.Sync(External{Vector: remote}); d != Adopt {
		t.Errorf("Sync after the window = %s, want %s", d, Adopt)
	}
}

func TestSetClearsAppliedExternal(t *testing.T) {
	c, _ := NewController(nil, WithMinPixels(0), quiet())
	remote := proportion.Of(70, 30)
	c.Sync(External{Vector: remote})
	if err := c.Set(proportion.Equal(2)); err != nil {
		t.Fatal(err)
	}
	if d := c.Sync(External{Vector: remote}); d != Adopt {
		t.Errorf("Sync after reset = %s, want %s", d, Adopt)
	}
}

func TestEchoByRevisionOutlivesWindow(t *testing.T) {
	clk := newClock()
	rec := &recorder{rev: "7b0c"}
	c, _ := NewGroupController(3, nil, WithClock(clk.now), WithPersister(rec), WithMinPixels(0), quiet())

	c.Begin(0, 0, 900)
	c.Move(90)
	final, _ := c.End(context.Background())

	// the round trip took longer than the suppression window
	clk.advance(2 * time.Second)
	if d := c.Sync(External{Vector: final, Revision: "7b0c"}); d != RejectEcho {
		t.Fatalf("Sync of acknowledged revision = %s, want %s", d, RejectEcho)
	}
	assertVector(t, c.Proportions(), final)

	// a record written by someone else is adopted
	other := proportion.Of(20, 40, 40)
	if d := c.Sync(External{Vector: other, Revision: "91aa"}); d != Adopt {
		t.Errorf("foreign revision = %s", d)
	}
}

func TestSyncWhileDragging(t *testing.T) {
	c, _ := NewController(nil, WithMinPixels(0), quiet())
	c.Begin(0, 100)
	c.Move(10)
	if d := c.Sync(External{Vector: proportion.Of(80, 20)}); d != RejectDragging {
		t.Errorf("Sync during drag = %s", d)
	}
	assertVector(t, c.Proportions(), proportion.Of(60, 40))
}

func TestDecisionString(t *testing.T) {
	for d := Adopt; d <= RejectWithinTolerance; d++ {
		if d.String() == "unknown" {
			t.Errorf("decision %d has no name", d)
		}
	}
}
