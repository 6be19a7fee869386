package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/observability"
)

func TestDebugHooks(t *testing.T) {
	var buf bytes.Buffer
	registerDebugHooks(newLogger(&buf, log.DebugLevel))
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	observability.Drag().OnDragStart(ctx, "four-grid/rows", 0)
	observability.Drag().OnDragEnd(ctx, "four-grid/rows", 0, 7, 120*time.Millisecond)
	observability.Sync().OnDecision(ctx, "four-grid/rows", "reject-echo")
	observability.Persist().OnLoad(ctx, "layout:four-grid/rows", "local")

	out := buf.String()
	for _, want := range []string{"drag start", "moves=7", "decision=reject-echo", "source=local"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
