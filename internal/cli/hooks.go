package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/observability"
)

// debugHooks logs drag, sync, persistence, cache and HTTP events at debug
// level.
type debugHooks struct {
	logger *log.Logger
}

// registerDebugHooks routes every observability event to l.
func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l}
	observability.SetDragHooks(h)
	observability.SetSyncHooks(h)
	observability.SetPersistHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnDragStart(_ context.Context, name string, divider int) {
	h.logger.Debug("drag start", "group", name, "divider", divider)
}

func (h debugHooks) OnDragEnd(_ context.Context, name string, divider, moves int, d time.Duration) {
	h.logger.Debug("drag end", "group", name, "divider", divider, "moves", moves, "took", d.Round(time.Millisecond))
}

func (h debugHooks) OnDragAbandoned(_ context.Context, name string, divider int) {
	h.logger.Debug("drag abandoned", "group", name, "divider", divider)
}

func (h debugHooks) OnDecision(_ context.Context, name, decision string) {
	h.logger.Debug("sync", "group", name, "decision", decision)
}

func (h debugHooks) OnSave(_ context.Context, key string, remote bool) {
	h.logger.Debug("save", "key", key, "remote", remote)
}

func (h debugHooks) OnLoad(_ context.Context, key, source string) {
	h.logger.Debug("load", "key", key, "source", source)
}

func (h debugHooks) OnRemoteError(_ context.Context, key, op string, err error) {
	h.logger.Debug("remote error", "key", key, "op", op, "err", err)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
