package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/persist"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// OpenStore connects the configured layout store.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case StoreMemory:
		return store.NewMemory(), nil
	case StoreFile:
		return store.NewFileStore(c.Store.Path)
	case StoreRedis:
		return store.NewRedisStore(ctx, c.Store.RedisURL)
	case StoreMongo:
		return store.NewMongoStore(ctx, c.Store.MongoURI, c.Store.MongoDatabase)
	case StorePostgres:
		return store.NewPostgresStore(ctx, c.Store.PostgresURL)
	case StoreHTTP:
		return store.NewHTTPStore(c.Store.HTTPURL, nil)
	}
	return nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
}

// OpenCache opens the configured local cache.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheFile:
		return cache.NewFileCache(c.Cache.Dir)
	case CacheSQLite:
		return cache.NewSQLiteCache(ctx, c.Cache.Dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
}

// OpenGateway opens the cache and the store and joins them in a
// persistence gateway. Closing the gateway closes both.
func (c *Config) OpenGateway(ctx context.Context, logger *log.Logger) (*persist.Gateway, error) {
	local, err := c.OpenCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Cache.Backend, err)
	}
	remote, err := c.OpenStore(ctx)
	if err != nil {
		local.Close()
		return nil, fmt.Errorf("open %s store: %w", c.Store.Backend, err)
	}
	return persist.New(local, remote,
		persist.WithLogger(logger),
		persist.WithDegradedAfter(c.Store.DegradedAfter),
		persist.WithKeyer(c.Keyer()),
	), nil
}

// Keyer returns the cache keyer, scoped when cache.scope is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Scope+":")
}
