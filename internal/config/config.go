// Package config loads dashgrid settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// the TOML file at $XDG_CONFIG_HOME/dashgrid/config.toml (or the path given
// with --config), and DASHGRID_* environment variables.
//
//	log_level = "debug"
//
//	[resize]
//	min_pixels = 64
//	suppress_window = "750ms"
//
//	[store]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/persist"
	"github.com/matzehuels/dashgrid/pkg/resize"
)

// AppName names the config, cache and data directories.
const AppName = "dashgrid"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreHTTP     = "http"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheSQLite = "sqlite"
	CacheNone   = "none"
)

// Config is the complete set of settings.
type Config struct {
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Resize Resize `toml:"resize"`
	Grid   Grid   `toml:"grid"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Resize configures the resize controllers.
type Resize struct {
	MinPixels      float64       `toml:"min_pixels"`
	MinPercent     float64       `toml:"min_percent"`
	SuppressWindow time.Duration `toml:"suppress_window"`
	AbandonAfter   time.Duration `toml:"abandon_after"`
}

// Grid configures geometry compilation.
type Grid struct {
	GapPx float64 `toml:"gap_px"`
}

// Store selects the remote layout store.
type Store struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	RedisURL      string `toml:"redis_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	PostgresURL   string `toml:"postgres_url"`
	HTTPURL       string `toml:"http_url"`
	DegradedAfter int    `toml:"degraded_after"`
}

// Cache selects the local layout cache.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	// Scope prefixes cache keys so several boards can share one cache.
	Scope string `toml:"scope"`
}

// Server configures `dashgrid serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings. Directory defaults follow XDG;
// when the home directory cannot be determined they stay empty and the
// file-based backends refuse to open.
func Default() Config {
	cacheDir, _ := CacheDir()
	dataDir, _ := DataDir()
	var layouts string
	if dataDir != "" {
		layouts = filepath.Join(dataDir, "layouts")
	}
	return Config{
		LogLevel: "info",
		Resize: Resize{
			MinPixels:      resize.DefaultMinPixels,
			MinPercent:     resize.DefaultMinPercent,
			SuppressWindow: resize.DefaultSuppressWindow,
			AbandonAfter:   resize.DefaultAbandonAfter,
		},
		Grid: Grid{GapPx: 4},
		Store: Store{
			Backend:       StoreFile,
			Path:          layouts,
			MongoDatabase: "dashgrid",
			DegradedAfter: persist.DefaultDegradedAfter,
		},
		Cache:  Cache{Backend: CacheSQLite, Dir: cacheDir},
		Server: Server{Addr: ":8740"},
	}
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. An empty path means the default location, which
// may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, explicit bool) error {
	md, err := toml.DecodeFile(path, c)
	if os.IsNotExist(err) && !explicit {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks ranges and backend names.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "log_level %q: %v", c.LogLevel, err)
	}
	switch {
	case c.Resize.MinPixels < 0:
		return errors.New(errors.ErrCodeInvalidInput, "resize.min_pixels must not be negative")
	case c.Resize.MinPercent < 0 || c.Resize.MinPercent >= 50:
		return errors.New(errors.ErrCodeInvalidInput, "resize.min_percent must be in [0, 50)")
	case c.Resize.SuppressWindow < 0:
		return errors.New(errors.ErrCodeInvalidInput, "resize.suppress_window must not be negative")
	case c.Resize.AbandonAfter < 0:
		return errors.New(errors.ErrCodeInvalidInput, "resize.abandon_after must not be negative")
	case c.Grid.GapPx < 0:
		return errors.New(errors.ErrCodeInvalidInput, "grid.gap_px must not be negative")
	case c.Store.DegradedAfter < 1:
		return errors.New(errors.ErrCodeInvalidInput, "store.degraded_after must be at least 1")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreFile:
		if c.Store.Path == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.path is required for the file backend")
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.redis_url is required for the redis backend")
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.postgres_url is required for the postgres backend")
		}
	case StoreHTTP:
		if err := errors.ValidateURL(c.Store.HTTPURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "store.http_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile, CacheSQLite:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.dir is required for the %s backend", c.Cache.Backend)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// ResizeOptions converts the [resize] section to controller options.
func (c *Config) ResizeOptions() []resize.Option {
	return []resize.Option{
		resize.WithMinPixels(c.Resize.MinPixels),
		resize.WithMinPercent(c.Resize.MinPercent),
		resize.WithSuppressWindow(c.Resize.SuppressWindow),
		resize.WithAbandonAfter(c.Resize.AbandonAfter),
	}
}

// =============================================================================
// Environment
// =============================================================================

func (c *Config) applyEnv() error {
	c.LogLevel = getenv("DASHGRID_LOG_LEVEL", c.LogLevel)
	c.LogFile = getenv("DASHGRID_LOG_FILE", c.LogFile)

	c.Store.Backend = getenv("DASHGRID_STORE", c.Store.Backend)
	c.Store.Path = getenv("DASHGRID_STORE_PATH", c.Store.Path)
	c.Store.RedisURL = getenv("DASHGRID_REDIS_URL", c.Store.RedisURL)
	c.Store.MongoURI = getenv("DASHGRID_MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDatabase = getenv("DASHGRID_MONGO_DATABASE", c.Store.MongoDatabase)
	c.Store.PostgresURL = getenv("DASHGRID_POSTGRES_URL", c.Store.PostgresURL)
	c.Store.HTTPURL = getenv("DASHGRID_HTTP_URL", c.Store.HTTPURL)

	c.Cache.Backend = getenv("DASHGRID_CACHE", c.Cache.Backend)
	c.Cache.Dir = getenv("DASHGRID_CACHE_DIR", c.Cache.Dir)
	c.Cache.Scope = getenv("DASHGRID_CACHE_SCOPE", c.Cache.Scope)

	c.Server.Addr = getenv("DASHGRID_ADDR", c.Server.Addr)

	var err error
	if c.Resize.MinPixels, err = getenvFloat("DASHGRID_MIN_PIXELS", c.Resize.MinPixels); err != nil {
		return err
	}
	if c.Resize.MinPercent, err = getenvFloat("DASHGRID_MIN_PERCENT", c.Resize.MinPercent); err != nil {
		return err
	}
	if c.Grid.GapPx, err = getenvFloat("DASHGRID_GAP_PX", c.Grid.GapPx); err != nil {
		return err
	}
	if c.Resize.SuppressWindow, err = getenvDuration("DASHGRID_SUPPRESS_WINDOW", c.Resize.SuppressWindow); err != nil {
		return err
	}
	if c.Resize.AbandonAfter, err = getenvDuration("DASHGRID_ABANDON_AFTER", c.Resize.AbandonAfter); err != nil {
		return err
	}
	if c.Store.DegradedAfter, err = getenvInt("DASHGRID_DEGRADED_AFTER", c.Store.DegradedAfter); err != nil {
		return err
	}
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, errors.New(errors.ErrCodeInvalidInput, "%s=%q is not a number", key, value)
	}
	return parsed, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, errors.New(errors.ErrCodeInvalidInput, "%s=%q is not an integer", key, value)
	}
	return parsed, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback, errors.New(errors.ErrCodeInvalidInput, "%s=%q is not a duration", key, value)
	}
	return parsed, nil
}

// =============================================================================
// Paths
// =============================================================================

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/dashgrid/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory using XDG standard (~/.local/share/dashgrid/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, fallback, AppName), nil
}
