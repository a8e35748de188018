package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

// DefaultUserAgent is sent with every feed and page request. The storefront
// answers default Go client identities with truncated or non-200 responses.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var cacheBackends = []string{"memory", "sqlite", "redis"}

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Audit definition
	ConfigFile string `long:"config" env:"AUDIT_CONFIG" default:"./audit.yml" description:"Audit definition file (feed URL, watchlist, naming rules)"`

	// HTTP report surface
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Feed cache
	CacheBackend string `long:"cache-backend" env:"CACHE_BACKEND" default:"memory" description:"Feed cache backend (memory, sqlite, redis)"`
	CachePath    string `long:"cache-path" env:"CACHE_PATH" default:"./audit-cache.db" description:"SQLite file used by the sqlite cache backend"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address used by the redis cache backend"`

	// One-shot mode
	Once       bool `long:"once" description:"Run a single audit, print the report as JSON and exit"`
	ClearCache bool `long:"clear-cache" description:"Invalidate the cached feed before running"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (defaults to a desktop browser identity)"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Singapore" description:"Timezone for report timestamps (e.g., Asia/Singapore, UTC)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args. A nil slice means
// os.Args[1:].
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if !slices.Contains(cacheBackends, raw.CacheBackend) {
		return nil, fmt.Errorf("cache backend must be one of %v, got %q", cacheBackends, raw.CacheBackend)
	}

	cfg := &Cfg{
		ConfigFile:   raw.ConfigFile,
		Port:         raw.Port,
		CacheBackend: raw.CacheBackend,
		CachePath:    raw.CachePath,
		RedisAddr:    raw.RedisAddr,
		Once:         raw.Once,
		ClearCache:   raw.ClearCache,
		UserAgent:    cmp.Or(raw.UserAgent, DefaultUserAgent),
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
