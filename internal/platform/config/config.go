package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "CONTRACTGUIDE_"

// Server captures process level configuration.
type Server struct {
	Addr string

	// TablesPath overrides the built-in determination tables when set.
	TablesPath string

	Log    Log
	Assets Assets
	Redis  RedisConfig

	ShutdownTimeout time.Duration
}

// Log selects the slog handler.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// Assets configures the offline asset cache.
type Assets struct {
	ManifestPath string
	Dir          string // front-end directory served as the origin
	OriginURL    string // used instead of Dir when set
	Watch        bool
}

// RedisConfig configures the optional Redis asset store. An empty URL keeps
// assets in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from CONTRACTGUIDE_* environment variables
// so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	p := parser{errs: &errs}

	cfg := Server{
		Addr:       p.str("ADDR", ":8080"),
		TablesPath: p.str("TABLES", ""),
		Log: Log{
			Level:  strings.ToLower(p.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(p.str("LOG_FORMAT", "json")),
		},
		Assets: Assets{
			ManifestPath: p.str("ASSET_MANIFEST", ""),
			Dir:          p.str("ASSET_DIR", "web"),
			OriginURL:    p.str("ASSET_ORIGIN", ""),
			Watch:        p.boolean("WATCH_ASSETS", false),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch cfg.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("%sLOG_FORMAT must be json or text, got %q", envPrefix, cfg.Log.Format))
	}
	if cfg.Assets.Watch && cfg.Assets.ManifestPath == "" {
		errs = append(errs, envPrefix+"WATCH_ASSETS requires "+envPrefix+"ASSET_MANIFEST")
	}

	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

type parser struct {
	errs *[]string
}

func (p parser) str(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p parser) boolean(key string, def bool) bool {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s%s: %q is not a boolean", envPrefix, key, v))
		return def
	}
	return b
}

func (p parser) integer(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		*p.errs = append(*p.errs, fmt.Sprintf("%s%s: %q is not a non-negative integer", envPrefix, key, v))
		return def
	}
	return n
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*p.errs = append(*p.errs, fmt.Sprintf("%s%s: %q is not a positive duration", envPrefix, key, v))
		return def
	}
	return d
}
