package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config engine server configuration. every flag defaults to its environment variable, which may
// come from a .env file.
type Config struct {
	ListenAddr      string
	GraphFile       string
	DBPath          string
	KVDir           string
	LogLevel        string
	LogJSON         bool
	RequestTimeout  time.Duration
	MaxSettledNodes int
	TileCacheSize   int
	DefaultCity     string
	RtreeMinChild   int
	RtreeMaxChild   int
	Workers         int
}

const (
	DefaultCity = "Hyderabad"
)

// Load reads the optional env files (".env" when none given), then parses args into fs.
func Load(fs *flag.FlagSet, args []string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, &ConfigError{Field: f, Message: err.Error()}
		}
	}

	var envErrs []error
	cfg := &Config{}
	fs.StringVar(&cfg.ListenAddr, "listenaddr", envString("LISTEN_ADDR", ":5000"), "server listen address")
	fs.StringVar(&cfg.GraphFile, "graph", envString("GRAPH_FILE", "hyderabad_graph.graphml"), "road graph file (.graph, .graphml or .json)")
	fs.StringVar(&cfg.DBPath, "db", envString("DB_PATH", "offline_map.db"), "sqlite file with the addresses & tiles tables")
	fs.StringVar(&cfg.KVDir, "kvdir", envString("KV_DIR", "offlinenav_kv"), "badger directory for edge metadata")
	fs.StringVar(&cfg.LogLevel, "loglevel", envString("LOG_LEVEL", "info"), "log level")
	fs.BoolVar(&cfg.LogJSON, "logjson", envBool("LOG_JSON", false, &envErrs), "json log output")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", envDuration("REQUEST_TIMEOUT", 30*time.Second, &envErrs), "per request timeout")
	fs.IntVar(&cfg.MaxSettledNodes, "maxsettled", envInt("MAX_SETTLED_NODES", 0, &envErrs), "max nodes settled by one route search, 0 = node count")
	fs.IntVar(&cfg.TileCacheSize, "tilecache", envInt("TILE_CACHE_SIZE", 4096, &envErrs), "tile lru cache entries")
	fs.StringVar(&cfg.DefaultCity, "city", envString("DEFAULT_CITY", DefaultCity), "city for addresses without one")
	fs.IntVar(&cfg.RtreeMinChild, "rtreemin", envInt("RTREE_MIN_CHILD", 25, &envErrs), "r-tree min children per node")
	fs.IntVar(&cfg.RtreeMaxChild, "rtreemax", envInt("RTREE_MAX_CHILD", 50, &envErrs), "r-tree max children per node")
	fs.IntVar(&cfg.Workers, "workers", envInt("WORKERS", 8, &envErrs), "batch routing workers")

	if len(envErrs) > 0 {
		return nil, errors.Join(envErrs...)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate re-checks every field of an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, &ConfigError{Field: "LISTEN_ADDR", Message: "cannot be empty"})
	}
	if c.GraphFile == "" {
		errs = append(errs, &ConfigError{Field: "GRAPH_FILE", Message: "cannot be empty"})
	}
	if c.DBPath == "" {
		errs = append(errs, &ConfigError{Field: "DB_PATH", Message: "cannot be empty"})
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, &ConfigError{Field: "LOG_LEVEL", Message: "must be one of debug, info, warn, error"})
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, &ConfigError{Field: "REQUEST_TIMEOUT", Message: "must be positive"})
	}
	if c.MaxSettledNodes < 0 {
		errs = append(errs, &ConfigError{Field: "MAX_SETTLED_NODES", Message: "cannot be negative"})
	}
	if c.TileCacheSize < 0 {
		errs = append(errs, &ConfigError{Field: "TILE_CACHE_SIZE", Message: "cannot be negative"})
	}
	if c.DefaultCity == "" {
		errs = append(errs, &ConfigError{Field: "DEFAULT_CITY", Message: "cannot be empty"})
	}
	if c.RtreeMinChild < 1 || c.RtreeMaxChild < 2*c.RtreeMinChild {
		errs = append(errs, &ConfigError{Field: "RTREE_MAX_CHILD", Message: "must be at least twice RTREE_MIN_CHILD, which must be positive"})
	}
	if c.Workers < 1 {
		errs = append(errs, &ConfigError{Field: "WORKERS", Message: "must be positive"})
	}
	return errors.Join(errs...)
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, &ConfigError{Field: key, Message: "must be a valid integer"})
		return def
	}
	return n
}

func envBool(key string, def bool, errs *[]error) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, &ConfigError{Field: key, Message: "must be a boolean"})
		return def
	}
	return b
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, &ConfigError{Field: key, Message: "must be a duration like 30s"})
		return def
	}
	return d
}
