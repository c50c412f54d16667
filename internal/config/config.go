package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration read from the environment
type Config struct {
	Host            string
	Port            int
	StorageType     string
	RedisURL        string
	LobbyTTL        time.Duration
	LogLevel        string
	IdleTimeout     time.Duration
	JanitorInterval time.Duration
	LeaveGrace      time.Duration
	AllowedOrigins  []string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Host:            "",
		Port:            8080,
		StorageType:     StorageMemory,
		LobbyTTL:        24 * time.Hour,
		LogLevel:        "info",
		IdleTimeout:     30 * time.Minute,
		JanitorInterval: time.Minute,
		LeaveGrace:      0,
		AllowedOrigins:  []string{"*"},
	}
}

// Load reads the given .env files (".env" when none are named), then the
// process environment. Missing files are ignored and variables already set
// in the environment win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a variable lookup function
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	cfg.Host = r.string("HOST", cfg.Host)
	cfg.Port = r.int("PORT", cfg.Port)
	cfg.StorageType = strings.ToLower(r.string("STORAGE_TYPE", cfg.StorageType))
	cfg.RedisURL = r.string("REDIS_URL", cfg.RedisURL)
	cfg.LobbyTTL = r.duration("LOBBY_TTL", cfg.LobbyTTL)
	cfg.LogLevel = r.string("LOG_LEVEL", cfg.LogLevel)
	cfg.IdleTimeout = r.duration("LOBBY_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.JanitorInterval = r.duration("JANITOR_INTERVAL", cfg.JanitorInterval)
	cfg.LeaveGrace = r.duration("LEAVE_ON_DISCONNECT_GRACE", cfg.LeaveGrace)
	cfg.AllowedOrigins = r.list("ALLOWED_ORIGINS", cfg.AllowedOrigins)

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 0 and 65535, got %d", c.Port))
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, errors.New("LOBBY_IDLE_TIMEOUT must be positive"))
	}
	if c.LeaveGrace < 0 {
		errs = append(errs, errors.New("LEAVE_ON_DISCONNECT_GRACE must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// reader collects parse errors so every bad variable is reported at once
type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) string(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
