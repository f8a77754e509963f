package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	BackendDatabase  = "database"
	BackendPostgREST = "postgrest"
)

type Config struct {
	Env     string
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	Backend      string
	PostgRESTURL string
	PostgRESTKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	BackendTimeout time.Duration
	ProbeTimeout   time.Duration
	StatsInterval  time.Duration

	AdminEmails []string
	CORSOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env when present, then the process environment.
func Load() (*Config, bool, error) {
	fromFile := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	return cfg, fromFile, err
}

// FromEnv builds a Config from getenv and checks required keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env(getenv)
	cfg := &Config{
		Env:            e.str("APP_ENV", EnvDevelopment),
		Port:           e.str("APP_PORT", "8080"),
		GinMode:        e.str("GIN_MODE", ""),
		DBDriver:       e.str("DB_DRIVER", "sqlite"),
		DBDSN:          e.str("DB_DSN", "file:snippets.db?cache=shared"),
		Backend:        e.str("BACKEND", BackendDatabase),
		PostgRESTURL:   e.str("POSTGREST_URL", ""),
		PostgRESTKey:   e.str("POSTGREST_KEY", ""),
		RedisAddr:      e.str("REDIS_ADDR", ""),
		RedisPassword:  e.str("REDIS_PASSWORD", ""),
		RedisDB:        e.integer("REDIS_DB", 0),
		JWTSecret:      e.str("JWT_SECRET", ""),
		JWTTTL:         e.duration("JWT_TTL", 24*time.Hour),
		BackendTimeout: e.duration("BACKEND_TIMEOUT", 10*time.Second),
		ProbeTimeout:   e.duration("PROBE_TIMEOUT", 5*time.Second),
		StatsInterval:  e.duration("STATS_INTERVAL", 30*time.Second),
		AdminEmails:    e.list("ADMIN_EMAILS"),
		CORSOrigins:    e.list("CORS_ORIGINS"),
		RateLimitRPS:   e.number("RATE_LIMIT_RPS", 5),
		RateLimitBurst: e.integer("RATE_LIMIT_BURST", 10),
	}
	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	switch c.Backend {
	case BackendDatabase:
	case BackendPostgREST:
		if c.PostgRESTURL == "" || c.PostgRESTKey == "" {
			return errors.New("POSTGREST_URL and POSTGREST_KEY are required for the postgrest backend")
		}
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Backend)
	}
	if !lo.Contains([]string{"sqlite", "mysql", "postgres"}, c.DBDriver) {
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func env(getenv func(string) string) *envReader {
	return &envReader{getenv: getenv}
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *envReader) number(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (e *envReader) list(key string) []string {
	parts := strings.Split(e.getenv(key), ",")
	return lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
}
