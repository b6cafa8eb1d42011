// Package config loads server configuration from a YAML file, the
// environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Record store backends.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

// Config is the full server configuration.
type Config struct {
	Addr    string `yaml:"addr"`
	LogPath string `yaml:"log"`
	Backend string `yaml:"backend"`

	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`

	Supabase struct {
		URL     string        `yaml:"url"`
		AnonKey string        `yaml:"anon_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"supabase"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	// JWTSecret verifies users' access tokens. Empty means tokens are not
	// trusted, unless the SQLite backend generates one.
	JWTSecret      string   `yaml:"jwt_secret"`
	PlaceholderURL string   `yaml:"placeholder_url"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	var cfg Config
	cfg.Addr = ":8080"
	cfg.Backend = BackendSQLite
	cfg.SQLite.Path = "najdeno.sqlite3"
	cfg.Supabase.Timeout = 10 * time.Second
	return cfg
}

// Load reads the defaults, then the YAML file at path (if path is
// non-empty), then the environment. A missing file is an error only when
// its path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// LoadDotEnv loads variables from the .env files into the environment
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// applyEnv overrides settings from environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Backend, "NAJDENO_BACKEND")
	set(&c.Addr, "NAJDENO_ADDR")
	set(&c.SQLite.Path, "NAJDENO_DB")
	set(&c.Supabase.URL, "SUPABASE_URL")
	set(&c.Supabase.AnonKey, "SUPABASE_ANON_KEY")
	set(&c.Postgres.DSN, "DATABASE_URL")
	set(&c.JWTSecret, "NAJDENO_JWT_SECRET")
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address required")
	}
	switch c.Backend {
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite backend requires sqlite.path")
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			return fmt.Errorf("supabase backend requires supabase.url and supabase.anon_key")
		}
		if c.Supabase.Timeout < 0 {
			return fmt.Errorf("supabase.timeout must not be negative")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres backend requires postgres.dsn")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendSQLite, BackendSupabase, BackendPostgres)
	}
	return nil
}
