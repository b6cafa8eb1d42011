package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/listing"
	"github.com/erazemk/najdeno/internal/pgstore"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/supabase"
	"github.com/erazemk/najdeno/internal/web"
)

// settings are the flags shared by the server and the token command.
type settings struct {
	configPath string
	addr       string
	dbPath     string
	logPath    string
	backend    string
}

func (s *settings) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", "", "")
	fs.StringVar(&s.configPath, "c", "", "")
	fs.StringVar(&s.dbPath, "db", "", "")
	fs.StringVar(&s.dbPath, "d", "", "")
}

// load reads .env, the config file and the environment, then applies
// flags that were set.
func (s *settings) load() (config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return cfg, err
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Addr, s.addr)
	override(&cfg.SQLite.Path, s.dbPath)
	override(&cfg.LogPath, s.logPath)
	override(&cfg.Backend, s.backend)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(cmdToken(os.Args[2:]))
	}
	os.Exit(cmdServe(os.Args[1:]))
}

func cmdServe(args []string) int {
	fs := flag.NewFlagSet("najdeno", flag.ContinueOnError)

	var s settings
	s.register(fs)
	fs.StringVar(&s.addr, "addr", "", "")
	fs.StringVar(&s.addr, "a", "", "")
	fs.StringVar(&s.logPath, "log", "", "")
	fs.StringVar(&s.logPath, "l", "", "")
	fs.StringVar(&s.backend, "backend", "", "")
	fs.StringVar(&s.backend, "b", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: najdeno [flags]
       najdeno token [flags] <user-id>

Flags:
  -c, -config <path>      YAML config file (default: none)
  -a, -addr <host:port>   listen address (default: :8080)
  -b, -backend <name>     record store: sqlite, supabase or postgres (default: sqlite)
  -d, -db <path>          SQLite database path (default: najdeno.sqlite3)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment: SUPABASE_URL, SUPABASE_ANON_KEY, DATABASE_URL, NAJDENO_BACKEND,
NAJDENO_JWT_SECRET, NAJDENO_ADDR, NAJDENO_DB. A .env file is read if present.
`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return 1
	}

	cfg, err := s.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	closeLog, err := setupLogger(cfg.LogPath, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := serve(cfg); err != nil {
		slog.Error("server error", "error", err)
		return 1
	}
	return 0
}

// serve wires the configured record store into the page and API surfaces
// and runs the HTTP server until a shutdown signal arrives.
func serve(cfg config.Config) error {
	ctx := context.Background()

	// The local database always holds photos and settings, whichever
	// backend stores the records.
	database, err := openDatabase(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	records, closeStore, err := openStore(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeStore()

	jwtSecret, err := resolveJWTSecret(ctx, cfg, database)
	if err != nil {
		return err
	}
	if jwtSecret == "" {
		slog.Warn("no JWT secret configured, access tokens are ignored")
	}

	renderer, err := listing.NewRenderer(cfg.PlaceholderURL)
	if err != nil {
		return err
	}
	// Pages bind their own board as the refresher; API callers re-fetch.
	submitter := listing.NewSubmitter(records, nil, nil)

	apiRouter := api.NewRouter(&api.ItemsHandler{Store: records, Submitter: submitter}, jwtSecret, cfg.CORSOrigins)
	webRouter, err := web.NewRouter(&web.Server{
		Store:     records,
		Renderer:  renderer,
		Submitter: submitter,
		Photos:    store.NewPhotos(database),
	}, jwtSecret)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Chain().Then(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "backend", cfg.Backend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped")
	return nil
}

func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

// openStore returns the record store selected by cfg.Backend and a
// function releasing it.
func openStore(ctx context.Context, cfg config.Config, database *sql.DB) (listing.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSupabase:
		client, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	case config.BackendPostgres:
		pg, err := pgstore.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return store.NewRecords(database), func() {}, nil
	}
}

// resolveJWTSecret returns the configured secret. The local backend falls
// back to one generated on first run and kept in the database.
func resolveJWTSecret(ctx context.Context, cfg config.Config, database *sql.DB) (string, error) {
	if cfg.JWTSecret != "" || cfg.Backend != config.BackendSQLite {
		return cfg.JWTSecret, nil
	}
	secret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return "", fmt.Errorf("getting JWT secret: %w", err)
	}
	return secret, nil
}
