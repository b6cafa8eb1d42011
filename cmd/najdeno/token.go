package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erazemk/najdeno/internal/auth"
)

// cmdToken prints an access token for a user id, for trying the board
// without a hosted login.
func cmdToken(args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)

	var s settings
	s.register(fs)

	var email string
	fs.StringVar(&email, "email", "", "")
	fs.StringVar(&email, "e", "", "")

	var ttl time.Duration
	fs.DurationVar(&ttl, "ttl", auth.TokenExpiry, "")
	fs.DurationVar(&ttl, "t", auth.TokenExpiry, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: najdeno token [flags] <user-id>

Flags:
  -c, -config <path>      YAML config file (default: none)
  -d, -db <path>          SQLite database path (default: najdeno.sqlite3)
  -e, -email <address>    email claim (default: none)
  -t, -ttl <duration>     token lifetime (default: 1h)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	cfg, err := s.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	secret := cfg.JWTSecret
	if secret == "" {
		database, err := openDatabase(cfg.SQLite.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		defer database.Close()

		secret, err = resolveJWTSecret(context.Background(), cfg, database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "error: no JWT secret configured (set NAJDENO_JWT_SECRET)")
		return 1
	}

	token, err := auth.GenerateToken(secret, fs.Arg(0), email, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}
