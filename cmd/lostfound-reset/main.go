// Command lostfound-reset recreates the portal database from scratch with
// demo accounts. All existing data is lost.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type account struct {
	username string
	email    string
	password string
	role     model.Role
}

var demoAccounts = []account{
	{"admin", "admin@example.com", "admin123", model.RoleAdmin},
	{"22211013", "22211013@example.com", "password123", model.RoleStudent},
}

func main() {
	fs := flag.NewFlagSet("lostfound-reset", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var yes bool
	fs.BoolVar(&yes, "yes", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound-reset -yes [flags]

Drops every table and recreates the schema with default data and demo accounts.

Flags:
  -config <path>          config file (yaml, json or toml)
  -d, -db <path>          SQLite database path (default: from config)
  -yes                    confirm that all data will be deleted
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if !yes {
		fmt.Fprintln(os.Stderr, "refusing to reset without -yes")
		fs.Usage()
		os.Exit(1)
	}

	if dbPath == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		dbPath = cfg.DBPath
	}

	if err := reset(context.Background(), dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func reset(ctx context.Context, path string) error {
	database, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Recreate(database); err != nil {
		return fmt.Errorf("recreating schema: %w", err)
	}
	if err := store.SeedDefaults(ctx, database); err != nil {
		return fmt.Errorf("seeding defaults: %w", err)
	}

	fmt.Printf("Database reset: %s\n", path)
	fmt.Println()
	fmt.Println("Accounts:")
	for _, a := range demoAccounts {
		hash, err := auth.HashPassword(a.password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		if _, err := store.SeedUser(ctx, database, a.username, a.email, hash, a.role); err != nil {
			return fmt.Errorf("creating user %s: %w", a.username, err)
		}
		fmt.Printf("  %-8s %s / %s\n", a.role, a.username, a.password)
	}
	return nil
}
