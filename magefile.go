//go:build mage

package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

var migrationDrivers = []string{"postgres", "sqlite"}

// MigrateUp runs all pending migrations
func MigrateUp() error {
	return notifier("migrate", "up")
}

// MigrateDown rolls back the last migration
func MigrateDown() error {
	return notifier("migrate", "down")
}

// MigrateVersion prints the current schema version
func MigrateVersion() error {
	return notifier("migrate", "version")
}

// MigrateCreate creates empty up/down migration files for every driver
func MigrateCreate(name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}

	for _, driver := range migrationDrivers {
		dir := filepath.Join("internal", "migrations", "sql", driver)
		version, err := nextVersion(dir)
		if err != nil {
			return err
		}

		for _, direction := range []string{"up", "down"} {
			path := filepath.Join(dir, fmt.Sprintf("%06d_%s.%s.sql", version, name, direction))
			if err := os.WriteFile(path, nil, 0o644); err != nil {
				return err
			}
			log.Printf("Created %s", path)
		}
	}
	return nil
}

// Serve starts the HTTP API, applying migrations first
func Serve() error {
	return notifier("serve", "--migrate")
}

// Worker starts the event worker
func Worker() error {
	return notifier("worker")
}

// Test runs the test suite
func Test() error {
	return run("go", "test", "./...")
}

// Helper functions

func notifier(args ...string) error {
	loadEnv()
	return run("go", append([]string{"run", "./cmd"}, args...)...)
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
}

func nextVersion(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return 0, err
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return 1, nil
	}

	var last int
	if _, err := fmt.Sscanf(filepath.Base(matches[len(matches)-1]), "%06d_", &last); err != nil {
		return 0, fmt.Errorf("unexpected migration file name %s: %w", matches[len(matches)-1], err)
	}
	return last + 1, nil
}
