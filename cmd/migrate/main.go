// CLI tool to apply or roll back database migrations from db/migrations.
// golang-migrate tracks applied versions in schema_migrations and runs each
// file in its own transaction.
// Usage: go run ./cmd/migrate [-path db/migrations] up|down [N]|version|force V
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	path := flag.String("path", "db/migrations", "directory containing *.up.sql / *.down.sql files")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"up"}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fatalf("Error loading .env: %v", err)
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		fatalf("DB_URL is required")
	}

	m, err := migrate.New("file://"+*path, pgx5URL(dbURL))
	if err != nil {
		fatalf("Unable to initialise migrations: %v", err)
	}
	defer m.Close()
	m.Log = stdoutLogger{}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("No pending migrations.")
				return
			}
			fatalf("Error applying migrations: %v", err)
		}
		printVersion(m)

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf("Error rolling back: %v", err)
		}
		printVersion(m)

	case "version":
		printVersion(m)

	case "force":
		if len(args) < 2 {
			fatalf("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatalf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			fatalf("Error forcing version: %v", err)
		}
		printVersion(m)

	default:
		fatalf("unknown command %q (want up, down, version or force)", args[0])
	}
}

// pgx5URL rewrites a postgres:// URL to the pgx5:// scheme the pgx/v5
// migrate driver registers under.
func pgx5URL(dbURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURL, prefix)
		}
	}
	return dbURL
}

func printVersion(m *migrate.Migrate) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied.")
		return
	}
	if err != nil {
		fatalf("Error reading version: %v", err)
	}
	fmt.Printf("  version: %d  dirty: %v\n", v, dirty)
}

type stdoutLogger struct{}

func (stdoutLogger) Printf(format string, v ...any) { fmt.Printf("  "+format, v...) }
func (stdoutLogger) Verbose() bool                  { return false }

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
