// Команда migrate применяет встроенные миграции схемы доставки.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladislavdragonenkov/deliverytech/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second
	dsnEnv         = "DELIVERY_POSTGRES_DSN"
)

var errMissingDSN = errors.New(dsnEnv + " (or -dsn) is required")

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		fail("%v", err)
	}
}

// run разбирает флаги и выполняет одно направление миграций.
func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	direction := flags.String("direction", "up", "migration direction: up|down|status")
	steps := flags.Int("steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	dsn := flags.String("dsn", "", "PostgreSQL DSN (fallback: "+dsnEnv+")")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*dsn) == "" {
		*dsn = strings.TrimSpace(os.Getenv(dsnEnv))
	}
	if *dsn == "" {
		return errMissingDSN
	}

	mode := strings.ToLower(strings.TrimSpace(*direction))
	if mode != "up" && mode != "down" && mode != "status" {
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", *direction)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch mode {
	case "up":
		if err := store.MigrateUp(ctx, *steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		if err := store.MigrateDown(ctx, *steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, _ = fmt.Fprintf(out, "migrate %s ok: version=%d applied=%d\n", mode, version, count)
	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
