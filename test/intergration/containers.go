// Package intergration starts throwaway infrastructure for tests that need
// a real database. Callers skip it under -short.
package intergration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/Restaurant-POS/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type Env struct {
	PG     *postgres.PostgresContainer
	PGURL  string
	Pool   *pgxpool.Pool
	Cancel context.CancelFunc
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pos"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cancel()
		_ = pgC.Terminate(context.Background())
		return nil, err
	}

	pool, err := database.NewPool(ctx, database.Config{URL: pgURL, MaxConns: 60})
	if err != nil {
		cancel()
		_ = pgC.Terminate(context.Background())
		return nil, err
	}

	return &Env{
		PG:     pgC,
		PGURL:  pgURL,
		Pool:   pool,
		Cancel: cancel,
	}, nil
}

// Start is Setup for tests: it skips under -short and registers teardown.
func Start(t *testing.T) *Env {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}
	env, err := Setup(context.Background())
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { env.Teardown(context.Background()) })
	return env
}

// Truncate empties the given tables and resets their sequences.
func (e *Env) Truncate(ctx context.Context, tables ...string) error {
	_, err := e.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
	return err
}

func (e *Env) Teardown(ctx context.Context) {
	e.Pool.Close()
	e.Cancel()
	_ = e.PG.Terminate(ctx)
}
