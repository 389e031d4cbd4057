package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/Restaurant-POS/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the settings table and seeds defaults without touching existing rows.
func Schema() database.Schema {
	seeded := seededDefaults()
	seeds := make([]string, 0, len(seeded))
	for _, k := range sortedDefaultKeys() {
		v, ok := seeded[k]
		if !ok {
			continue
		}
		seeds = append(seeds, fmt.Sprintf(
			"INSERT INTO settings (key, value) VALUES ('%s', '%s') ON CONFLICT (key) DO NOTHING",
			k, strings.ReplaceAll(v, "'", "''")))
	}
	return database.Schema{
		Name: "settings",
		Tables: []string{`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT ''
		)`},
		Seeds: seeds,
	}
}

type PGBackend struct {
	pool *pgxpool.Pool
}

func NewPGBackend(pool *pgxpool.Pool) *PGBackend {
	return &PGBackend{pool: pool}
}

func (b *PGBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := b.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (b *PGBackend) All(ctx context.Context) (map[string]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (b *PGBackend) Upsert(ctx context.Context, values map[string]string) error {
	return database.WithTx(ctx, b.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for k, v := range values {
			batch.Queue(`INSERT INTO settings (key, value) VALUES ($1,$2)
				ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value`, k, v)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
