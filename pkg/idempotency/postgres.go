package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/Restaurant-POS/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Schema is the marks table used by PGStore.
var Schema = database.Schema{
	Name: "idempotency",
	Tables: []string{`CREATE TABLE IF NOT EXISTS idempotency_marks (
		key TEXT PRIMARY KEY,
		expires_at TIMESTAMPTZ NOT NULL
	)`},
}

// PGStore keeps marks in Postgres so they outlive the process when no Redis
// is configured.
type PGStore struct {
	db  database.Querier
	ttl time.Duration
	now func() time.Time
}

func NewPGStore(db database.Querier, ttl time.Duration) *PGStore {
	return &PGStore{db: db, ttl: ttl, now: time.Now}
}

// Seen claims key unless an unexpired mark exists. An expired mark is taken over.
func (s *PGStore) Seen(ctx context.Context, key string) (bool, error) {
	now := s.now().UTC()
	var claimed string
	err := s.db.QueryRow(ctx, `INSERT INTO idempotency_marks (key, expires_at) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE idempotency_marks.expires_at <= $3
		RETURNING key`, key, now.Add(s.ttl), now).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (s *PGStore) Release(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM idempotency_marks WHERE key = $1`, key)
	return err
}
