package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	err := WithTx(context.Background(), b, pgx.TxOptions{}, func(pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTx(context.Background(), b, pgx.TxOptions{}, func(pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, b.tx.committed)
	assert.True(t, b.tx.rolledBack)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	assert.Panics(t, func() {
		_ = WithTx(context.Background(), b, pgx.TxOptions{}, func(pgx.Tx) error { panic("boom") })
	})
	assert.True(t, b.tx.rolledBack)
}

func TestWithTx_BeginError(t *testing.T) {
	b := &fakeBeginner{err: errors.New("no conn")}
	called := false
	err := WithTx(context.Background(), b, pgx.TxOptions{}, func(pgx.Tx) error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)
}

type fakeExec struct {
	Querier
	stmts []string
	errs  map[string]error
}

func (f *fakeExec) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.stmts = append(f.stmts, sql)
	for prefix, err := range f.errs {
		if strings.HasPrefix(sql, prefix) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.CommandTag{}, nil
}

func TestBootstrap_SwallowsDuplicateColumnAndWarnsOnOthers(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	db := &fakeExec{errs: map[string]error{
		"ALTER TABLE orders ADD COLUMN locale": &pgconn.PgError{Code: codeDuplicateColumn},
		"ALTER TABLE orders ADD COLUMN broken": errors.New("syntax error"),
	}}

	err := Bootstrap(context.Background(), db, log, Schema{
		Name:   "order",
		Tables: []string{"CREATE TABLE IF NOT EXISTS orders (id BIGSERIAL PRIMARY KEY)"},
		Columns: []Column{
			{Table: "orders", Name: "locale", Definition: "TEXT"},
			{Table: "orders", Name: "broken", Definition: "???"},
		},
	})

	require.NoError(t, err)
	assert.Len(t, db.stmts, 3)
	assert.Contains(t, buf.String(), "column=broken")
	assert.NotContains(t, buf.String(), "column=locale")
}

func TestBootstrap_CreateFailureAborts(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	db := &fakeExec{errs: map[string]error{"CREATE": errors.New("permission denied")}}

	err := Bootstrap(context.Background(), db, log, Schema{
		Name:    "order",
		Tables:  []string{"CREATE TABLE IF NOT EXISTS orders (id BIGSERIAL PRIMARY KEY)"},
		Columns: []Column{{Table: "orders", Name: "x", Definition: "TEXT"}},
	})

	assert.Error(t, err)
	assert.Len(t, db.stmts, 1)
}

func TestBootstrap_UpgradesRunAfterColumnsAndOnlyWarn(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	db := &fakeExec{errs: map[string]error{"CREATE UNIQUE INDEX": errors.New("duplicate key")}}

	err := Bootstrap(context.Background(), db, log, Schema{
		Name:     "order",
		Tables:   []string{"CREATE TABLE IF NOT EXISTS orders (id BIGSERIAL PRIMARY KEY)"},
		Columns:  []Column{{Table: "orders", Name: "local_day", Definition: "DATE"}},
		Upgrades: []string{"UPDATE orders SET local_day = now()::date WHERE local_day IS NULL", "CREATE UNIQUE INDEX IF NOT EXISTS k ON orders (local_day)"},
		Seeds:    []string{"INSERT INTO settings VALUES ('a', 'b')"},
	})

	require.NoError(t, err)
	require.Len(t, db.stmts, 5)
	assert.True(t, strings.HasPrefix(db.stmts[1], "ALTER TABLE orders ADD COLUMN local_day"))
	assert.True(t, strings.HasPrefix(db.stmts[2], "UPDATE orders"))
	assert.True(t, strings.HasPrefix(db.stmts[4], "INSERT"))
	assert.Contains(t, buf.String(), "schema upgrade failed")
}
