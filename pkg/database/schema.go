package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

const codeDuplicateColumn = "42701"

// Column is an additive upgrade applied to an existing table.
type Column struct {
	Table      string
	Name       string
	Definition string
}

// Schema is what one bounded context needs to exist before it serves traffic.
type Schema struct {
	Name    string
	Tables  []string
	Columns []Column
	// Upgrades run after the columns exist: backfills, constraints, indexes.
	// Each must be safe to repeat.
	Upgrades []string
	Seeds    []string
}

// Bootstrap creates missing tables, then adds missing columns, then runs
// upgrades and seeds. A failing CREATE TABLE aborts start-up since nothing
// can serve without its table. Column, upgrade and seed failures other than
// "duplicate column" are logged as warnings and skipped.
func Bootstrap(ctx context.Context, db Querier, log *slog.Logger, schemas ...Schema) error {
	for _, s := range schemas {
		for _, stmt := range s.Tables {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("bootstrap %s: %w", s.Name, err)
			}
		}
	}

	for _, s := range schemas {
		for _, c := range s.Columns {
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.Table, c.Name, c.Definition)
			if _, err := db.Exec(ctx, stmt); err != nil {
				if isDuplicateColumn(err) {
					continue
				}
				log.Warn("schema column migration failed", "schema", s.Name, "table", c.Table, "column", c.Name, "err", err)
			}
		}
		for _, stmt := range s.Upgrades {
			if _, err := db.Exec(ctx, stmt); err != nil {
				log.Warn("schema upgrade failed", "schema", s.Name, "stmt", stmt, "err", err)
			}
		}
		for _, stmt := range s.Seeds {
			if _, err := db.Exec(ctx, stmt); err != nil {
				log.Warn("schema seed failed", "schema", s.Name, "err", err)
			}
		}
	}
	log.Info("schema bootstrap complete", "schemas", len(schemas))
	return nil
}

func isDuplicateColumn(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeDuplicateColumn
}
