package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Localized fields live in one column per locale: name_zh, name_en, ...
// Option lists are stored comma separated.
var (
	nameCols     = localeColumns("name")
	categoryCols = localeColumns("category")
	optionCols   = localeColumns("options")

	selectCols = strings.Join(append(append(append([]string{"id"}, nameCols...), categoryCols...), optionCols...), ", ") +
		", price, is_available, image_url, sort_order, print_class"
)

func localeColumns(prefix string) []string {
	cols := make([]string, 0, len(i18n.Supported))
	for _, l := range i18n.Supported {
		cols = append(cols, prefix+"_"+string(l))
	}
	return cols
}

func Schema() database.Schema {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS products (\n\t\tid BIGSERIAL PRIMARY KEY,\n")
	for _, c := range append(nameCols, categoryCols...) {
		fmt.Fprintf(&b, "\t\t%s TEXT NOT NULL DEFAULT '',\n", c)
	}
	b.WriteString("\t\tprice BIGINT NOT NULL CHECK (price >= 0),\n")
	b.WriteString("\t\tis_available BOOLEAN NOT NULL DEFAULT TRUE,\n")
	b.WriteString("\t\timage_url TEXT NOT NULL DEFAULT ''\n\t)")

	s := database.Schema{Name: "catalog", Tables: []string{b.String()}}
	for _, c := range optionCols {
		s.Columns = append(s.Columns, database.Column{Table: "products", Name: c, Definition: "TEXT NOT NULL DEFAULT ''"})
	}
	s.Columns = append(s.Columns,
		database.Column{Table: "products", Name: "sort_order", Definition: fmt.Sprintf("INT NOT NULL DEFAULT %d", domain.DefaultSortOrder)},
		database.Column{Table: "products", Name: "print_class", Definition: fmt.Sprintf("TEXT NOT NULL DEFAULT '%s'", domain.DefaultPrintClass)},
	)
	return s
}

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectCols+` FROM products ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repository) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectCols+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	products, err := collect(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *Repository) Save(ctx context.Context, p domain.Product) (int64, error) {
	cols, args := writeColumns(p)
	if p.ID == 0 {
		marks := make([]string, len(cols))
		for i := range cols {
			marks[i] = fmt.Sprintf("$%d", i+1)
		}
		var id int64
		err := r.pool.QueryRow(ctx, fmt.Sprintf(`INSERT INTO products (%s) VALUES (%s) RETURNING id`,
			strings.Join(cols, ", "), strings.Join(marks, ", ")), args...).Scan(&id)
		return id, err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s=$%d", c, i+1)
	}
	args = append(args, p.ID)
	ct, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE products SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return 0, err
	}
	if ct.RowsAffected() == 0 {
		return 0, domain.ErrNotFound
	}
	return p.ID, nil
}

func (r *Repository) SetAvailability(ctx context.Context, id int64, available bool) error {
	ct, err := r.pool.Exec(ctx, `UPDATE products SET is_available=$2 WHERE id=$1`, id, available)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func writeColumns(p domain.Product) ([]string, []any) {
	var cols []string
	var args []any
	for i, l := range i18n.Supported {
		cols = append(cols, nameCols[i], categoryCols[i], optionCols[i])
		args = append(args, p.Name[l], p.Category[l], i18n.JoinTokens(p.Options[l]))
	}
	cols = append(cols, "price", "is_available", "image_url", "sort_order", "print_class")
	args = append(args, int64(p.Price), p.Available, p.ImageURL, p.SortOrder, p.PrintClass)
	return cols, args
}

func collect(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	n := len(i18n.Supported)
	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price int64
			names = make([]string, n)
			cats  = make([]string, n)
			opts  = make([]string, n)
		)
		dest := []any{&p.ID}
		for i := range names {
			dest = append(dest, &names[i])
		}
		for i := range cats {
			dest = append(dest, &cats[i])
		}
		for i := range opts {
			dest = append(dest, &opts[i])
		}
		dest = append(dest, &price, &p.Available, &p.ImageURL, &p.SortOrder, &p.PrintClass)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		p.Price = uint64(price)
		p.Name, p.Category, p.Options = i18n.Text{}, i18n.Text{}, i18n.List{}
		for i, l := range i18n.Supported {
			if names[i] != "" {
				p.Name[l] = names[i]
			}
			if cats[i] != "" {
				p.Category[l] = cats[i]
			}
			if tokens := i18n.SplitTokens(opts[i]); len(tokens) > 0 {
				p.Options[l] = tokens
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
