package postgres

import "github.com/dmehra2102/Restaurant-POS/pkg/database"

// Schema creates the orders table. Delivery and locale columns arrived after
// the first release and are added in place on older databases.
func Schema() database.Schema {
	return database.Schema{
		Name: "order",
		Tables: []string{
			`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		channel TEXT NOT NULL CHECK (channel IN ('dine_in', 'takeout', 'delivery')),
		table_label TEXT NOT NULL,
		items JSONB NOT NULL,
		summary TEXT NOT NULL,
		total BIGINT NOT NULL CHECK (total >= 0),
		delivery_fee BIGINT NOT NULL DEFAULT 0 CHECK (delivery_fee >= 0),
		status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Completed', 'Cancelled')),
		created_at TIMESTAMPTZ NOT NULL,
		local_day DATE NOT NULL,
		daily_seq INT NOT NULL CHECK (daily_seq > 0)
	)`,
		},
		Columns: []database.Column{
			{Table: "orders", Name: "locale", Definition: "TEXT NOT NULL DEFAULT 'zh'"},
			{Table: "orders", Name: "needs_receipt", Definition: "BOOLEAN NOT NULL DEFAULT FALSE"},
			{Table: "orders", Name: "customer_name", Definition: "TEXT"},
			{Table: "orders", Name: "customer_phone", Definition: "TEXT"},
			{Table: "orders", Name: "customer_address", Definition: "TEXT"},
			{Table: "orders", Name: "scheduled_for", Definition: "TEXT"},
			{Table: "orders", Name: "delivery_info", Definition: "JSONB"},
			{Table: "orders", Name: "supersedes_id", Definition: "BIGINT REFERENCES orders(id)"},
			{Table: "orders", Name: "local_day", Definition: "DATE"},
			{Table: "orders", Name: "daily_seq", Definition: "INT"},
		},
		// Rows written before local_day existed get it from created_at in
		// UTC+8; a table that never had daily_seq is numbered per day by time.
		Upgrades: []string{
			`UPDATE orders SET local_day = ((created_at AT TIME ZONE 'UTC') + INTERVAL '8 hours')::date WHERE local_day IS NULL`,
			`UPDATE orders o SET daily_seq = n.seq FROM (
		SELECT id, ROW_NUMBER() OVER (PARTITION BY local_day ORDER BY created_at, id) AS seq FROM orders
	) n WHERE o.id = n.id AND o.daily_seq IS NULL`,
			`ALTER TABLE orders ALTER COLUMN local_day SET NOT NULL`,
			`ALTER TABLE orders ALTER COLUMN daily_seq SET NOT NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS orders_local_day_seq_key ON orders (local_day, daily_seq)`,
			`CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at)`,
		},
	}
}
