package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/pkg/database"
	"github.com/dmehra2102/Restaurant-POS/pkg/outbox"
	"github.com/dmehra2102/Restaurant-POS/pkg/tracing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectOrder = `SELECT id, channel, table_label, items, summary, total, delivery_fee, status,
	created_at, daily_seq, locale, needs_receipt, customer_name, customer_phone, customer_address,
	scheduled_for, delivery_info, supersedes_id FROM orders`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool, now: time.Now}
}

// Place numbers and inserts o in one transaction. The table lock makes
// concurrent inserts take turns, so the sequence follows commit order and a
// rolled-back attempt leaves nothing behind.
func (r *Repository) Place(ctx context.Context, o domain.Order) (domain.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode items: %w", err)
	}
	var (
		name, phone, address, scheduled *string
		info                            []byte
	)
	if d := o.Delivery; d != nil {
		name, phone, address, scheduled = &d.CustomerName, &d.CustomerPhone, &d.CustomerAddress, &d.ScheduledFor
		if info, err = json.Marshal(d.Info); err != nil {
			return domain.Order{}, fmt.Errorf("encode delivery info: %w", err)
		}
	}
	traceparent := tracing.Traceparent(ctx)

	err = database.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE orders IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock orders: %w", err)
		}

		o.CreatedAt = r.now().UTC()
		o.Status = domain.StatusPending
		day := domain.DayOf(o.CreatedAt)

		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(daily_seq), 0) + 1 FROM orders
			WHERE created_at >= $1 AND created_at < $2`, day.Start(), day.End()).Scan(&o.DailySeq); err != nil {
			return fmt.Errorf("next daily seq: %w", err)
		}

		if o.SupersedesID != nil {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, *o.SupersedesID).Scan(&exists); err != nil {
				return fmt.Errorf("look up superseded order: %w", err)
			}
			if !exists {
				r.log.Info("superseded order unknown, placing as new", "order_id", *o.SupersedesID)
				o.SupersedesID = nil
			}
		}

		err := tx.QueryRow(ctx, `INSERT INTO orders (channel, table_label, items, summary, total, delivery_fee, status,
			created_at, local_day, daily_seq, locale, needs_receipt, customer_name, customer_phone, customer_address,
			scheduled_for, delivery_info, supersedes_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18) RETURNING id`,
			string(o.Channel), o.TableLabel, items, o.Summary, o.Total.Int64(), o.DeliveryFee.Int64(), string(o.Status),
			o.CreatedAt, day.Date(), o.DailySeq, string(o.Locale), o.NeedsReceipt, name, phone, address,
			scheduled, info, o.SupersedesID,
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := appendEvent(ctx, tx, o.ID, domain.EventOrderPlaced, domain.PlacedEvent(o), traceparent); err != nil {
			return err
		}

		if o.SupersedesID != nil {
			return r.supersede(ctx, tx, *o.SupersedesID, o.CreatedAt, traceparent)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// supersede cancels the replaced order if the kitchen has not finished it yet.
func (r *Repository) supersede(ctx context.Context, tx pgx.Tx, id int64, at time.Time, traceparent string) error {
	var seq int
	err := tx.QueryRow(ctx, `UPDATE orders SET status = 'Cancelled' WHERE id = $1 AND status = 'Pending' RETURNING daily_seq`, id).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Info("superseded order not pending, left as is", "order_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("cancel superseded order %d: %w", id, err)
	}
	return appendEvent(ctx, tx, id, domain.EventOrderStatusChanged, domain.OrderStatusChanged{
		OrderID: id, DailySeq: seq, From: domain.StatusPending, To: domain.StatusCancelled, ChangedAt: at,
	}, traceparent)
}

func (r *Repository) Transition(ctx context.Context, id int64, to domain.Status) (bool, error) {
	if !domain.CanTransition(domain.StatusPending, to) {
		return false, fmt.Errorf("transition to %s not allowed", to)
	}
	traceparent := tracing.Traceparent(ctx)

	changed := false
	err := database.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var seq int
		err := tx.QueryRow(ctx, `UPDATE orders SET status = $2 WHERE id = $1 AND status = 'Pending' RETURNING daily_seq`,
			id, string(to)).Scan(&seq)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		changed = true
		return appendEvent(ctx, tx, id, domain.EventOrderStatusChanged, domain.OrderStatusChanged{
			OrderID: id, DailySeq: seq, From: domain.StatusPending, To: to, ChangedAt: r.now().UTC(),
		}, traceparent)
	})
	return changed, err
}

func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, err
}

func appendEvent(ctx context.Context, tx pgx.Tx, orderID int64, eventType string, payload any, traceparent string) error {
	e, err := outbox.NewEvent(domain.AggregateOrder, strconv.FormatInt(orderID, 10), eventType, payload, nil)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	e.Traceparent = traceparent
	if err := outbox.Append(ctx, tx, e); err != nil {
		return fmt.Errorf("append %s event: %w", eventType, err)
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o                               domain.Order
		channel, status, locale         string
		items, info                     []byte
		total, fee                      int64
		name, phone, address, scheduled *string
	)
	err := row.Scan(&o.ID, &channel, &o.TableLabel, &items, &o.Summary, &total, &fee, &status,
		&o.CreatedAt, &o.DailySeq, &locale, &o.NeedsReceipt, &name, &phone, &address,
		&scheduled, &info, &o.SupersedesID)
	if err != nil {
		return domain.Order{}, err
	}

	if o.Channel, err = domain.ParseChannel(channel); err != nil {
		return domain.Order{}, err
	}
	if o.Status, err = domain.ParseStatus(status); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items of order %d: %w", o.ID, err)
	}
	o.Total, o.DeliveryFee = domain.Money(total), domain.Money(fee)
	o.Locale = i18n.Locale(locale)
	o.CreatedAt = o.CreatedAt.UTC()

	if o.Channel == domain.ChannelDelivery {
		d := &domain.Delivery{
			CustomerName:    deref(name),
			CustomerPhone:   deref(phone),
			CustomerAddress: deref(address),
			ScheduledFor:    deref(scheduled),
		}
		if len(info) > 0 {
			if err := json.Unmarshal(info, &d.Info); err != nil {
				return domain.Order{}, fmt.Errorf("decode delivery info of order %d: %w", o.ID, err)
			}
		}
		o.Delivery = d
	}
	return o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
