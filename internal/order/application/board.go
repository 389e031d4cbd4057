package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
)

type BoardView struct {
	Orders []domain.Order `json:"orders"`
	MaxSeq int            `json:"max_seq"`
	NewIDs []int64        `json:"new_ids"`
}

// Board is the kitchen's view of today's orders.
type Board struct {
	log  *slog.Logger
	repo OrderRepository
	now  func() time.Time
}

func NewBoard(log *slog.Logger, repo OrderRepository) *Board {
	return &Board{log: log, repo: repo, now: time.Now}
}

func (b *Board) Today() domain.Day { return domain.DayOf(b.now()) }

// ListToday returns today's orders, pending first then newest sequence first,
// and flags those numbered above currentMaxSeq.
func (b *Board) ListToday(ctx context.Context, currentMaxSeq int) (BoardView, error) {
	day := b.Today()
	orders, err := b.repo.ListBetween(ctx, day.Start(), day.End())
	if err != nil {
		return BoardView{}, fmt.Errorf("list orders for %s: %w", day, err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		pi, pj := orders[i].Status == domain.StatusPending, orders[j].Status == domain.StatusPending
		if pi != pj {
			return pi
		}
		return orders[i].DailySeq > orders[j].DailySeq
	})

	view := BoardView{Orders: orders, NewIDs: []int64{}}
	for _, o := range orders {
		if o.DailySeq > view.MaxSeq {
			view.MaxSeq = o.DailySeq
		}
		if o.DailySeq > currentMaxSeq {
			view.NewIDs = append(view.NewIDs, o.ID)
		}
	}
	return view, nil
}

func (b *Board) Complete(ctx context.Context, id int64) error {
	return b.transition(ctx, id, domain.StatusCompleted)
}

func (b *Board) Cancel(ctx context.Context, id int64) error {
	return b.transition(ctx, id, domain.StatusCancelled)
}

// transition is a no-op for orders that already left Pending, so two
// terminals pressing the same button both succeed.
func (b *Board) transition(ctx context.Context, id int64, to domain.Status) error {
	changed, err := b.repo.Transition(ctx, id, to)
	if err != nil {
		return fmt.Errorf("mark order %d %s: %w", id, to, err)
	}
	if changed {
		b.log.Info("order status changed", "order_id", id, "status", to)
	} else {
		b.log.Debug("order not pending, transition skipped", "order_id", id, "status", to)
	}
	return nil
}

func (b *Board) SalesRanking(ctx context.Context, r domain.Range) ([]domain.ItemCount, error) {
	if r.To.Before(r.From) {
		r.From, r.To = r.To, r.From
	}
	from, to := r.Window()
	orders, err := b.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders for ranking: %w", err)
	}
	return domain.Rank(orders), nil
}

func (b *Board) Receipt(ctx context.Context, id int64) (domain.Order, error) {
	return b.repo.Get(ctx, id)
}

func (b *Board) DailyFigures(ctx context.Context, day domain.Day) (domain.Figures, error) {
	orders, err := b.repo.ListBetween(ctx, day.Start(), day.End())
	if err != nil {
		return domain.Figures{}, fmt.Errorf("list orders for %s: %w", day, err)
	}
	return domain.Rollup(day, orders), nil
}
