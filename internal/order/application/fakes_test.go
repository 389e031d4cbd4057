package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/delivery"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRepo keeps orders in memory and numbers them per local day.
type memRepo struct {
	mu     sync.Mutex
	orders []domain.Order
	now    func() time.Time
	err    error
}

func newMemRepo(now func() time.Time) *memRepo {
	return &memRepo{now: now}
}

func (m *memRepo) Place(_ context.Context, o domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Order{}, m.err
	}

	o.CreatedAt = m.now().UTC()
	day := domain.DayOf(o.CreatedAt)
	for _, existing := range m.orders {
		if day.Contains(existing.CreatedAt) && existing.DailySeq > o.DailySeq {
			o.DailySeq = existing.DailySeq
		}
	}
	o.DailySeq++
	o.ID = int64(len(m.orders) + 1)
	m.orders = append(m.orders, o)

	if o.SupersedesID != nil {
		for i := range m.orders {
			if m.orders[i].ID == *o.SupersedesID && m.orders[i].Status == domain.StatusPending {
				m.orders[i].Status = domain.StatusCancelled
			}
		}
	}
	return o, nil
}

func (m *memRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Order
	for _, o := range m.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) Transition(_ context.Context, id int64, to domain.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id && domain.CanTransition(m.orders[i].Status, to) {
			m.orders[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (m *memRepo) byID(id int64) domain.Order {
	o, _ := m.Get(context.Background(), id)
	return o
}

type fakeSettings struct {
	open   bool
	policy settings.Policy
}

func (f *fakeSettings) ShopOpen(context.Context) (bool, error) { return f.open, nil }

func (f *fakeSettings) DeliveryPolicy(context.Context) (settings.Policy, error) { return f.policy, nil }

type locatorFunc func(ctx context.Context, addr string) (delivery.Point, error)

func (f locatorFunc) Locate(ctx context.Context, addr string) (delivery.Point, error) { return f(ctx, addr) }

func at(p delivery.Point) locatorFunc {
	return func(context.Context, string) (delivery.Point, error) { return p, nil }
}

var errUpstream = errors.New("geocoder: status 500")

type fakeProducts map[int64]catalog.Product

func (f fakeProducts) Lookup(_ context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := map[int64]catalog.Product{}
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
