package application

import (
	"context"
	"time"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/delivery"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
)

type OrderRepository interface {
	// Place inserts o with the next daily sequence number and, when
	// o.SupersedesID is set, cancels that order if it is still pending.
	Place(ctx context.Context, o domain.Order) (domain.Order, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	// Transition moves a pending order to a terminal status. It reports
	// whether a row changed; unknown or already-terminal orders are not errors.
	Transition(ctx context.Context, id int64, to domain.Status) (bool, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
}

type SettingsReader interface {
	ShopOpen(ctx context.Context) (bool, error)
	DeliveryPolicy(ctx context.Context) (settings.Policy, error)
}

type Admitter interface {
	Admit(ctx context.Context, rawAddress string, policy settings.Policy) delivery.Admission
}

type ProductLookup interface {
	Lookup(ctx context.Context, ids []int64) (map[int64]catalog.Product, error)
}
