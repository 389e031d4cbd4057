package application

import (
	"context"

	"github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	Save(ctx context.Context, p domain.Product) (int64, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
	Count(ctx context.Context) (int, error)
}
