package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
)

type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Menu(ctx context.Context, loc i18n.Locale) ([]domain.Section, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return domain.BuildMenu(products, loc), nil
}

// Products returns every product, hidden ones included, for the admin page.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Lookup(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]domain.Product{}, nil
	}
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) Save(ctx context.Context, p domain.Product) (int64, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.Save(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("product saved", "product_id", id, "name", p.Name[i18n.Native])
	return id, nil
}

func (s *Service) SetAvailability(ctx context.Context, id int64, available bool) error {
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	s.log.Info("product availability changed", "product_id", id, "available", available)
	return nil
}

// Seed loads products into an empty catalog. A catalog that already has
// rows is left alone so admin edits survive restarts.
func (s *Service) Seed(ctx context.Context, products []domain.Product) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		s.log.Info("catalog already populated, seed skipped", "products", n)
		return 0, nil
	}
	for i, p := range products {
		p.ID = 0
		if _, err := s.Save(ctx, p); err != nil {
			return i, fmt.Errorf("seed product %d: %w", i, err)
		}
	}
	return len(products), nil
}
