// Package seed reads the menu file loaded into an empty catalog at boot.
package seed

import (
	"fmt"
	"os"

	"github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"gopkg.in/yaml.v3"
)

type file struct {
	Products []product `yaml:"products"`
}

// product lets the file omit "available"; missing means listed.
type product struct {
	Name       i18n.Text `yaml:"name"`
	Price      uint64    `yaml:"price"`
	Category   i18n.Text `yaml:"category"`
	Available  *bool     `yaml:"available"`
	ImageURL   string    `yaml:"image_url"`
	Options    i18n.List `yaml:"options"`
	SortOrder  int       `yaml:"sort_order"`
	PrintClass string    `yaml:"print_class"`
}

func Load(path string) ([]domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu seed: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]domain.Product, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode menu seed: %w", err)
	}
	out := make([]domain.Product, 0, len(f.Products))
	for i, p := range f.Products {
		prod := domain.Product{
			Name:       p.Name,
			Price:      p.Price,
			Category:   p.Category,
			Available:  p.Available == nil || *p.Available,
			ImageURL:   p.ImageURL,
			Options:    p.Options,
			SortOrder:  p.SortOrder,
			PrintClass: p.PrintClass,
		}.WithDefaults()
		if err := prod.Validate(); err != nil {
			return nil, fmt.Errorf("menu seed entry %d: %w", i, err)
		}
		out = append(out, prod)
	}
	return out, nil
}
