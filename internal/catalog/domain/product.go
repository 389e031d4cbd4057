package domain

import (
	"errors"
	"strings"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
)

const (
	DefaultPrintClass = "Noodle"
	DefaultSortOrder  = 100
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrMissingName    = errors.New("product needs a native name")
	ErrInvalidProduct = errors.New("invalid product")
)

// Product is a menu entry. Products are never deleted; Available hides them.
type Product struct {
	ID         int64     `json:"id"`
	Name       i18n.Text `json:"name"`
	Price      uint64    `json:"price"`
	Category   i18n.Text `json:"category"`
	Available  bool      `json:"available"`
	ImageURL   string    `json:"image_url"`
	Options    i18n.List `json:"options"`
	SortOrder  int       `json:"sort_order"`
	PrintClass string    `json:"print_class"`
}

// WithDefaults fills the sort weight and station when they were left empty.
func (p Product) WithDefaults() Product {
	if p.SortOrder == 0 {
		p.SortOrder = DefaultSortOrder
	}
	p.PrintClass = strings.TrimSpace(p.PrintClass)
	if p.PrintClass == "" {
		p.PrintClass = DefaultPrintClass
	}
	return p
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name[i18n.Native]) == "" {
		return ErrMissingName
	}
	if p.SortOrder < 0 {
		return errors.Join(ErrInvalidProduct, errors.New("sort order must not be negative"))
	}
	return nil
}
