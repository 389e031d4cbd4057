package domain

import (
	"sort"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
)

type MenuItem struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Price      uint64   `json:"price"`
	ImageURL   string   `json:"image_url,omitempty"`
	Options    []string `json:"options,omitempty"`
	PrintClass string   `json:"print_class"`
}

type Section struct {
	Category string     `json:"category"`
	Items    []MenuItem `json:"items"`
}

// BuildMenu groups available products by category, in sort weight order,
// with every label rendered in loc.
func BuildMenu(products []Product, loc i18n.Locale) []Section {
	visible := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Available {
			visible = append(visible, p)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].SortOrder != visible[j].SortOrder {
			return visible[i].SortOrder < visible[j].SortOrder
		}
		return visible[i].ID < visible[j].ID
	})

	var sections []Section
	index := map[string]int{}
	for _, p := range visible {
		key := p.Category[i18n.Native]
		i, ok := index[key]
		if !ok {
			i = len(sections)
			index[key] = i
			sections = append(sections, Section{Category: p.Category.In(loc)})
		}
		sections[i].Items = append(sections[i].Items, MenuItem{
			ID:         p.ID,
			Name:       p.Name.In(loc),
			Price:      p.Price,
			ImageURL:   p.ImageURL,
			Options:    p.Options.In(loc),
			PrintClass: p.PrintClass,
		})
	}
	return sections
}
