package domain

import (
	"testing"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMenu(t *testing.T) {
	noodles := i18n.Text{i18n.ZH: "麵類", i18n.EN: "Noodles"}
	sides := i18n.Text{i18n.ZH: "小菜", i18n.EN: "Sides"}
	products := []Product{
		{ID: 3, Name: i18n.Text{i18n.ZH: "青菜", i18n.EN: "Greens"}, Price: 40, Category: sides, Available: true, SortOrder: 50},
		{ID: 1, Name: i18n.Text{i18n.ZH: "牛肉麵", i18n.EN: "Beef Noodle Soup"}, Price: 180, Category: noodles, Available: true, SortOrder: 10,
			Options: i18n.List{i18n.ZH: {"大辣", "小辣"}, i18n.EN: {"Hot", "Mild"}}},
		{ID: 2, Name: i18n.Text{i18n.ZH: "炸醬麵"}, Price: 120, Category: noodles, Available: false, SortOrder: 20},
		{ID: 4, Name: i18n.Text{i18n.ZH: "餛飩麵"}, Price: 110, Category: noodles, Available: true, SortOrder: 10},
	}

	menu := BuildMenu(products, i18n.EN)
	require.Len(t, menu, 2)

	assert.Equal(t, "Noodles", menu[0].Category)
	require.Len(t, menu[0].Items, 2)
	assert.Equal(t, "Beef Noodle Soup", menu[0].Items[0].Name)
	assert.Equal(t, []string{"Hot", "Mild"}, menu[0].Items[0].Options)
	assert.Equal(t, "餛飩麵", menu[0].Items[1].Name, "falls back to native name")

	assert.Equal(t, "Sides", menu[1].Category)
	assert.Equal(t, "Greens", menu[1].Items[0].Name)
}

func TestProductDefaultsAndValidate(t *testing.T) {
	p := Product{Name: i18n.Text{i18n.ZH: "水餃"}}.WithDefaults()
	assert.Equal(t, DefaultSortOrder, p.SortOrder)
	assert.Equal(t, DefaultPrintClass, p.PrintClass)
	assert.NoError(t, p.Validate())

	assert.ErrorIs(t, Product{Name: i18n.Text{i18n.EN: "Dumplings"}}.Validate(), ErrMissingName)
	assert.ErrorIs(t, Product{Name: i18n.Text{i18n.ZH: "水餃"}, SortOrder: -1}.Validate(), ErrInvalidProduct)
}
