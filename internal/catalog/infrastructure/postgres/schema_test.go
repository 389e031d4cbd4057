package postgres

import (
	"testing"

	"github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDeclaresLocaleColumns(t *testing.T) {
	s := Schema()
	require.Len(t, s.Tables, 1)
	for _, c := range []string{"name_zh", "name_ko", "category_ja", "price BIGINT NOT NULL CHECK (price >= 0)"} {
		assert.Contains(t, s.Tables[0], c)
	}

	added := map[string]string{}
	for _, c := range s.Columns {
		assert.Equal(t, "products", c.Table)
		added[c.Name] = c.Definition
	}
	assert.Contains(t, added, "options_en")
	assert.Equal(t, "INT NOT NULL DEFAULT 100", added["sort_order"])
	assert.Equal(t, "TEXT NOT NULL DEFAULT 'Noodle'", added["print_class"])
}

func TestWriteColumnsLinesUpWithArgs(t *testing.T) {
	p := domain.Product{
		Name:       i18n.Text{i18n.ZH: "牛肉麵", i18n.EN: "Beef Noodle Soup"},
		Options:    i18n.List{i18n.ZH: {"大辣", "小辣"}},
		Price:      180,
		SortOrder:  10,
		PrintClass: "Noodle",
	}
	cols, args := writeColumns(p)
	require.Len(t, args, len(cols))

	byCol := map[string]any{}
	for i, c := range cols {
		byCol[c] = args[i]
	}
	assert.Equal(t, "牛肉麵", byCol["name_zh"])
	assert.Equal(t, "Beef Noodle Soup", byCol["name_en"])
	assert.Equal(t, "大辣,小辣", byCol["options_zh"])
	assert.Equal(t, "", byCol["options_en"])
	assert.Equal(t, int64(180), byCol["price"])
}
