package printing

import (
	"testing"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedEvent() domain.OrderPlaced {
	return domain.OrderPlaced{
		OrderID:    42,
		DailySeq:   7,
		Channel:    domain.ChannelDineIn,
		TableLabel: "5",
		PlacedAt:   time.Date(2026, 10, 15, 4, 5, 0, 0, time.UTC),
		Items: []domain.LineItem{
			{Name: i18n.Text{i18n.ZH: "牛肉麵", i18n.EN: "Beef Noodle Soup"}, Qty: 2, PrintClass: "Noodle",
				Options: i18n.List{i18n.ZH: {"大辣"}, i18n.EN: {"Hot"}}},
			{Name: i18n.Text{i18n.ZH: "水餃"}, Qty: 1, PrintClass: "Dumpling"},
			{Name: i18n.Text{i18n.ZH: "炸醬麵"}, Qty: 1},
		},
	}
}

func TestRoute(t *testing.T) {
	tickets := Route(placedEvent())
	require.Len(t, tickets, 2)

	assert.Equal(t, "Dumpling", tickets[0].Station)
	assert.Equal(t, []TicketLine{{Name: "水餃", Qty: 1}}, tickets[0].Lines)

	noodle := tickets[1]
	assert.Equal(t, "Noodle", noodle.Station)
	assert.Equal(t, 7, noodle.DailySeq)
	require.Len(t, noodle.Lines, 2)
	assert.Equal(t, TicketLine{Name: "牛肉麵", Options: []string{"大辣"}, Qty: 2}, noodle.Lines[0])
	assert.Equal(t, "炸醬麵", noodle.Lines[1].Name, "blank print class goes to the default station")
}

func TestRender(t *testing.T) {
	ev := placedEvent()
	replaced := int64(40)
	ev.SupersedesID = &replaced

	out := Route(ev)[1].Render()
	assert.Contains(t, out, "#007  5  [Noodle]")
	assert.Contains(t, out, "2026-10-15 12:05")
	assert.Contains(t, out, "replaces order 40")
	assert.Contains(t, out, "牛肉麵 x2\n  大辣\n")
}

func TestVoidSlip(t *testing.T) {
	slip := VoidSlip(domain.OrderStatusChanged{
		OrderID: 42, DailySeq: 7, To: domain.StatusCancelled,
		ChangedAt: time.Date(2026, 10, 15, 4, 30, 0, 0, time.UTC),
	})
	assert.Contains(t, slip, "#007")
	assert.Contains(t, slip, "12:30")
}
