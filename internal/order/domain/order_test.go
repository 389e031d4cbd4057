package domain

import (
	"testing"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beef(qty int) LineItem {
	return LineItem{
		ProductID: 1,
		Name:      i18n.Text{i18n.ZH: "牛肉麵", i18n.EN: "Beef Noodle Soup"},
		UnitPrice: 180,
		Qty:       qty,
		Options:   i18n.List{i18n.ZH: {"大辣", "加麵"}, i18n.EN: {"Extra spicy", "More noodles"}},
	}
}

func dumplings(qty int) LineItem {
	return LineItem{ProductID: 2, Name: i18n.Text{i18n.ZH: "水餃"}, UnitPrice: 100, Qty: qty}
}

func TestSummarize(t *testing.T) {
	items := []LineItem{beef(2), dumplings(1)}

	assert.Equal(t, "牛肉麵 (大辣,加麵) x2 + 水餃 x1", Summarize(items, i18n.ZH))
	assert.Equal(t, "Beef Noodle Soup (Extra spicy,More noodles) x2 + 水餃 x1", Summarize(items, i18n.EN))
	assert.Equal(t, "牛肉麵 (大辣,加麵) x2 + 水餃 x1", Summarize(items, i18n.JA))
}

func TestNewOrderTotals(t *testing.T) {
	items := []LineItem{beef(2), dumplings(1)}

	dine := NewOrder(ChannelDineIn, "5", items, i18n.ZH, 30, &Delivery{})
	assert.Equal(t, Money(460), dine.Total)
	assert.Zero(t, dine.DeliveryFee, "fee only applies to delivery")
	assert.Nil(t, dine.Delivery)
	assert.Equal(t, StatusPending, dine.Status)
	require.NoError(t, dine.Check())

	del := NewOrder(ChannelDelivery, TableDelivery, items, i18n.EN, 30, &Delivery{
		CustomerName: "Lin", CustomerPhone: "0912", CustomerAddress: "臺北市中山區南京東路三段1號", ScheduledFor: "2026-10-15 18:00",
	})
	assert.Equal(t, Money(490), del.Total)
	require.NoError(t, del.Check())
}

func TestCheck(t *testing.T) {
	o := NewOrder(ChannelTakeout, TableTakeout, []LineItem{dumplings(1)}, i18n.ZH, 0, nil)
	o.Total = 99
	assert.ErrorIs(t, o.Check(), ErrInconsistentOrder)

	assert.ErrorIs(t, Order{Channel: ChannelTakeout}.Check(), ErrEmptyCart)

	del := NewOrder(ChannelDelivery, TableDelivery, []LineItem{dumplings(3)}, i18n.ZH, 0, &Delivery{CustomerAddress: "x"})
	assert.ErrorIs(t, del.Check(), ErrIncompleteDelivery)
}

func TestCheck_AmountOverflow(t *testing.T) {
	huge := dumplings(2)
	huge.UnitPrice = 1 << 63
	o := NewOrder(ChannelTakeout, TableTakeout, []LineItem{huge}, i18n.ZH, 0, nil)
	assert.ErrorIs(t, o.Check(), ErrInvalidLine, "wrapped product must not pass as total 0")

	half := dumplings(1)
	half.UnitPrice = MaxAmount/2 + 1
	o = NewOrder(ChannelTakeout, TableTakeout, []LineItem{half, half}, i18n.ZH, 0, nil)
	assert.ErrorIs(t, o.Check(), ErrInvalidLine)

	edge := dumplings(1)
	edge.UnitPrice = MaxAmount
	assert.NoError(t, NewOrder(ChannelTakeout, TableTakeout, []LineItem{edge}, i18n.ZH, 0, nil).Check())
}

func TestCheckedArithmetic(t *testing.T) {
	m, ok := Money(3).CheckedTimes(4)
	assert.True(t, ok)
	assert.Equal(t, Money(12), m)

	_, ok = Money(1 << 63).CheckedTimes(2)
	assert.False(t, ok)
	_, ok = MaxAmount.CheckedTimes(1)
	assert.True(t, ok)
	_, ok = MaxAmount.CheckedAdd(1)
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusCompleted, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := from == StatusPending && to != StatusPending
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseEnums(t *testing.T) {
	c, err := ParseChannel("delivery")
	require.NoError(t, err)
	assert.Equal(t, ChannelDelivery, c)
	_, err = ParseChannel("drive_thru")
	assert.Error(t, err)

	s, err := ParseStatus("Cancelled")
	require.NoError(t, err)
	assert.True(t, s.Terminal())
	_, err = ParseStatus("pending")
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, Money(0), Money(100).Times(-1))
	assert.Equal(t, Money(300), Money(100).Times(3))
	assert.Equal(t, "300", Money(300).String())
}
