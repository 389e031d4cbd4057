package application

import (
	"context"
	"testing"
	"time"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/delivery"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// 3.4 km and 7.2 km due north of the shop.
	near = delivery.Point{Lat: 25.0855767, Lon: 121.5377779}
	far  = delivery.Point{Lat: 25.1197509, Lon: 121.5377779}
)

func fixedNow() time.Time { return time.Date(2026, 10, 15, 4, 0, 0, 0, time.UTC) }

type intakeEnv struct {
	repo     *memRepo
	settings *fakeSettings
	intake   *Intake
}

func newIntakeEnv(loc delivery.Locator) intakeEnv {
	repo := newMemRepo(fixedNow)
	st := &fakeSettings{open: true, policy: settings.Policy{Enabled: true, MinPrice: 300, MaxKm: 5, BaseFee: 0, FeePerKm: 10}}
	products := fakeProducts{
		1: {ID: 1, Name: i18n.Text{i18n.ZH: "牛肉麵", i18n.EN: "Beef Noodle Soup"}, Price: 180, PrintClass: "Noodle"},
		2: {ID: 2, Name: i18n.Text{i18n.ZH: "水餃"}, Price: 100, PrintClass: "Dumpling"},
	}
	gate := delivery.NewGate(quietLogger(), loc)
	return intakeEnv{
		repo:     repo,
		settings: st,
		intake:   NewIntake(quietLogger(), repo, st, gate, products),
	}
}

func beefLine(qty int) CartLine {
	return CartLine{ProductID: 1, UnitPrice: 180, Qty: qty, Name: i18n.Text{i18n.ZH: "牛肉麵", i18n.EN: "Beef Noodle Soup"}}
}

func deliverySubmission(cart ...CartLine) Submission {
	return Submission{
		Delivery: true,
		Locale:   i18n.EN,
		Cart:     cart,
		Form: &DeliveryForm{
			Name: "Lin", Phone: "0912345678", Address: "臺北市中山區民權東路三段1號", ScheduledFor: "2026-10-15 18:00",
			QuotedDistanceKm: 3.4, QuotedFee: 30,
		},
	}
}

func TestPlaceOrderChannels(t *testing.T) {
	env := newIntakeEnv(at(near))
	ctx := context.Background()

	dine, err := env.intake.PlaceOrder(ctx, Submission{Table: " 5 ", Locale: i18n.ZH, Cart: []CartLine{beefLine(1)}})
	require.NoError(t, err)
	o := env.repo.byID(dine.OrderID)
	assert.Equal(t, domain.ChannelDineIn, o.Channel)
	assert.Equal(t, "5", o.TableLabel)
	assert.Equal(t, 1, dine.DailySeq)

	takeout, err := env.intake.PlaceOrder(ctx, Submission{Locale: "fr", Cart: []CartLine{beefLine(2)}})
	require.NoError(t, err)
	o = env.repo.byID(takeout.OrderID)
	assert.Equal(t, domain.ChannelTakeout, o.Channel)
	assert.Equal(t, domain.TableTakeout, o.TableLabel)
	assert.Equal(t, i18n.Native, o.Locale)
	assert.Equal(t, domain.Money(360), o.Total)
	assert.Zero(t, o.DeliveryFee)
	assert.Equal(t, 2, takeout.DailySeq)
}

func TestPlaceOrderFillsFromCatalog(t *testing.T) {
	env := newIntakeEnv(at(near))
	placed, err := env.intake.PlaceOrder(context.Background(), Submission{
		Locale: i18n.ZH,
		Cart: []CartLine{
			beefLine(1),
			{ProductID: 2, UnitPrice: 100, Qty: 2, Options: i18n.List{i18n.ZH: {"十顆"}}},
		},
	})
	require.NoError(t, err)

	o := env.repo.byID(placed.OrderID)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Noodle", o.Items[0].PrintClass)
	assert.Equal(t, "Dumpling", o.Items[1].PrintClass)
	assert.Equal(t, "水餃", o.Items[1].Name[i18n.ZH])
	assert.Equal(t, "牛肉麵 x1 + 水餃 (十顆) x2", o.Summary)
	assert.Equal(t, domain.Money(380), o.Total)
}

func TestPlaceOrderUnknownProductKeepsDefaults(t *testing.T) {
	env := newIntakeEnv(at(near))
	placed, err := env.intake.PlaceOrder(context.Background(), Submission{
		Cart: []CartLine{{ProductID: 99, UnitPrice: 50, Qty: 1, Name: i18n.Text{i18n.ZH: "時價"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultPrintClass, env.repo.byID(placed.OrderID).Items[0].PrintClass)
}

func TestPlaceOrderRejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(env intakeEnv)
		sub    Submission
		target error
	}{
		{
			name:   "shop closed",
			setup:  func(env intakeEnv) { env.settings.open = false },
			sub:    Submission{Cart: []CartLine{beefLine(1)}},
			target: domain.ErrShopClosed,
		},
		{
			name:   "empty cart",
			sub:    Submission{Table: "3"},
			target: domain.ErrEmptyCart,
		},
		{
			name:   "zero quantity",
			sub:    Submission{Cart: []CartLine{beefLine(0)}},
			target: domain.ErrInvalidLine,
		},
		{
			name:   "price beyond bound",
			sub:    Submission{Cart: []CartLine{{ProductID: 1, UnitPrice: 1 << 63, Qty: 2, Name: i18n.Text{i18n.ZH: "牛肉麵"}}}},
			target: domain.ErrInvalidLine,
		},
		{
			name:   "quantity beyond bound",
			sub:    Submission{Cart: []CartLine{func() CartLine { l := beefLine(1); l.Qty = 10000; return l }()}},
			target: domain.ErrInvalidLine,
		},
		{
			name:   "nameless line",
			sub:    Submission{Cart: []CartLine{{ProductID: 42, UnitPrice: 10, Qty: 1}}},
			target: domain.ErrInvalidLine,
		},
		{
			name: "delivery missing time",
			sub: func() Submission {
				s := deliverySubmission(beefLine(2))
				s.Form.ScheduledFor = "  "
				return s
			}(),
			target: domain.ErrIncompleteDelivery,
		},
		{
			name:   "delivery without form",
			sub:    Submission{Delivery: true, Cart: []CartLine{beefLine(2)}},
			target: domain.ErrIncompleteDelivery,
		},
		{
			name:   "delivery disabled",
			setup:  func(env intakeEnv) { env.settings.policy.Enabled = false },
			sub:    deliverySubmission(beefLine(2)),
			target: domain.ErrDeliveryDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newIntakeEnv(at(near))
			if tt.setup != nil {
				tt.setup(env)
			}
			_, err := env.intake.PlaceOrder(context.Background(), tt.sub)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsRejection(err))
			assert.Empty(t, env.repo.orders)
		})
	}
}

func TestPlaceOrderBelowMinimum(t *testing.T) {
	env := newIntakeEnv(at(near))
	_, err := env.intake.PlaceOrder(context.Background(), deliverySubmission(beefLine(1)))

	var below *domain.BelowMinimumError
	require.ErrorAs(t, err, &below)
	assert.Equal(t, domain.Money(300), below.Min)
	assert.Equal(t, domain.Money(180), below.Subtotal)
	assert.Empty(t, env.repo.orders)
}

func TestPlaceDeliveryWithinRange(t *testing.T) {
	env := newIntakeEnv(at(near))
	placed, err := env.intake.PlaceOrder(context.Background(), deliverySubmission(beefLine(2)))
	require.NoError(t, err)

	o := env.repo.byID(placed.OrderID)
	assert.Equal(t, domain.ChannelDelivery, o.Channel)
	assert.Equal(t, domain.TableDelivery, o.TableLabel)
	assert.Equal(t, domain.Money(30), o.DeliveryFee)
	assert.Equal(t, domain.Money(360+30), o.Total)
	require.NotNil(t, o.Delivery)
	assert.InDelta(t, 3.4, o.Delivery.Info.DistanceKm, 0.1)
	assert.True(t, o.Delivery.Info.Resolved)
	assert.Equal(t, domain.Money(30), o.Delivery.Info.QuotedFee)
	assert.Equal(t, "2026-10-15 18:00", o.Delivery.ScheduledFor)
}

func TestPlaceDeliveryOutOfRange(t *testing.T) {
	env := newIntakeEnv(at(far))
	_, err := env.intake.PlaceOrder(context.Background(), deliverySubmission(beefLine(2)))

	var out *domain.OutOfRangeError
	require.ErrorAs(t, err, &out)
	assert.InDelta(t, 7.2, out.DistanceKm, 0.1)
	assert.Equal(t, 5.0, out.LimitKm)
	assert.Empty(t, env.repo.orders)
}

func TestPlaceDeliveryUnresolvedAddress(t *testing.T) {
	env := newIntakeEnv(locatorFunc(func(context.Context, string) (delivery.Point, error) {
		return delivery.Point{}, errUpstream
	}))
	env.settings.policy.BaseFee = 20

	placed, err := env.intake.PlaceOrder(context.Background(), deliverySubmission(beefLine(2)))
	require.NoError(t, err)

	o := env.repo.byID(placed.OrderID)
	assert.Equal(t, domain.Money(20), o.DeliveryFee)
	assert.Zero(t, o.Delivery.Info.DistanceKm)
	assert.False(t, o.Delivery.Info.Resolved)
	assert.Contains(t, o.Delivery.Info.Note, "unresolved")
}

func TestPlaceOrderSupersedes(t *testing.T) {
	env := newIntakeEnv(at(near))
	ctx := context.Background()

	a, err := env.intake.PlaceOrder(ctx, Submission{Table: "7", Cart: []CartLine{beefLine(1)}})
	require.NoError(t, err)

	b, err := env.intake.PlaceOrder(ctx, Submission{Table: "7", Cart: []CartLine{beefLine(2)}, SupersedeID: &a.OrderID})
	require.NoError(t, err)

	assert.NotEqual(t, a.DailySeq, b.DailySeq)
	assert.Equal(t, domain.StatusCancelled, env.repo.byID(a.OrderID).Status)
	assert.Equal(t, domain.StatusPending, env.repo.byID(b.OrderID).Status)
	assert.Equal(t, a.OrderID, *env.repo.byID(b.OrderID).SupersedesID)
}

func TestPlaceOrderRepositoryFailure(t *testing.T) {
	env := newIntakeEnv(at(near))
	env.repo.err = assert.AnError

	_, err := env.intake.PlaceOrder(context.Background(), Submission{Cart: []CartLine{beefLine(1)}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, IsRejection(err))
}
