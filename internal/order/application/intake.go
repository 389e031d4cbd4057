package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type CartLine struct {
	ProductID int64     `json:"product_id" validate:"gte=0"`
	UnitPrice uint64    `json:"unit_price" validate:"lte=100000000"`
	Qty       int       `json:"qty" validate:"gte=1,lte=9999"`
	Name      i18n.Text `json:"name"`
	Options   i18n.List `json:"options"`
}

type DeliveryForm struct {
	Name             string  `json:"name" validate:"required"`
	Phone            string  `json:"phone" validate:"required"`
	Address          string  `json:"address" validate:"required"`
	ScheduledFor     string  `json:"scheduled_for" validate:"required"`
	QuotedDistanceKm float64 `json:"distance_km" validate:"gte=0"`
	QuotedFee        uint64  `json:"fee"`
	Note             string  `json:"note"`
}

type Submission struct {
	Delivery     bool
	Table        string
	Locale       i18n.Locale
	Cart         []CartLine
	NeedsReceipt bool
	Form         *DeliveryForm
	SupersedeID  *int64
}

type Placed struct {
	OrderID  int64        `json:"order_id"`
	DailySeq int          `json:"daily_seq"`
	Total    domain.Money `json:"total"`
}

type Intake struct {
	log      *slog.Logger
	repo     OrderRepository
	settings SettingsReader
	gate     Admitter
	products ProductLookup
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewIntake(log *slog.Logger, repo OrderRepository, settings SettingsReader, gate Admitter, products ProductLookup) *Intake {
	return &Intake{
		log:      log,
		repo:     repo,
		settings: settings,
		gate:     gate,
		products: products,
		validate: validator.New(),
		tracer:   otel.Tracer("order-intake"),
	}
}

// PlaceOrder validates a submission, prices it, admits delivery addresses and
// stores the order. Geocoding happens before the insert transaction opens.
func (s *Intake) PlaceOrder(ctx context.Context, sub Submission) (Placed, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()

	placed, err := s.place(ctx, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Placed{}, err
	}
	span.SetAttributes(
		attribute.Int64("order.id", placed.OrderID),
		attribute.Int("order.daily_seq", placed.DailySeq),
	)
	return placed, nil
}

func (s *Intake) place(ctx context.Context, sub Submission) (Placed, error) {
	open, err := s.settings.ShopOpen(ctx)
	if err != nil {
		return Placed{}, fmt.Errorf("read shop_open: %w", err)
	}
	if !open {
		return Placed{}, domain.ErrShopClosed
	}

	loc := sub.Locale
	if !loc.Valid() {
		loc = i18n.Native
	}

	channel, table := domain.ChannelTakeout, domain.TableTakeout
	var form DeliveryForm
	switch {
	case sub.Delivery:
		channel, table = domain.ChannelDelivery, domain.TableDelivery
		if sub.Form == nil {
			return Placed{}, domain.ErrIncompleteDelivery
		}
		form = trimForm(*sub.Form)
		if err := s.validate.Struct(form); err != nil {
			return Placed{}, fmt.Errorf("%w: %v", domain.ErrIncompleteDelivery, err)
		}
	case strings.TrimSpace(sub.Table) != "":
		channel, table = domain.ChannelDineIn, strings.TrimSpace(sub.Table)
	}

	if len(sub.Cart) == 0 {
		return Placed{}, domain.ErrEmptyCart
	}
	items, err := s.lineItems(ctx, sub.Cart)
	if err != nil {
		return Placed{}, err
	}

	var (
		fee domain.Money
		dlv *domain.Delivery
	)
	if channel == domain.ChannelDelivery {
		fee, dlv, err = s.admit(ctx, form, domain.Subtotal(items))
		if err != nil {
			return Placed{}, err
		}
	}

	o := domain.NewOrder(channel, table, items, loc, fee, dlv)
	o.NeedsReceipt = sub.NeedsReceipt
	o.SupersedesID = sub.SupersedeID
	if err := o.Check(); err != nil {
		return Placed{}, err
	}

	saved, err := s.repo.Place(ctx, o)
	if err != nil {
		return Placed{}, fmt.Errorf("place order: %w", err)
	}
	s.log.Info("order placed",
		"order_id", saved.ID,
		"daily_seq", saved.DailySeq,
		"channel", saved.Channel,
		"total", saved.Total,
		"supersedes", sub.SupersedeID,
	)
	return Placed{OrderID: saved.ID, DailySeq: saved.DailySeq, Total: saved.Total}, nil
}

// lineItems snapshots the cart. Prices come from the cart as submitted; the
// catalog fills the kitchen station and any name the client left out.
func (s *Intake) lineItems(ctx context.Context, cart []CartLine) ([]domain.LineItem, error) {
	ids := make([]int64, 0, len(cart))
	for i, line := range cart {
		if err := s.validate.Struct(line); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidLine, i+1, err)
		}
		if line.ProductID > 0 {
			ids = append(ids, line.ProductID)
		}
	}

	known := map[int64]catalog.Product{}
	if len(ids) > 0 {
		var err error
		if known, err = s.products.Lookup(ctx, ids); err != nil {
			return nil, fmt.Errorf("lookup products: %w", err)
		}
	}

	items := make([]domain.LineItem, len(cart))
	for i, line := range cart {
		item := domain.LineItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  domain.Money(line.UnitPrice),
			Qty:        line.Qty,
			Options:    line.Options,
			PrintClass: catalog.DefaultPrintClass,
		}
		if p, ok := known[line.ProductID]; ok {
			item.PrintClass = p.PrintClass
			if strings.TrimSpace(item.Name[i18n.Native]) == "" {
				item.Name = p.Name
			}
		}
		if strings.TrimSpace(item.Name[i18n.Native]) == "" {
			return nil, fmt.Errorf("%w: line %d has no name", domain.ErrInvalidLine, i+1)
		}
		items[i] = item
	}
	return items, nil
}

// admit applies the delivery policy. The server's own distance and fee win
// over whatever the customer was quoted on the check page.
func (s *Intake) admit(ctx context.Context, form DeliveryForm, subtotal domain.Money) (domain.Money, *domain.Delivery, error) {
	policy, err := s.settings.DeliveryPolicy(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("read delivery policy: %w", err)
	}
	if !policy.Enabled {
		return 0, nil, domain.ErrDeliveryDisabled
	}
	if subtotal < domain.Money(policy.MinPrice) {
		return 0, nil, &domain.BelowMinimumError{Min: domain.Money(policy.MinPrice), Subtotal: subtotal}
	}

	adm := s.gate.Admit(ctx, form.Address, policy)
	if !adm.Admit {
		return 0, nil, &domain.OutOfRangeError{DistanceKm: adm.DistanceKm, LimitKm: policy.MaxKm}
	}

	note := adm.Note
	if form.Note != "" {
		note = strings.TrimSpace(strings.Join([]string{note, form.Note}, " "))
	}
	fee := domain.Money(adm.Fee)
	if form.QuotedFee != 0 && domain.Money(form.QuotedFee) != fee {
		s.log.Warn("quoted delivery fee differs from admission",
			"quoted", form.QuotedFee, "fee", fee, "distance_km", adm.DistanceKm)
	}
	return fee, &domain.Delivery{
		CustomerName:    form.Name,
		CustomerPhone:   form.Phone,
		CustomerAddress: form.Address,
		ScheduledFor:    form.ScheduledFor,
		Info: domain.DeliveryInfo{
			DistanceKm:       adm.DistanceKm,
			Fee:              fee,
			Resolved:         adm.Resolved,
			Note:             note,
			QuotedDistanceKm: form.QuotedDistanceKm,
			QuotedFee:        domain.Money(form.QuotedFee),
		},
	}, nil
}

func trimForm(f DeliveryForm) DeliveryForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.ScheduledFor = strings.TrimSpace(f.ScheduledFor)
	f.Note = strings.TrimSpace(f.Note)
	return f
}

// IsRejection reports whether err is a customer-facing validation outcome
// rather than an internal fault.
func IsRejection(err error) bool {
	var below *domain.BelowMinimumError
	var out *domain.OutOfRangeError
	return errors.Is(err, domain.ErrShopClosed) ||
		errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrInvalidLine) ||
		errors.Is(err, domain.ErrIncompleteDelivery) ||
		errors.Is(err, domain.ErrDeliveryDisabled) ||
		errors.As(err, &below) ||
		errors.As(err, &out)
}
