package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
)

type Channel string

const (
	ChannelDineIn   Channel = "dine_in"
	ChannelTakeout  Channel = "takeout"
	ChannelDelivery Channel = "delivery"
)

const (
	TableTakeout  = "外帶"
	TableDelivery = "外送"
)

func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case ChannelDineIn, ChannelTakeout, ChannelDelivery:
		return c, nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// CanTransition allows only Pending -> Completed and Pending -> Cancelled.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusCompleted || to == StatusCancelled)
}

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

type LineItem struct {
	ProductID  int64     `json:"product_id"`
	Name       i18n.Text `json:"name"`
	UnitPrice  Money     `json:"unit_price"`
	Qty        int       `json:"qty"`
	Options    i18n.List `json:"options,omitempty"`
	PrintClass string    `json:"print_class"`
}

func (l LineItem) Amount() Money { return l.UnitPrice.Times(l.Qty) }

// NativeName is the key used by rankings and reports.
func (l LineItem) NativeName() string { return l.Name[i18n.Native] }

// Render formats the line for the board: "name (opt,opt) xqty".
func (l LineItem) Render(loc i18n.Locale) string {
	var b strings.Builder
	b.WriteString(l.Name.In(loc))
	if opts := l.Options.In(loc); len(opts) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(opts, ","))
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " x%d", l.Qty)
	return b.String()
}

func Subtotal(items []LineItem) Money {
	var sum Money
	for _, it := range items {
		sum += it.Amount()
	}
	return sum
}

func Summarize(items []LineItem, loc i18n.Locale) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Render(loc)
	}
	return strings.Join(parts, " + ")
}

// DeliveryInfo keeps what the customer was quoted next to what the server decided.
type DeliveryInfo struct {
	DistanceKm       float64 `json:"distance_km"`
	Fee              Money   `json:"fee"`
	Resolved         bool    `json:"resolved"`
	Note             string  `json:"note,omitempty"`
	QuotedDistanceKm float64 `json:"quoted_distance_km,omitempty"`
	QuotedFee        Money   `json:"quoted_fee,omitempty"`
}

type Delivery struct {
	CustomerName    string       `json:"customer_name"`
	CustomerPhone   string       `json:"customer_phone"`
	CustomerAddress string       `json:"customer_address"`
	ScheduledFor    string       `json:"scheduled_for"`
	Info            DeliveryInfo `json:"info"`
}

type Order struct {
	ID           int64       `json:"id"`
	Channel      Channel     `json:"channel"`
	TableLabel   string      `json:"table_label"`
	Items        []LineItem  `json:"items"`
	Summary      string      `json:"summary"`
	Total        Money       `json:"total"`
	DeliveryFee  Money       `json:"delivery_fee"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	DailySeq     int         `json:"daily_seq"`
	Locale       i18n.Locale `json:"locale"`
	NeedsReceipt bool        `json:"needs_receipt"`
	Delivery     *Delivery   `json:"delivery,omitempty"`
	SupersedesID *int64      `json:"supersedes_id,omitempty"`
}

// NewOrder assembles a Pending order and derives summary and total.
// The sequence number and timestamps are assigned on insert.
func NewOrder(channel Channel, table string, items []LineItem, loc i18n.Locale, fee Money, d *Delivery) Order {
	if channel != ChannelDelivery {
		fee = 0
		d = nil
	}
	return Order{
		Channel:     channel,
		TableLabel:  table,
		Items:       items,
		Summary:     Summarize(items, loc),
		Total:       Subtotal(items) + fee,
		DeliveryFee: fee,
		Status:      StatusPending,
		Locale:      loc,
		Delivery:    d,
	}
}

// Check verifies the stored shape before insert.
func (o Order) Check() error {
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}
	want, ok := checkedTotal(o.Items, o.DeliveryFee)
	if !ok {
		return fmt.Errorf("%w: amount exceeds %d", ErrInvalidLine, MaxAmount)
	}
	if o.Total != want {
		return fmt.Errorf("%w: total %d, lines+fee %d", ErrInconsistentOrder, o.Total, want)
	}
	if o.Channel == ChannelDelivery {
		if o.Delivery == nil || strings.TrimSpace(o.Delivery.CustomerAddress) == "" || strings.TrimSpace(o.Delivery.ScheduledFor) == "" {
			return ErrIncompleteDelivery
		}
	} else if o.DeliveryFee != 0 || o.Delivery != nil {
		return fmt.Errorf("%w: delivery data on %s order", ErrInconsistentOrder, o.Channel)
	}
	return nil
}

func checkedTotal(items []LineItem, fee Money) (Money, bool) {
	total := fee
	if total > MaxAmount {
		return 0, false
	}
	for _, it := range items {
		amount, ok := it.UnitPrice.CheckedTimes(it.Qty)
		if !ok {
			return 0, false
		}
		if total, ok = total.CheckedAdd(amount); !ok {
			return 0, false
		}
	}
	return total, true
}
