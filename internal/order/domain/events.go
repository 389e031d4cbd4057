package domain

import "time"

const (
	AggregateOrder = "order"

	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderPlaced struct {
	OrderID    int64      `json:"order_id"`
	DailySeq   int        `json:"daily_seq"`
	Channel    Channel    `json:"channel"`
	TableLabel string     `json:"table_label"`
	Items      []LineItem `json:"items"`
	Total      Money      `json:"total"`
	Locale     string     `json:"locale"`
	PlacedAt   time.Time  `json:"placed_at"`
	// Set when the order replaced an earlier one.
	SupersedesID *int64 `json:"supersedes_id,omitempty"`
}

type OrderStatusChanged struct {
	OrderID   int64     `json:"order_id"`
	DailySeq  int       `json:"daily_seq"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

func PlacedEvent(o Order) OrderPlaced {
	return OrderPlaced{
		OrderID:      o.ID,
		DailySeq:     o.DailySeq,
		Channel:      o.Channel,
		TableLabel:   o.TableLabel,
		Items:        o.Items,
		Total:        o.Total,
		Locale:       string(o.Locale),
		PlacedAt:     o.CreatedAt,
		SupersedesID: o.SupersedesID,
	}
}
