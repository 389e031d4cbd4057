// Package printing turns order events into per-station kitchen tickets.
package printing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	catalog "github.com/dmehra2102/Restaurant-POS/internal/catalog/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
)

type TicketLine struct {
	Name    string
	Options []string
	Qty     int
}

// Ticket is what one station prints for one order.
type Ticket struct {
	OrderID      int64
	DailySeq     int
	Station      string
	Table        string
	PlacedAt     time.Time
	Lines        []TicketLine
	SupersedesID *int64
}

// Route splits an order into one ticket per print class. Tickets are in
// station name order; lines keep their cart order.
func Route(ev domain.OrderPlaced) []Ticket {
	byStation := map[string]*Ticket{}
	for _, it := range ev.Items {
		station := strings.TrimSpace(it.PrintClass)
		if station == "" {
			station = catalog.DefaultPrintClass
		}
		t, ok := byStation[station]
		if !ok {
			t = &Ticket{
				OrderID:      ev.OrderID,
				DailySeq:     ev.DailySeq,
				Station:      station,
				Table:        ev.TableLabel,
				PlacedAt:     ev.PlacedAt,
				SupersedesID: ev.SupersedesID,
			}
			byStation[station] = t
		}
		// the kitchen reads the native locale
		t.Lines = append(t.Lines, TicketLine{
			Name:    it.Name.In(i18n.Native),
			Options: it.Options.In(i18n.Native),
			Qty:     it.Qty,
		})
	}

	tickets := make([]Ticket, 0, len(byStation))
	for _, t := range byStation {
		tickets = append(tickets, *t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].Station < tickets[j].Station })
	return tickets
}

func (t Ticket) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%03d  %s  [%s]\n", t.DailySeq, t.Table, t.Station)
	fmt.Fprintf(&b, "%s\n", t.PlacedAt.In(domain.Zone).Format("2006-01-02 15:04"))
	if t.SupersedesID != nil {
		fmt.Fprintf(&b, "改單 (replaces order %d)\n", *t.SupersedesID)
	}
	b.WriteString(strings.Repeat("-", 24) + "\n")
	for _, l := range t.Lines {
		fmt.Fprintf(&b, "%s x%d\n", l.Name, l.Qty)
		if len(l.Options) > 0 {
			fmt.Fprintf(&b, "  %s\n", strings.Join(l.Options, ","))
		}
	}
	return b.String()
}

// VoidSlip is printed when an order is cancelled after its tickets went out.
func VoidSlip(ev domain.OrderStatusChanged) string {
	return fmt.Sprintf("#%03d  VOID 作廢\norder %d cancelled at %s\n",
		ev.DailySeq, ev.OrderID, ev.ChangedAt.In(domain.Zone).Format("15:04"))
}
