package delivery

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/settings"
)

// locateBudget bounds one admission's geocoding, retries included, so a
// slow upstream degrades the order well inside the server's write timeout.
const locateBudget = 10 * time.Second

const (
	ReasonOutOfRange = "out_of_range"
	NoteUnresolved   = "address unresolved; courier will confirm"
)

type Admission struct {
	Admit      bool    `json:"admit"`
	Resolved   bool    `json:"resolved"`
	DistanceKm float64 `json:"distance_km"`
	Fee        uint64  `json:"fee"`
	Reason     string  `json:"reason,omitempty"`
	Note       string  `json:"note,omitempty"`
	Address    string  `json:"address"`
	Point      *Point  `json:"point,omitempty"`
}

type Gate struct {
	log     *slog.Logger
	locator Locator
	origin  Point
	budget  time.Duration
}

func NewGate(log *slog.Logger, locator Locator) *Gate {
	return &Gate{log: log, locator: locator, origin: Origin, budget: locateBudget}
}

// Admit decides whether an address is deliverable and at what fee.
// Lookup failures degrade to an admitted order at the base fee.
func (g *Gate) Admit(ctx context.Context, rawAddress string, policy settings.Policy) Admission {
	addr := Normalize(rawAddress)

	lctx, cancel := context.WithTimeout(ctx, g.budget)
	p, err := g.locator.Locate(lctx, addr)
	cancel()
	if err != nil {
		g.log.Warn("address unresolved, admitting at base fee", "address", addr, "err", err)
		return Admission{
			Admit:   true,
			Fee:     policy.BaseFee,
			Note:    NoteUnresolved,
			Address: addr,
		}
	}

	// range and fee use the exact distance; only the reported one is rounded
	d := Distance(g.origin, p)
	a := Admission{
		Resolved:   true,
		DistanceKm: math.Round(d*100) / 100,
		Address:    addr,
		Point:      &p,
	}
	if d > policy.MaxKm {
		a.Reason = ReasonOutOfRange
		return a
	}
	a.Admit = true
	a.Fee = Fee(d, policy)
	return a
}

// Fee is base + whole kilometres × per-km rate.
func Fee(distanceKm float64, policy settings.Policy) uint64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return policy.BaseFee + uint64(math.Floor(distanceKm))*policy.FeePerKm
}
