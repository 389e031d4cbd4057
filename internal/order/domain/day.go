package domain

import (
	"fmt"
	"time"
)

// Zone is the restaurant's fixed local timezone. Every "day" in the system
// is a calendar day in this zone.
var Zone = time.FixedZone("UTC+8", 8*60*60)

const DayLayout = "2006-01-02"

// Day is a local calendar day. The zero Day is not valid.
type Day struct {
	start time.Time
}

func DayOf(t time.Time) Day {
	l := t.In(Zone)
	return Day{start: time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Zone)}
}

func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(DayLayout, s, Zone)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day{start: t}, nil
}

func (d Day) String() string { return d.start.Format(DayLayout) }

func (d Day) IsZero() bool { return d.start.IsZero() }

// Start is local midnight, in UTC.
func (d Day) Start() time.Time { return d.start.UTC() }

// End is the next local midnight, in UTC. The window is [Start, End).
func (d Day) End() time.Time { return d.start.AddDate(0, 0, 1).UTC() }

// Date is the calendar date as a UTC midnight, the shape DATE columns expect.
func (d Day) Date() time.Time {
	return time.Date(d.start.Year(), d.start.Month(), d.start.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Day) AddDays(n int) Day { return Day{start: d.start.AddDate(0, 0, n)} }

func (d Day) Before(o Day) bool { return d.start.Before(o.start) }

func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.Start()) && t.Before(d.End())
}

// Range is an inclusive span of local days.
type Range struct {
	From Day
	To   Day
}

// Window returns the UTC half-open window covering the whole range.
func (r Range) Window() (from, to time.Time) {
	return r.From.Start(), r.To.End()
}
