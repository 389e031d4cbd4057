package delivery

import "time"

const (
	slotStep      = 30 * time.Minute
	slotLeadTime  = 30 * time.Minute
	slotHorizon   = 3
	firstSlotMin  = 10*60 + 30
	lastSlotMin   = 20*60 + 30
	lunchStartMin = 11*60 + 30
	lunchEndMin   = 13*60 + 30
)

type DaySlots struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// Slots lists the bookable delivery times for today and the next two days
// in loc. Today's slots closer than the lead time are dropped.
func Slots(now time.Time, loc *time.Location) []DaySlots {
	now = now.In(loc)
	earliest := now.Add(slotLeadTime)
	y, m, d := now.Date()

	out := make([]DaySlots, 0, slotHorizon)
	for i := 0; i < slotHorizon; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		ds := DaySlots{Date: day.Format("2006-01-02"), Slots: []string{}}
		for mins := firstSlotMin; mins <= lastSlotMin; mins += int(slotStep / time.Minute) {
			if mins >= lunchStartMin && mins <= lunchEndMin {
				continue
			}
			at := day.Add(time.Duration(mins) * time.Minute)
			if at.Before(earliest) {
				continue
			}
			ds.Slots = append(ds.Slots, at.Format("15:04"))
		}
		out = append(out, ds)
	}
	return out
}
