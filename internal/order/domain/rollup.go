package domain

import "sort"

type ItemCount struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Figures is the daily rollup: valid means anything not cancelled.
type Figures struct {
	Day        string      `json:"day"`
	ValidCount int         `json:"valid_count"`
	ValidSum   Money       `json:"valid_sum"`
	VoidCount  int         `json:"void_count"`
	VoidSum    Money       `json:"void_sum"`
	Items      []ItemCount `json:"items"`
}

func Rollup(day Day, orders []Order) Figures {
	f := Figures{Day: day.String()}
	for _, o := range orders {
		if o.Status == StatusCancelled {
			f.VoidCount++
			f.VoidSum += o.Total
			continue
		}
		f.ValidCount++
		f.ValidSum += o.Total
	}
	f.Items = CountItems(orders, func(o Order) bool { return o.Status != StatusCancelled })
	return f
}

// Rank counts items sold on completed orders only.
func Rank(orders []Order) []ItemCount {
	return CountItems(orders, func(o Order) bool { return o.Status == StatusCompleted })
}

// CountItems sums line quantities by native name over the orders keep accepts,
// ordered by quantity descending, then name.
func CountItems(orders []Order, keep func(Order) bool) []ItemCount {
	qty := map[string]int{}
	for _, o := range orders {
		if !keep(o) {
			continue
		}
		for _, it := range o.Items {
			qty[it.NativeName()] += it.Qty
		}
	}
	out := make([]ItemCount, 0, len(qty))
	for name, n := range qty {
		out = append(out, ItemCount{Name: name, Qty: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty != out[j].Qty {
			return out[i].Qty > out[j].Qty
		}
		return out[i].Name < out[j].Name
	})
	return out
}
