package http

import (
	"html/template"
	"io"

	"github.com/dmehra2102/Restaurant-POS/internal/i18n"
	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html lang="zh-Hant">
<head><meta charset="utf-8"><title>#{{.DailySeq}}</title></head>
<body onload="window.print()">
<h2>#{{printf "%03d" .DailySeq}} {{.Table}}</h2>
<p>{{.PlacedAt}}</p>
{{if .SupersedesID}}<p>改單 (原單 {{.SupersedesID}})</p>{{end}}
<table>
{{range .Lines}}<tr><td>{{.Text}}</td><td>{{.Amount}}</td></tr>
{{end}}</table>
{{if .Delivery}}<p>外送費 {{.Fee}}</p>
<p>{{.Delivery.CustomerName}} {{.Delivery.CustomerPhone}}</p>
<p>{{.Delivery.CustomerAddress}}</p>
<p>{{.Delivery.ScheduledFor}}</p>
{{if .Delivery.Info.Note}}<p>{{.Delivery.Info.Note}}</p>{{end}}{{end}}
<h3>合計 {{.Total}}</h3>
<p>{{.Status}}</p>
</body>
</html>
`))

type receiptLine struct {
	Text   string
	Amount domain.Money
}

type receiptView struct {
	DailySeq     int
	Table        string
	PlacedAt     string
	SupersedesID int64
	Lines        []receiptLine
	Delivery     *domain.Delivery
	Fee          domain.Money
	Total        domain.Money
	Status       domain.Status
}

// renderReceipt writes the reprint page. Kitchen staff read the native
// locale regardless of what the customer ordered in.
func renderReceipt(w io.Writer, o domain.Order) error {
	v := receiptView{
		DailySeq: o.DailySeq,
		Table:    o.TableLabel,
		PlacedAt: o.CreatedAt.In(domain.Zone).Format("2006-01-02 15:04"),
		Delivery: o.Delivery,
		Fee:      o.DeliveryFee,
		Total:    o.Total,
		Status:   o.Status,
	}
	if o.SupersedesID != nil {
		v.SupersedesID = *o.SupersedesID
	}
	for _, it := range o.Items {
		v.Lines = append(v.Lines, receiptLine{Text: it.Render(i18n.Native), Amount: it.Amount()})
	}
	return receiptTmpl.Execute(w, v)
}
