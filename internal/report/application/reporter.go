package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
	"github.com/dmehra2102/Restaurant-POS/pkg/workpool"
)

type Request struct {
	// Day defaults to today.
	Day domain.Day
	// Manual overrides the stored mail settings, e.g. values typed on the
	// admin page but not saved yet.
	Manual *settings.Mail
	Test   bool
}

type Reporter struct {
	log      *slog.Logger
	orders   OrderSource
	settings MailSettings
	mailer   Mailer
	now      func() time.Time
}

func NewReporter(log *slog.Logger, orders OrderSource, settings MailSettings, mailer Mailer) *Reporter {
	return &Reporter{log: log, orders: orders, settings: settings, mailer: mailer, now: time.Now}
}

// Send builds and mails the report and returns a status line for humans.
// Failures are reported in the status, never as an error.
func (r *Reporter) Send(ctx context.Context, req Request) string {
	cfg, err := r.mailConfig(ctx, req.Manual)
	if err != nil {
		r.log.Error("read mail settings", "err", err)
		return "error: " + err.Error()
	}
	if cfg.To == "" {
		return "error: no report recipient configured"
	}
	if cfg.APIKey == "" {
		return "error: no mail API key configured"
	}

	day := req.Day
	if day.IsZero() {
		day = domain.DayOf(r.now())
	}

	msg := Message{From: cfg.From, To: []string{cfg.To}}
	if req.Test {
		msg.Subject = "[POS] Test email"
		msg.Text = fmt.Sprintf("Mail settings work. Sent %s.\n", r.now().In(domain.Zone).Format("2006-01-02 15:04:05"))
	} else {
		orders, err := r.orders.ListBetween(ctx, day.Start(), day.End())
		if err != nil {
			r.log.Error("load orders for report", "day", day.String(), "err", err)
			return "error: could not load orders"
		}
		msg.Subject = "[POS] Daily report " + day.String()
		msg.Text = Format(domain.Rollup(day, orders), r.now())
	}

	if err := r.mailer.Send(ctx, cfg.APIKey, msg); err != nil {
		r.log.Error("report mail failed", "day", day.String(), "test", req.Test, "err", err)
		return "error: " + err.Error()
	}
	r.log.Info("report mailed", "day", day.String(), "test", req.Test, "to", cfg.To)
	return "sent to " + cfg.To
}

// SendAsync queues Send on the worker pool and returns at once.
func (r *Reporter) SendAsync(pool Submitter, req Request) error {
	return pool.Submit(workpool.Job{
		Name: "daily-report",
		Run: func(ctx context.Context) {
			status := r.Send(ctx, req)
			r.log.Info("report job finished", "status", status)
		},
	})
}

func (r *Reporter) mailConfig(ctx context.Context, manual *settings.Mail) (settings.Mail, error) {
	stored, err := r.settings.Mail(ctx)
	if err != nil {
		return settings.Mail{}, err
	}
	if manual == nil {
		return stored, nil
	}
	cfg := settings.Mail{
		To:     strings.TrimSpace(manual.To),
		From:   strings.TrimSpace(manual.From),
		APIKey: strings.TrimSpace(manual.APIKey),
	}
	if cfg.From == "" {
		cfg.From = stored.From
	}
	if cfg.APIKey == "" {
		cfg.APIKey = stored.APIKey
	}
	return cfg, nil
}

// Format renders the rollup as the plain-text mail body.
func Format(f domain.Figures, generatedAt time.Time) string {
	var b strings.Builder
	title := "Daily sales report " + f.Day
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	fmt.Fprintf(&b, "Valid orders: %d\n", f.ValidCount)
	fmt.Fprintf(&b, "Valid revenue: %d\n\n", f.ValidSum)
	if len(f.Items) > 0 {
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "Item\tQty")
		for _, it := range f.Items {
			fmt.Fprintf(tw, "%s\t%d\n", it.Name, it.Qty)
		}
		tw.Flush()
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Voided orders: %d\n", f.VoidCount)
	fmt.Fprintf(&b, "Voided amount: %d\n\n", f.VoidSum)
	fmt.Fprintf(&b, "Generated %s (UTC+8)\n", generatedAt.In(domain.Zone).Format("2006-01-02 15:04:05"))
	return b.String()
}
