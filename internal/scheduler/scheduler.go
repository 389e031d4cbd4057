// Package scheduler runs the nightly report and the keep-alive ping on a
// single goroutine.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	report "github.com/dmehra2102/Restaurant-POS/internal/report/application"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
)

type Reporter interface {
	Send(ctx context.Context, req report.Request) string
}

type Config struct {
	ReportHour        int
	ReportMinute      int
	KeepAliveURL      string
	KeepAliveInterval time.Duration
}

type Scheduler struct {
	log      *slog.Logger
	reporter Reporter
	marks    idempotency.Checker
	cfg      Config
	http     *http.Client
	now      func() time.Time

	nextReport time.Time
	nextPing   time.Time
}

func New(log *slog.Logger, reporter Reporter, marks idempotency.Checker, cfg Config) *Scheduler {
	return &Scheduler{
		log:      log,
		reporter: reporter,
		marks:    marks,
		cfg:      cfg,
		http:     &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Run sleeps until the next duty is due, runs it, and repeats until ctx ends.
// If today's report time already passed when Run starts, the report is sent
// right away unless it was already sent.
func (s *Scheduler) Run(ctx context.Context) error {
	now := s.now()
	s.nextReport = s.reportTime(domain.DayOf(now))
	if s.pingEnabled() {
		s.nextPing = now.Add(s.cfg.KeepAliveInterval)
	}
	s.log.Info("scheduler started", "next_report", s.nextReport, "keepalive", s.pingEnabled())

	for {
		wait := s.nextDue().Sub(s.now())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler stopping")
			return nil
		case <-timer.C:
		}
		s.step(ctx, s.now())
	}
}

// step runs whatever is due at now and schedules the next occurrence.
func (s *Scheduler) step(ctx context.Context, now time.Time) {
	if !now.Before(s.nextReport) {
		s.safely("daily-report", func() { s.dailyReport(ctx, now) })
		s.nextReport = s.nextReportAfter(now)
	}
	if s.pingEnabled() && !now.Before(s.nextPing) {
		s.safely("keepalive", func() { s.ping(ctx) })
		s.nextPing = now.Add(s.cfg.KeepAliveInterval)
	}
}

func (s *Scheduler) nextDue() time.Time {
	if s.pingEnabled() && s.nextPing.Before(s.nextReport) {
		return s.nextPing
	}
	return s.nextReport
}

func (s *Scheduler) pingEnabled() bool {
	return s.cfg.KeepAliveURL != "" && s.cfg.KeepAliveInterval > 0
}

func (s *Scheduler) reportTime(d domain.Day) time.Time {
	return d.Start().Add(time.Duration(s.cfg.ReportHour)*time.Hour + time.Duration(s.cfg.ReportMinute)*time.Minute)
}

func (s *Scheduler) nextReportAfter(now time.Time) time.Time {
	t := s.reportTime(domain.DayOf(now))
	if !t.After(now) {
		t = s.reportTime(domain.DayOf(now).AddDays(1))
	}
	return t
}

// reportDay picks the day a run at now covers: a morning run reports the day
// that just ended, a run later in the day reports the day itself.
func (s *Scheduler) reportDay(now time.Time) domain.Day {
	d := domain.DayOf(now)
	if s.cfg.ReportHour < 12 {
		return d.AddDays(-1)
	}
	return d
}

func (s *Scheduler) dailyReport(ctx context.Context, now time.Time) {
	day := s.reportDay(now)
	seen, err := s.marks.Seen(ctx, idempotency.Key("report", day.String()))
	if err != nil {
		s.log.Error("report once-mark unavailable", "day", day.String(), "err", err)
		return
	}
	if seen {
		s.log.Info("daily report already sent", "day", day.String())
		return
	}
	status := s.reporter.Send(ctx, report.Request{Day: day})
	s.log.Info("daily report", "day", day.String(), "status", status)
}

func (s *Scheduler) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.KeepAliveURL, nil)
	if err != nil {
		s.log.Warn("keepalive request", "err", err)
		return
	}
	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Warn("keepalive failed", "url", s.cfg.KeepAliveURL, "err", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		s.log.Warn("keepalive non-2xx", "url", s.cfg.KeepAliveURL, "status", resp.StatusCode)
		return
	}
	s.log.Debug("keepalive ok", "status", resp.StatusCode)
}

// safely keeps one bad duty from taking the loop down.
func (s *Scheduler) safely(duty string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("scheduler duty panicked", "duty", duty, "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
		}
	}()
	fn()
}
