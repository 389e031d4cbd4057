package scheduler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	report "github.com/dmehra2102/Restaurant-POS/internal/report/application"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu    sync.Mutex
	days  []string
	panic bool
}

func (r *recordingReporter) Send(_ context.Context, req report.Request) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panic {
		panic("smtp exploded")
	}
	r.days = append(r.days, req.Day.String())
	return "sent"
}

func (r *recordingReporter) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.days...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func local(day string, hour, minute int) time.Time {
	d, _ := domain.ParseDay(day)
	return d.Start().Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestReportFiresOncePerDay(t *testing.T) {
	rep := &recordingReporter{}
	s := New(quietLogger(), rep, idempotency.NewMemoryStore(48*time.Hour), Config{ReportHour: 0, ReportMinute: 5})
	ctx := context.Background()

	s.nextReport = s.reportTime(domain.DayOf(local("2026-10-15", 23, 0)))
	s.step(ctx, local("2026-10-15", 23, 0))
	assert.Equal(t, []string{"2026-10-14"}, rep.sent(), "catch-up for the day that ended")
	assert.Equal(t, local("2026-10-16", 0, 5), s.nextReport)

	s.step(ctx, local("2026-10-15", 23, 30))
	assert.Len(t, rep.sent(), 1, "not due yet")

	s.step(ctx, local("2026-10-16", 0, 5))
	assert.Equal(t, []string{"2026-10-14", "2026-10-15"}, rep.sent())

	// a second process (or a restart) sharing the marks does not resend
	again := New(quietLogger(), rep, s.marks, s.cfg)
	again.nextReport = local("2026-10-16", 0, 5)
	again.step(ctx, local("2026-10-16", 0, 6))
	assert.Len(t, rep.sent(), 2)
}

func TestEveningReportCoversSameDay(t *testing.T) {
	rep := &recordingReporter{}
	s := New(quietLogger(), rep, idempotency.NewMemoryStore(time.Hour), Config{ReportHour: 22, ReportMinute: 30})
	s.nextReport = local("2026-10-15", 22, 30)
	s.step(context.Background(), local("2026-10-15", 22, 30))
	assert.Equal(t, []string{"2026-10-15"}, rep.sent())
	assert.Equal(t, local("2026-10-16", 22, 30), s.nextReport)
}

func TestReporterPanicDoesNotStopSchedule(t *testing.T) {
	rep := &recordingReporter{panic: true}
	s := New(quietLogger(), rep, idempotency.NewMemoryStore(time.Hour), Config{ReportMinute: 5})
	s.nextReport = local("2026-10-16", 0, 5)

	require.NotPanics(t, func() { s.step(context.Background(), local("2026-10-16", 0, 5)) })
	assert.Equal(t, local("2026-10-17", 0, 5), s.nextReport)
}

func TestRunPingsAndStops(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	rep := &recordingReporter{}
	marks := idempotency.NewMemoryStore(time.Hour)
	s := New(quietLogger(), rep, marks, Config{ReportHour: 23, ReportMinute: 59, KeepAliveURL: srv.URL, KeepAliveInterval: 20 * time.Millisecond})
	// keep the report out of the way
	_, _ = marks.Seen(context.Background(), idempotency.Key("report", domain.DayOf(time.Now()).String()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestPingFailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(quietLogger(), &recordingReporter{}, idempotency.NewMemoryStore(time.Hour), Config{KeepAliveURL: srv.URL, KeepAliveInterval: time.Minute})
	assert.NotPanics(t, func() { s.ping(context.Background()) })
}
