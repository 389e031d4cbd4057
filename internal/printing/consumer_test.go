package printing

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/dmehra2102/Restaurant-POS/pkg/outbox"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type recordingPrinter struct {
	mu      sync.Mutex
	tickets []Ticket
	voided  []int64
}

func (p *recordingPrinter) Print(_ context.Context, t Ticket) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = append(p.tickets, t)
	return nil
}

func (p *recordingPrinter) Void(_ context.Context, orderID int64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voided = append(p.voided, orderID)
	return nil
}

func message(t *testing.T, offset int64, eventType string, payload any) kafka.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return kafka.Message{
		Topic:   "kitchen.events",
		Offset:  offset,
		Value:   body,
		Headers: []kafka.Header{{Key: outbox.HeaderEventType, Value: []byte(eventType)}},
	}
}

func TestConsumerRoutesEvents(t *testing.T) {
	placed := message(t, 1, domain.EventOrderPlaced, placedEvent())
	reader := &fakeReader{msgs: []kafka.Message{
		placed,
		placed, // redelivery
		message(t, 2, domain.EventOrderStatusChanged, domain.OrderStatusChanged{OrderID: 42, To: domain.StatusCompleted}),
		message(t, 3, domain.EventOrderStatusChanged, domain.OrderStatusChanged{OrderID: 42, To: domain.StatusCancelled}),
		{Topic: "kitchen.events", Offset: 4, Value: []byte("{broken"), Headers: placed.Headers},
		{Topic: "kitchen.events", Offset: 5, Value: []byte("{}")},
	}}
	printer := &recordingPrinter{}
	c := NewConsumer(slog.New(slog.NewTextHandler(io.Discard, nil)), reader, printer, idempotency.NewMemoryStore(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.commits() == 6 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Len(t, printer.tickets, 2, "redelivered message prints once")
	assert.Equal(t, []int64{42}, printer.voided)
	assert.True(t, reader.closed)
}
