package outbox

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	batch  []Event
	sent   []int64
	failed map[int64]bool
}

func (m *memStore) LockBatch(context.Context, string, int, time.Duration) ([]Event, error) {
	b := m.batch
	m.batch = nil
	return b, nil
}

func (m *memStore) MarkSent(_ context.Context, ids []int64) error {
	m.sent = append(m.sent, ids...)
	return nil
}

func (m *memStore) MarkFailed(_ context.Context, id int64, _ string, permanent bool) error {
	if m.failed == nil {
		m.failed = map[int64]bool{}
	}
	m.failed[id] = permanent
	return nil
}

type recordingProducer struct {
	msgs   []kafka.Message
	failOn string
}

func (p *recordingProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker down")
		}
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRelayFlush_SendsAndMarks(t *testing.T) {
	store := &memStore{batch: []Event{
		{ID: 1, AggregateID: "10", Type: "order.placed", Payload: []byte(`{}`), Headers: map[string]string{"station": "Noodle"}},
		{ID: 2, AggregateID: "11", Type: "order.placed", Payload: []byte(`{}`)},
		{ID: 3, AggregateID: "12", Type: "order.placed", Payload: []byte(`{}`), Traceparent: "00-abc-def-01"},
	}}
	producer := &recordingProducer{failOn: "11"}
	relay := NewRelay(quietLog(), store, NewDispatcher(quietLog(), producer, "kitchen.events"), "test")

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Equal(t, map[int64]bool{2: false}, store.failed)
	require.Len(t, producer.msgs, 2)

	first := producer.msgs[0]
	assert.Equal(t, "kitchen.events", first.Topic)
	assert.Equal(t, "Noodle", headerValue(first.Headers, "station"))
	assert.Equal(t, "order.placed", headerValue(first.Headers, HeaderEventType))
	assert.Equal(t, "1", headerValue(first.Headers, HeaderEventID))
	assert.Equal(t, "00-abc-def-01", headerValue(producer.msgs[1].Headers, "traceparent"))
}

func TestRelayFlush_EmptyBatch(t *testing.T) {
	relay := NewRelay(quietLog(), &memStore{}, NewDispatcher(quietLog(), &recordingProducer{}, "t"), "test")
	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent("order", "7", "order.placed", map[string]int{"daily_seq": 3}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"daily_seq":3}`, string(e.Payload))
	assert.Equal(t, StatusPending, e.Status)
	assert.NotNil(t, e.Headers)
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
