package printing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/Restaurant-POS/internal/order/domain"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/dmehra2102/Restaurant-POS/pkg/outbox"
	"github.com/dmehra2102/Restaurant-POS/pkg/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

type Consumer struct {
	log     *slog.Logger
	reader  Reader
	printer Printer
	idem    idempotency.Checker
	tracer  trace.Tracer
}

func NewConsumer(log *slog.Logger, reader Reader, printer Printer, idem idempotency.Checker) *Consumer {
	return &Consumer{
		log:     log,
		reader:  reader,
		printer: printer,
		idem:    idem,
		tracer:  otel.Tracer("print-router"),
	}
}

// Run consumes until ctx ends. Redelivered offsets are skipped; a message
// that cannot be decoded or printed is logged and committed.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		key := idempotency.MessageKey(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			c.log.Error("ticket not printed", "offset", msg.Offset, "err", err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	ctx = tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	eventType := headerValue(msg.Headers, outbox.HeaderEventType)
	ctx, span := c.tracer.Start(ctx, "Consume "+eventType)
	defer span.End()

	switch eventType {
	case domain.EventOrderPlaced:
		var ev domain.OrderPlaced
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		var errs []error
		for _, t := range Route(ev) {
			if err := c.printer.Print(ctx, t); err != nil {
				errs = append(errs, fmt.Errorf("station %s: %w", t.Station, err))
				continue
			}
			c.log.Info("ticket printed", "order_id", t.OrderID, "daily_seq", t.DailySeq, "station", t.Station)
		}
		return errors.Join(errs...)

	case domain.EventOrderStatusChanged:
		var ev domain.OrderStatusChanged
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		if ev.To != domain.StatusCancelled {
			return nil
		}
		return c.printer.Void(ctx, ev.OrderID, VoidSlip(ev))
	}

	c.log.Debug("event ignored", "type", eventType)
	return nil
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
