package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/Restaurant-POS/internal/config"
	"github.com/dmehra2102/Restaurant-POS/internal/printing"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/dmehra2102/Restaurant-POS/pkg/logging"
	"github.com/dmehra2102/Restaurant-POS/pkg/shutdown"
	"github.com/dmehra2102/Restaurant-POS/pkg/tracing"
)

// Offsets are only replayed after a rebalance, so a day of dedupe keys is plenty.
const dedupeTTL = 24 * time.Hour

func main() {
	cfg, err := config.LoadPrintRouter()
	if err != nil {
		logging.New().Error("config invalid", "err", err)
		os.Exit(1)
	}
	log := logging.NewWithLevel(cfg.App.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "print-router", cfg.App.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	spool, err := printing.NewSpool(cfg.Printing.SpoolDir)
	if err != nil {
		log.Error("spool dir unusable", "dir", cfg.Printing.SpoolDir, "err", err)
		os.Exit(1)
	}

	var idem idempotency.Checker = idempotency.NewMemoryStore(dedupeTTL)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		idem = idempotency.NewStore(rdb, dedupeTTL)
	}

	reader := printing.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Printing.Group)
	consumer := printing.NewConsumer(log, reader, spool, idem)

	log.Info("print-router consuming", "topic", cfg.Kafka.Topic, "group", cfg.Printing.Group, "spool", cfg.Printing.SpoolDir)
	if err := consumer.Run(ctx); err != nil {
		log.Error("consumer stopped with error", "err", err)
	}

	if err := shutdown.Run(10*time.Second, tp.Shutdown); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("print-router shutdown complete")
}
