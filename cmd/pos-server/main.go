package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/Restaurant-POS/internal/config"
	"github.com/dmehra2102/Restaurant-POS/internal/delivery"
	"github.com/dmehra2102/Restaurant-POS/internal/scheduler"
	"github.com/dmehra2102/Restaurant-POS/internal/settings"
	"github.com/dmehra2102/Restaurant-POS/pkg/database"
	"github.com/dmehra2102/Restaurant-POS/pkg/idempotency"
	"github.com/dmehra2102/Restaurant-POS/pkg/logging"
	"github.com/dmehra2102/Restaurant-POS/pkg/outbox"
	"github.com/dmehra2102/Restaurant-POS/pkg/shutdown"
	"github.com/dmehra2102/Restaurant-POS/pkg/tracing"
	"github.com/dmehra2102/Restaurant-POS/pkg/workpool"

	catalogapp "github.com/dmehra2102/Restaurant-POS/internal/catalog/application"
	catalogpg "github.com/dmehra2102/Restaurant-POS/internal/catalog/infrastructure/postgres"
	"github.com/dmehra2102/Restaurant-POS/internal/catalog/infrastructure/seed"
	"github.com/dmehra2102/Restaurant-POS/internal/order/application"
	orderhttp "github.com/dmehra2102/Restaurant-POS/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/Restaurant-POS/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/Restaurant-POS/internal/order/infrastructure/postgres"
	report "github.com/dmehra2102/Restaurant-POS/internal/report/application"
	"github.com/dmehra2102/Restaurant-POS/internal/report/infrastructure/resend"
)

const (
	tokenTTL = 24 * time.Hour
	markTTL  = 48 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New().Error("config invalid", "err", err)
		os.Exit(1)
	}
	log := logging.NewWithLevel(cfg.App.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("pos-server stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("pos-server shutdown complete")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.App.Name, cfg.App.OTLPEndpoint, log)
	if err != nil {
		return err
	}

	// Postgres
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DB.URL, MaxConns: cfg.DB.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Bootstrap(ctx, pool, log,
		outbox.Schema,
		idempotency.Schema,
		settings.Schema(),
		catalogpg.Schema(),
		orderpg.Schema(),
	); err != nil {
		return err
	}

	tokens, marks, closeRedis := idempotencyStores(ctx, cfg, log, pool)
	defer closeRedis()

	// Catalog
	products := catalogapp.NewService(log, catalogpg.NewRepository(log, pool))
	if cfg.App.MenuSeed != "" {
		if err := seedMenu(ctx, log, products, cfg.App.MenuSeed); err != nil {
			return err
		}
	}

	// Orders
	store := settings.New(settings.NewPGBackend(pool))
	gate := delivery.NewGate(log, delivery.NewNLSCClient(log))
	repo := orderpg.NewRepository(log, pool)
	intake := application.NewIntake(log, repo, store, gate, products)
	board := application.NewBoard(log, repo)

	// Reports
	jobs := workpool.New(context.Background(), log, cfg.App.Workers, 16)
	reporter := report.NewReporter(log, repo, store, resend.NewClient(log))

	hour, minute, err := cfg.Scheduler.ReportClock()
	if err != nil {
		return err
	}
	sched := scheduler.New(log, reporter, marks, scheduler.Config{
		ReportHour:        hour,
		ReportMinute:      minute,
		KeepAliveURL:      cfg.Scheduler.KeepAliveURL,
		KeepAliveInterval: cfg.Scheduler.KeepAliveInterval,
	})

	handler := orderhttp.NewHandler(log, orderhttp.Deps{
		Intake:   intake,
		Board:    board,
		Catalog:  products,
		Settings: store,
		Gate:     gate,
		Reports:  reporter,
		Pool:     jobs,
		Tokens:   tokens,
	})

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sched.Run(gctx) })

	var writer *orderkafka.Writer
	if cfg.Kafka.Enabled() {
		writer = orderkafka.NewWriter(cfg.Kafka.Brokers)
		dispatch := outbox.NewDispatcher(log, writer, cfg.Kafka.Topic)
		relay := outbox.NewRelay(log, outbox.NewPGStore(log, pool), dispatch, "pos-relay-"+uuid.NewString())
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		log.Warn("KAFKA_ADDR not set, kitchen events stay in the outbox")
	}

	g.Go(func() error {
		log.Info("http listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return shutdown.Run(15*time.Second,
			srv.Shutdown,
			jobs.Close,
			func(ctx context.Context) error {
				if writer == nil {
					return nil
				}
				return writer.Close()
			},
			tp.Shutdown,
		)
	})

	return g.Wait()
}

// idempotencyStores returns the submission-token and report-mark stores.
// Without Redis tokens live in process memory and report marks in Postgres,
// so a restart never resends a day's report.
func idempotencyStores(ctx context.Context, cfg *config.Config, log *slog.Logger, db database.Querier) (idempotency.Claimer, idempotency.Checker, func()) {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, using in-memory tokens and postgres report marks")
		return idempotency.NewMemoryStore(tokenTTL), idempotency.NewPGStore(db, markTTL), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-memory tokens and postgres report marks", "addr", cfg.Redis.Addr, "err", err)
		_ = rdb.Close()
		return idempotency.NewMemoryStore(tokenTTL), idempotency.NewPGStore(db, markTTL), func() {}
	}
	return idempotency.NewStore(rdb, tokenTTL), idempotency.NewStore(rdb, markTTL), func() { _ = rdb.Close() }
}

func seedMenu(ctx context.Context, log *slog.Logger, svc *catalogapp.Service, path string) error {
	items, err := seed.Load(path)
	if err != nil {
		return err
	}
	n, err := svc.Seed(ctx, items)
	if err != nil {
		return err
	}
	log.Info("menu seeded", "path", path, "products", n)
	return nil
}
