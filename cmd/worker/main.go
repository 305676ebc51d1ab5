package main

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/application/outbox"
	"github.com/invorya/almacen-api/internal/application/ports"
	"github.com/invorya/almacen-api/internal/infrastructure/broker"
	"github.com/invorya/almacen-api/internal/infrastructure/cache"
	"github.com/invorya/almacen-api/internal/infrastructure/postgres"
	"github.com/invorya/almacen-api/internal/infrastructure/queue"
	"github.com/invorya/almacen-api/pkg/config"
	"github.com/invorya/almacen-api/pkg/logger"
)

// El worker corre los dos lados asíncronos del sistema: el relevador del
// outbox (Postgres → cola Redis + broker) y el consumidor de recálculo de
// resúmenes. Ambos paran limpio ante SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-worker",
	})
	log.Info().Str("env", cfg.App.Env).Msg("iniciando worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()

	jobQueue := queue.NewRedisQueue(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Worker.MaxAttempts, log)
	defer jobQueue.Close()

	var publisher ports.Publisher = broker.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := broker.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		log.Warn().Msg("sin brokers Kafka configurados, eventos externos desactivados")
	}

	movementRepo := postgres.NewInventoryMovementRepository(pool)
	summaryRepo := postgres.NewStockSummaryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)

	recalculator := outbox.NewRecalculator(
		movementRepo, summaryRepo, productRepo,
		redisCache, publisher, log, inventory.SummaryKeyPrefix,
	)
	jobQueue.Process(outbox.JobRecalculateSummary, recalculator.Handle)

	relay := outbox.NewRelay(outboxRepo, jobQueue, publisher, outbox.RelayConfig{
		BatchSize:    cfg.Worker.BatchSize,
		PollInterval: cfg.Worker.PollInterval,
		MaxAttempts:  cfg.Worker.MaxAttempts,
	}, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		return jobQueue.Start(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
