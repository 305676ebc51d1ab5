package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/application/catalog"
	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/application/purchasing"
	"github.com/invorya/almacen-api/internal/application/sales"
	"github.com/invorya/almacen-api/internal/infrastructure/cache"
	"github.com/invorya/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/invorya/almacen-api/internal/interfaces/http"
	"github.com/invorya/almacen-api/pkg/config"
	"github.com/invorya/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando API")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		// El caché es degradable: las lecturas caen a la base de datos.
		log.Warn().Err(err).Msg("Redis no disponible al arrancar")
	}

	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	itemRepo := postgres.NewInventoryItemRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	summaryRepo := postgres.NewStockSummaryRepository(pool)
	adjustmentRepo := postgres.NewStockAdjustmentRepository(pool)
	transferRepo := postgres.NewStockTransferRepository(pool)
	purchaseRepo := postgres.NewPurchaseOrderRepository(pool)
	receiptRepo := postgres.NewPurchaseReceiptRepository(pool)
	salesRepo := postgres.NewSalesOrderRepository(pool)
	opnameRepo := postgres.NewStockOpnameRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledger := inventory.NewLedger(cfg.Inventory.AllowNegative)
	productUC := catalog.NewProductUseCase(productRepo, movementRepo)
	warehouseUC := catalog.NewWarehouseUseCase(warehouseRepo, itemRepo)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, productRepo, warehouseRepo, adjustmentRepo, ledger)
	transferUC := inventory.NewTransferUseCase(txRunner, productRepo, warehouseRepo, transferRepo, ledger)
	opnameUC := inventory.NewOpnameUseCase(txRunner, warehouseRepo, productRepo, opnameRepo, ledger)
	purchaseUC := purchasing.NewPurchaseUseCase(txRunner, productRepo, warehouseRepo, purchaseRepo, receiptRepo, ledger)
	salesUC := sales.NewSalesUseCase(txRunner, productRepo, warehouseRepo, salesRepo, ledger)
	queryUC := inventory.NewQueryUseCase(itemRepo, movementRepo, summaryRepo, redisCache, cfg.Redis.CacheTTL, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		WarehouseUC:  warehouseUC,
		AdjustmentUC: adjustmentUC,
		QueryUC:      queryUC,
		TransferUC:   transferUC,
		OpnameUC:     opnameUC,
		PurchaseUC:   purchaseUC,
		SalesUC:      salesUC,
		TaxRate:      decimal.NewFromFloat(cfg.Inventory.TaxRate),
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("API detenida")
}
