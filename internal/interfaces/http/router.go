package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/application/catalog"
	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/application/purchasing"
	"github.com/invorya/almacen-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *catalog.ProductUseCase
	WarehouseUC  *catalog.WarehouseUseCase
	AdjustmentUC *inventory.AdjustmentUseCase
	QueryUC      *inventory.QueryUseCase
	TransferUC   *inventory.TransferUseCase
	OpnameUC     *inventory.OpnameUseCase
	PurchaseUC   *purchasing.PurchaseUseCase
	SalesUC      *sales.SalesUseCase
	TaxRate      decimal.Decimal
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Todas las rutas de negocio requieren Bearer Token; la organización del
	// token acota cada consulta. Las escrituras se restringen por rol:
	// catálogo a admin, operaciones de bodega a admin/bodeguero y ventas a
	// admin/vendedor. Las lecturas solo requieren token válido.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole("admin")
	warehouseOps := RequireRole("admin", "bodeguero")
	salesOps := RequireRole("admin", "vendedor")

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)

	// Inventory: ajustes manuales y lado de lectura (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustmentUC, deps.QueryUC)
	invGroup.Post("/adjustments", warehouseOps, inventoryHandler.CreateAdjustment)
	invGroup.Get("/adjustments", inventoryHandler.ListAdjustments)
	invGroup.Get("/adjustments/:id", inventoryHandler.GetAdjustment)
	invGroup.Get("/warehouses/:warehouseId/items/:productId", inventoryHandler.GetItem)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/summaries", inventoryHandler.ListSummaries)
	invGroup.Get("/low-stock", inventoryHandler.ListLowStock)

	// Transfers (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", warehouseOps, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/send", warehouseOps, transferHandler.Send)
	transfers.Post("/:id/complete", warehouseOps, transferHandler.Complete)
	transfers.Post("/:id/cancel", warehouseOps, transferHandler.Cancel)

	// Purchase orders (protegido)
	purchases := protected.Group("/purchase-orders")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", warehouseOps, purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/receipts", warehouseOps, purchaseHandler.CreateReceipt)
	purchases.Get("/:id/receipts", purchaseHandler.ListReceipts)
	purchases.Post("/:id/complete", warehouseOps, purchaseHandler.Complete)
	purchases.Post("/:id/cancel", warehouseOps, purchaseHandler.Cancel)

	// Sales orders (protegido)
	salesGroup := protected.Group("/sales-orders")
	salesHandler := NewSalesHandler(deps.SalesUC, deps.TaxRate)
	salesGroup.Post("/", salesOps, salesHandler.Create)
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Post("/:id/confirm", salesOps, salesHandler.Confirm)
	salesGroup.Post("/:id/fulfill", warehouseOps, salesHandler.Fulfill)
	salesGroup.Post("/:id/cancel", salesOps, salesHandler.Cancel)

	// Stock opnames (protegido)
	opnames := protected.Group("/opnames")
	opnameHandler := NewOpnameHandler(deps.OpnameUC)
	opnames.Post("/", warehouseOps, opnameHandler.Create)
	opnames.Get("/", opnameHandler.List)
	opnames.Get("/:id", opnameHandler.GetByID)
	opnames.Post("/:id/start", warehouseOps, opnameHandler.Start)
	opnames.Put("/:id/items/:itemId", warehouseOps, opnameHandler.RecordCount)
	opnames.Post("/:id/complete", warehouseOps, opnameHandler.Complete)
	opnames.Post("/:id/cancel", warehouseOps, opnameHandler.Cancel)
}
