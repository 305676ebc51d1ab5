package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/almacen-api/internal/application/dto"
	"github.com/invorya/almacen-api/internal/application/inventory"
	"github.com/invorya/almacen-api/internal/domain/entity"
)

// InventoryHandler expone los ajustes manuales y el lado de lectura del
// inventario: foto por par, historial de movimientos, resúmenes y stock bajo.
type InventoryHandler struct {
	adjustments *inventory.AdjustmentUseCase
	queries     *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjustments *inventory.AdjustmentUseCase, queries *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments, queries: queries}
}

// CreateAdjustment godoc
// @Summary      Crear ajuste manual de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "Datos del ajuste"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	adj, err := h.adjustments.Create(c.Context(), inventory.AdjustmentInput{
		OrganizationID: GetOrganizationID(c),
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Direction:      entity.AdjustmentDirection(in.Direction),
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		Notes:          in.Notes,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAdjustment(adj))
}

// GetAdjustment godoc
// @Summary      Obtener ajuste por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments/{id} [get]
func (h *InventoryHandler) GetAdjustment(c *fiber.Ctx) error {
	adj, err := h.adjustments.GetByID(c.Context(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromAdjustment(adj))
}

// ListAdjustments godoc
// @Summary      Listar ajustes manuales
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.AdjustmentResponse
// @Router       /api/inventory/adjustments [get]
func (h *InventoryHandler) ListAdjustments(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	adjustments, err := h.adjustments.List(c.Context(), GetOrganizationID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		out = append(out, dto.FromAdjustment(a))
	}
	return c.JSON(out)
}

// GetItem godoc
// @Summary      Foto de existencias de un producto en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path   string  true  "ID de la bodega"
// @Param        productId    path   string  true  "ID del producto"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/warehouses/{warehouseId}/items/{productId} [get]
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.queries.GetItem(c.Context(), GetOrganizationID(c), c.Params("productId"), c.Params("warehouseId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryItem(item))
}

// ListMovements godoc
// @Summary      Historial de movimientos (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}
	movements, err := h.queries.ListMovements(c.Context(), GetOrganizationID(c), c.Query("warehouse_id"), from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(out)
}

// ListSummaries godoc
// @Summary      Resúmenes denormalizados de stock por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true   "ID de la bodega"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.StockSummaryResponse
// @Router       /api/inventory/summaries [get]
func (h *InventoryHandler) ListSummaries(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	summaries, err := h.queries.ListSummaries(c.Context(), GetOrganizationID(c), c.Query("warehouse_id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, dto.FromStockSummary(s))
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Productos con stock en o bajo su umbral
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {array}  dto.InventoryItemResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	items, err := h.queries.ListLowStock(c.Context(), GetOrganizationID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.InventoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.FromInventoryItem(it))
	}
	return c.JSON(out)
}
