package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/application/dto"
	"github.com/invorya/almacen-api/internal/application/sales"
)

// SalesHandler maneja órdenes de venta: confirmación con reserva, despacho y
// anulación. La tasa de impuesto viene de configuración, no del cliente.
type SalesHandler struct {
	uc      *sales.SalesUseCase
	taxRate decimal.Decimal
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.SalesUseCase, taxRate decimal.Decimal) *SalesHandler {
	return &SalesHandler{uc: uc, taxRate: taxRate}
}

// Create godoc
// @Summary      Crear orden de venta (borrador)
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesOrderRequest  true  "Datos de la orden"
// @Success      201   {object}  dto.SalesOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales-orders [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSalesOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]sales.SalesLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, sales.SalesLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
		})
	}
	order, err := h.uc.CreateDraft(c.Context(), sales.SalesDraftInput{
		OrganizationID: GetOrganizationID(c),
		CustomerID:     in.CustomerID,
		WarehouseID:    in.WarehouseID,
		TaxRate:        h.taxRate,
		Lines:          lines,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSalesOrder(order))
}

// Confirm godoc
// @Summary      Confirmar orden (DRAFT → CONFIRMED, reserva stock)
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/confirm [post]
func (h *SalesHandler) Confirm(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Confirm(c.Context(), organizationID, id); err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, organizationID, id)
}

// Fulfill godoc
// @Summary      Despachar orden (CONFIRMED → FULFILLED, descuenta stock)
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/fulfill [post]
func (h *SalesHandler) Fulfill(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Fulfill(c.Context(), organizationID, id, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, organizationID, id)
}

// Cancel godoc
// @Summary      Anular orden antes del despacho (libera reservas)
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/cancel [post]
func (h *SalesHandler) Cancel(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Cancel(c.Context(), organizationID, id); err != nil {
		return respondError(c, err)
	}
	return h.respondOrder(c, organizationID, id)
}

// GetByID godoc
// @Summary      Obtener orden de venta por ID
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id} [get]
func (h *SalesHandler) GetByID(c *fiber.Ctx) error {
	return h.respondOrder(c, GetOrganizationID(c), c.Params("id"))
}

// List godoc
// @Summary      Listar órdenes de venta
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.SalesOrderListResponse
// @Router       /api/sales-orders [get]
func (h *SalesHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	orders, err := h.uc.List(c.Context(), GetOrganizationID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.SalesOrderListResponse{
		Items: make([]dto.SalesOrderResponse, 0, len(orders)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, o := range orders {
		out.Items = append(out.Items, dto.FromSalesOrder(o))
	}
	return c.JSON(out)
}

func (h *SalesHandler) respondOrder(c *fiber.Ctx, organizationID, id string) error {
	order, err := h.uc.GetByID(c.Context(), organizationID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromSalesOrder(order))
}
