package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/almacen-api/internal/application/dto"
	"github.com/invorya/almacen-api/internal/application/inventory"
)

// TransferHandler maneja el ciclo de vida de traslados entre bodegas.
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear borrador de traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Datos del traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]inventory.TransferLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, inventory.TransferLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	transfer, err := h.uc.CreateDraft(c.Context(), inventory.TransferDraftInput{
		OrganizationID:  GetOrganizationID(c),
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Notes:           in.Notes,
		Lines:           lines,
		ActorID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransfer(transfer))
}

// Send godoc
// @Summary      Enviar traslado (DRAFT → SENT)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Send(c.Context(), organizationID, id); err != nil {
		return respondError(c, err)
	}
	return h.respondTransfer(c, organizationID, id)
}

// Complete godoc
// @Summary      Completar traslado (SENT → COMPLETED, mueve el stock)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Complete(c.Context(), organizationID, id, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return h.respondTransfer(c, organizationID, id)
}

// Cancel godoc
// @Summary      Anular traslado (desde DRAFT o SENT)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Cancel(c.Context(), organizationID, id); err != nil {
		return respondError(c, err)
	}
	return h.respondTransfer(c, organizationID, id)
}

// GetByID godoc
// @Summary      Obtener traslado por ID
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	return h.respondTransfer(c, GetOrganizationID(c), c.Params("id"))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	transfers, err := h.uc.List(c.Context(), GetOrganizationID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(transfers)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, t := range transfers {
		out.Items = append(out.Items, dto.FromTransfer(t))
	}
	return c.JSON(out)
}

func (h *TransferHandler) respondTransfer(c *fiber.Ctx, organizationID, id string) error {
	transfer, err := h.uc.GetByID(c.Context(), organizationID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(transfer))
}
