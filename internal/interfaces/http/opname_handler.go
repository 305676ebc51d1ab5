package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/almacen-api/internal/application/dto"
	"github.com/invorya/almacen-api/internal/application/inventory"
)

// OpnameHandler maneja conteos físicos de inventario.
type OpnameHandler struct {
	uc *inventory.OpnameUseCase
}

// NewOpnameHandler construye el handler.
func NewOpnameHandler(uc *inventory.OpnameUseCase) *OpnameHandler {
	return &OpnameHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir conteo físico (borrador)
// @Tags         opnames
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOpnameRequest  true  "Datos del conteo"
// @Success      201   {object}  dto.OpnameResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/opnames [post]
func (h *OpnameHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOpnameRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	opnameDate := time.Now()
	if in.OpnameDate != "" {
		parsed, err := time.Parse("2006-01-02", in.OpnameDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "opname_date debe ser YYYY-MM-DD"})
		}
		opnameDate = parsed
	}
	opname, err := h.uc.CreateDraft(c.Context(), inventory.OpnameDraftInput{
		OrganizationID: GetOrganizationID(c),
		WarehouseID:    in.WarehouseID,
		OpnameDate:     opnameDate,
		Notes:          in.Notes,
		ProductIDs:     in.ProductIDs,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOpname(opname))
}

// Start godoc
// @Summary      Iniciar conteo (DRAFT → IN_PROGRESS)
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/start [post]
func (h *OpnameHandler) Start(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Start(c.Context(), organizationID, id); err != nil {
		return respondError(c, err)
	}
	return h.respondOpname(c, organizationID, id)
}

// RecordCount godoc
// @Summary      Registrar cantidad contada de una línea
// @Tags         opnames
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID del conteo"
// @Param        itemId  path  string  true  "ID de la línea"
// @Param        body    body  dto.RecordCountRequest  true  "Cantidad contada"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/items/{itemId} [put]
func (h *OpnameHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.RecordCount(c.Context(), organizationID, id, c.Params("itemId"), in.CountedQty); err != nil {
		return respondError(c, err)
	}
	return h.respondOpname(c, organizationID, id)
}

// Complete godoc
// @Summary      Completar conteo (postea ajustes por discrepancia)
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/complete [post]
func (h *OpnameHandler) Complete(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Complete(c.Context(), organizationID, id, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return h.respondOpname(c, organizationID, id)
}

// Cancel godoc
// @Summary      Anular conteo (desde DRAFT o IN_PROGRESS)
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/cancel [post]
func (h *OpnameHandler) Cancel(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	id := c.Params("id")
	if err := h.uc.Cancel(c.Context(), organizationID, id); err != nil {
		return respondError(c, err)
	}
	return h.respondOpname(c, organizationID, id)
}

// GetByID godoc
// @Summary      Obtener conteo por ID
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id} [get]
func (h *OpnameHandler) GetByID(c *fiber.Ctx) error {
	return h.respondOpname(c, GetOrganizationID(c), c.Params("id"))
}

// List godoc
// @Summary      Listar conteos físicos
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.OpnameListResponse
// @Router       /api/opnames [get]
func (h *OpnameHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	opnames, err := h.uc.List(c.Context(), GetOrganizationID(c), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.OpnameListResponse{
		Items: make([]dto.OpnameResponse, 0, len(opnames)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, op := range opnames {
		out.Items = append(out.Items, dto.FromOpname(op))
	}
	return c.JSON(out)
}

func (h *OpnameHandler) respondOpname(c *fiber.Ctx, organizationID, id string) error {
	opname, err := h.uc.GetByID(c.Context(), organizationID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOpname(opname))
}
