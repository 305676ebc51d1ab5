package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// CreateOpnameRequest body para POST /api/opnames.
type CreateOpnameRequest struct {
	WarehouseID string   `json:"warehouse_id" validate:"required"`
	OpnameDate  string   `json:"opname_date"` // YYYY-MM-DD, hoy si vacío
	Notes       string   `json:"notes"`
	ProductIDs  []string `json:"product_ids"`
}

// RecordCountRequest body para PUT /api/opnames/:id/items/:itemId.
type RecordCountRequest struct {
	CountedQty decimal.Decimal `json:"counted_qty"`
}

// OpnameItemResponse línea de conteo.
type OpnameItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	SystemQty   decimal.Decimal `json:"system_qty"`
	CountedQty  decimal.Decimal `json:"counted_qty"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
}

// OpnameResponse salida de un conteo físico con sus líneas.
type OpnameResponse struct {
	ID          string               `json:"id"`
	WarehouseID string               `json:"warehouse_id"`
	Status      string               `json:"status"`
	OpnameDate  time.Time            `json:"opname_date"`
	Notes       string               `json:"notes,omitempty"`
	Items       []OpnameItemResponse `json:"items"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	CreatedBy   string               `json:"created_by,omitempty"`
}

// OpnameListResponse lista paginada de conteos.
type OpnameListResponse struct {
	Items []OpnameResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// FromOpname mapea la entidad a su DTO.
func FromOpname(op *entity.StockOpname) OpnameResponse {
	items := make([]OpnameItemResponse, len(op.Items))
	for i, it := range op.Items {
		items[i] = OpnameItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			SystemQty:   it.SystemQty,
			CountedQty:  it.CountedQty,
			Discrepancy: it.Discrepancy(),
		}
	}
	return OpnameResponse{
		ID:          op.ID,
		WarehouseID: op.WarehouseID,
		Status:      op.Status,
		OpnameDate:  op.OpnameDate,
		Notes:       op.Notes,
		Items:       items,
		CreatedAt:   op.CreatedAt,
		UpdatedAt:   op.UpdatedAt,
		CreatedBy:   op.CreatedBy,
	}
}
