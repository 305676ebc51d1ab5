package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// TransferItemRequest línea de un traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required"`
	Notes           string                `json:"notes"`
	Items           []TransferItemRequest `json:"items" validate:"required,min=1"`
}

// TransferItemResponse línea de un traslado.
type TransferItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferResponse salida de un traslado con sus líneas.
type TransferResponse struct {
	ID              string                 `json:"id"`
	FromWarehouseID string                 `json:"from_warehouse_id"`
	ToWarehouseID   string                 `json:"to_warehouse_id"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []TransferItemResponse `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	CreatedBy       string                 `json:"created_by,omitempty"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// FromTransfer mapea la entidad a su DTO.
func FromTransfer(t *entity.StockTransfer) TransferResponse {
	items := make([]TransferItemResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = TransferItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return TransferResponse{
		ID:              t.ID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          t.Status,
		Notes:           t.Notes,
		Items:           items,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CreatedBy:       t.CreatedBy,
	}
}
