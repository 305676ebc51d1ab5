package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// PurchaseItemRequest línea de una orden de compra.
type PurchaseItemRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	OrderedQty decimal.Decimal `json:"ordered_qty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID  string                `json:"supplier_id"`
	WarehouseID string                `json:"warehouse_id" validate:"required"`
	Notes       string                `json:"notes"`
	Items       []PurchaseItemRequest `json:"items" validate:"required,min=1"`
}

// ReceiptItemRequest línea recibida en una recepción.
type ReceiptItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateReceiptRequest body para POST /api/purchase-orders/:id/receipts.
type CreateReceiptRequest struct {
	Items []ReceiptItemRequest `json:"items" validate:"required,min=1"`
}

// PurchaseItemResponse línea de una orden de compra.
type PurchaseItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	OrderedQty   decimal.Decimal `json:"ordered_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ReceivedQty  decimal.Decimal `json:"received_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
}

// PurchaseOrderResponse salida de una orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID          string                 `json:"id"`
	SupplierID  string                 `json:"supplier_id,omitempty"`
	WarehouseID string                 `json:"warehouse_id"`
	Status      string                 `json:"status"`
	Notes       string                 `json:"notes,omitempty"`
	Items       []PurchaseItemResponse `json:"items"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	CreatedBy   string                 `json:"created_by,omitempty"`
}

// PurchaseOrderListResponse lista paginada de órdenes de compra.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReceiptItemResponse línea de un recibo.
type ReceiptItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ReceiptResponse salida de una recepción.
type ReceiptResponse struct {
	ID        string                `json:"id"`
	OrderID   string                `json:"order_id"`
	Items     []ReceiptItemResponse `json:"items"`
	CreatedAt time.Time             `json:"created_at"`
	CreatedBy string                `json:"created_by,omitempty"`
}

// FromPurchaseOrder mapea la entidad a su DTO.
func FromPurchaseOrder(o *entity.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = PurchaseItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			OrderedQty:   it.OrderedQty,
			UnitCost:     it.UnitCost,
			ReceivedQty:  it.ReceivedQty,
			RemainingQty: it.Remaining(),
		}
	}
	return PurchaseOrderResponse{
		ID:          o.ID,
		SupplierID:  o.SupplierID,
		WarehouseID: o.WarehouseID,
		Status:      o.Status,
		Notes:       o.Notes,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CreatedBy:   o.CreatedBy,
	}
}

// FromReceipt mapea la entidad a su DTO.
func FromReceipt(r *entity.PurchaseReceipt) ReceiptResponse {
	items := make([]ReceiptItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReceiptItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return ReceiptResponse{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Items:     items,
		CreatedAt: r.CreatedAt,
		CreatedBy: r.CreatedBy,
	}
}
