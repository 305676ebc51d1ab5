package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// SalesItemRequest línea de una orden de venta.
type SalesItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	CustomerID  string             `json:"customer_id"`
	WarehouseID string             `json:"warehouse_id" validate:"required"`
	Items       []SalesItemRequest `json:"items" validate:"required,min=1"`
}

// SalesItemResponse línea de una orden de venta.
type SalesItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SalesOrderResponse salida de una orden de venta con líneas y totales.
type SalesOrderResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id,omitempty"`
	WarehouseID    string              `json:"warehouse_id"`
	Status         string              `json:"status"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Total          decimal.Decimal     `json:"total"`
	Items          []SalesItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CreatedBy      string              `json:"created_by,omitempty"`
}

// SalesOrderListResponse lista paginada de órdenes de venta.
type SalesOrderListResponse struct {
	Items []SalesOrderResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// FromSalesOrder mapea la entidad a su DTO.
func FromSalesOrder(o *entity.SalesOrder) SalesOrderResponse {
	items := make([]SalesItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = SalesItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			LineTotal: it.LineTotal,
		}
	}
	return SalesOrderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		WarehouseID:    o.WarehouseID,
		Status:         o.Status,
		Subtotal:       o.Subtotal,
		TaxAmount:      o.TaxAmount,
		DiscountAmount: o.DiscountAmount,
		Total:          o.Total,
		Items:          items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		CreatedBy:      o.CreatedBy,
	}
}
