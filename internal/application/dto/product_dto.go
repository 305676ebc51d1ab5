package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Description       string          `json:"description"`
	UnitMeasure       string          `json:"unit_measure"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// UpdateProductRequest entrada para actualizar un producto. El SKU solo puede
// cambiar mientras el producto no tenga movimientos.
type UpdateProductRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	UnitMeasure       string          `json:"unit_measure"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	OrganizationID    string          `json:"organization_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	UnitMeasure       string          `json:"unit_measure"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// FromProduct mapea la entidad a su DTO.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		OrganizationID:    p.OrganizationID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		UnitMeasure:       p.UnitMeasure,
		Price:             p.Price,
		Cost:              p.Cost,
		LowStockThreshold: p.LowStockThreshold,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
