package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// CreateAdjustmentRequest body para POST /api/inventory/adjustments.
type CreateAdjustmentRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Direction   string          `json:"direction" validate:"required"` // INCREASE | DECREASE
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason" validate:"required"`
	Notes       string          `json:"notes"`
}

// AdjustmentResponse salida de un ajuste manual.
type AdjustmentResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// FromAdjustment mapea la entidad a su DTO.
func FromAdjustment(a *entity.StockAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:          a.ID,
		ProductID:   a.ProductID,
		WarehouseID: a.WarehouseID,
		Direction:   string(a.Direction),
		Quantity:    a.Quantity,
		Reason:      a.Reason,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		CreatedBy:   a.CreatedBy,
	}
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	RefType     string          `json:"ref_type"`
	RefID       string          `json:"ref_id"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// FromMovement mapea la entidad a su DTO.
func FromMovement(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		RefType:     m.RefType,
		RefID:       m.RefID,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

// InventoryItemResponse salida de la foto de existencias de un par.
type InventoryItemResponse struct {
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	AllocatedQty   decimal.Decimal `json:"allocated_qty"`
	Available      decimal.Decimal `json:"available"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FromInventoryItem mapea la entidad a su DTO.
func FromInventoryItem(it *entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ProductID:      it.ProductID,
		WarehouseID:    it.WarehouseID,
		QuantityOnHand: it.QuantityOnHand,
		AllocatedQty:   it.AllocatedQty,
		Available:      it.Available(),
		UpdatedAt:      it.UpdatedAt,
	}
}

// StockSummaryResponse salida del resumen denormalizado de un par.
type StockSummaryResponse struct {
	WarehouseID    string          `json:"warehouse_id"`
	ProductID      string          `json:"product_id"`
	TotalIn        decimal.Decimal `json:"total_in"`
	TotalOut       decimal.Decimal `json:"total_out"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FromStockSummary mapea la entidad a su DTO.
func FromStockSummary(s *entity.StockSummary) StockSummaryResponse {
	return StockSummaryResponse{
		WarehouseID:    s.WarehouseID,
		ProductID:      s.ProductID,
		TotalIn:        s.TotalIn,
		TotalOut:       s.TotalOut,
		CurrentStock:   s.CurrentStock,
		LastMovementAt: s.LastMovementAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
