package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un conteo físico (stock opname).
const (
	OpnameStatusDraft      = "DRAFT"
	OpnameStatusInProgress = "IN_PROGRESS"
	OpnameStatusCompleted  = "COMPLETED"
	OpnameStatusCancelled  = "CANCELLED"
)

// StockOpname es un conteo físico de inventario en una bodega. Al completarlo,
// cada línea con discrepancia (contado ≠ sistema) genera un movimiento ADJUST
// que reconcilia el on-hand con la realidad física.
type StockOpname struct {
	ID             string
	OrganizationID string
	WarehouseID    string
	Status         string
	OpnameDate     time.Time
	Notes          string
	Items          []*StockOpnameItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
}

// StockOpnameItem línea de conteo: cantidad según sistema vs contada.
type StockOpnameItem struct {
	ID         string
	OpnameID   string
	ProductID  string
	SystemQty  decimal.Decimal
	CountedQty decimal.Decimal
}

// Discrepancy delta contado − sistema (positivo sobra, negativo falta).
func (it *StockOpnameItem) Discrepancy() decimal.Decimal {
	return it.CountedQty.Sub(it.SystemQty)
}
