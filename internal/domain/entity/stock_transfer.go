package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado entre bodegas. El stock solo se mueve en COMPLETED.
const (
	TransferStatusDraft     = "DRAFT"
	TransferStatusSent      = "SENT"
	TransferStatusCompleted = "COMPLETED"
	TransferStatusCancelled = "CANCELLED"
)

// StockTransfer es la cabecera de un traslado entre dos bodegas de la misma
// organización. Invariante: FromWarehouseID ≠ ToWarehouseID. Un borrador es un
// plan, no un hecho: el libro de movimientos solo se toca al completar.
type StockTransfer struct {
	ID              string
	OrganizationID  string
	FromWarehouseID string
	ToWarehouseID   string
	Status          string
	Notes           string
	Items           []*StockTransferItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
}

// StockTransferItem línea de un traslado.
type StockTransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   decimal.Decimal
}
