package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentDirection dirección de un ajuste manual.
type AdjustmentDirection string

const (
	AdjustmentIncrease AdjustmentDirection = "INCREASE"
	AdjustmentDecrease AdjustmentDirection = "DECREASE"
)

// Códigos de razón permitidos para ajustes manuales.
const (
	ReasonRestock    = "RESTOCK"
	ReasonDamage     = "DAMAGE"
	ReasonLoss       = "LOSS"
	ReasonFound      = "FOUND"
	ReasonCorrection = "CORRECTION"
	ReasonOther      = "OTHER"
)

// ValidReason indica si el código de razón está en el catálogo.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonRestock, ReasonDamage, ReasonLoss, ReasonFound, ReasonCorrection, ReasonOther:
		return true
	}
	return false
}

// StockAdjustment es una corrección manual de stock, 1:1 con exactamente un
// InventoryMovement de tipo ADJUST. No existe edición posterior: la auditoría
// es inmutable y la única remediación es un ajuste opuesto (reverso).
type StockAdjustment struct {
	ID             string
	OrganizationID string
	ProductID      string
	WarehouseID    string
	Direction      AdjustmentDirection
	Quantity       decimal.Decimal // magnitud, siempre > 0
	Reason         string
	Notes          string
	CreatedAt      time.Time
	CreatedBy      string
}

// SignedQuantity delta con signo según la dirección.
func (a *StockAdjustment) SignedQuantity() decimal.Decimal {
	if a.Direction == AdjustmentDecrease {
		return a.Quantity.Neg()
	}
	return a.Quantity
}
