package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento. IN/TRANSFER_IN suman; OUT/TRANSFER_OUT restan;
// ADJUST guarda el delta con signo (positivo aumenta, negativo disminuye).
const (
	MovementTypeIN          MovementType = "IN"
	MovementTypeOUT         MovementType = "OUT"
	MovementTypeADJUST      MovementType = "ADJUST"
	MovementTypeTransferIN  MovementType = "TRANSFER_IN"
	MovementTypeTransferOUT MovementType = "TRANSFER_OUT"
)

// Tipos de referencia polimórfica al documento que originó el movimiento.
const (
	RefTypeAdjustment      = "ADJUSTMENT"
	RefTypeTransfer        = "TRANSFER"
	RefTypePurchaseReceipt = "PURCHASE_RECEIPT"
	RefTypeSalesOrder      = "SALES_ORDER"
	RefTypeOpname          = "OPNAME"
)

// InventoryMovement es un hecho inmutable del libro de movimientos: nunca se
// actualiza ni se borra. Es el sistema de registro de todo el historial de stock.
// Convención de cantidades: magnitud positiva para IN/OUT/TRANSFER_*,
// delta con signo para ADJUST.
type InventoryMovement struct {
	ID             string
	OrganizationID string
	ProductID      string
	WarehouseID    string
	Type           MovementType
	Quantity       decimal.Decimal
	RefType        string
	RefID          string
	CreatedAt      time.Time
	CreatedBy      string
}

// SignedQuantity devuelve el delta con signo que este movimiento aplica al on-hand.
func (m *InventoryMovement) SignedQuantity() decimal.Decimal {
	switch m.Type {
	case MovementTypeOUT, MovementTypeTransferOUT:
		return m.Quantity.Neg()
	default:
		// IN, TRANSFER_IN y ADJUST (ya con signo)
		return m.Quantity
	}
}
