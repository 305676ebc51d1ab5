package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	PurchaseStatusDraft             = "DRAFT"
	PurchaseStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	PurchaseStatusCompleted         = "COMPLETED"
	PurchaseStatusCancelled         = "CANCELLED"
)

// PurchaseOrder cabecera de una orden de compra contra un proveedor, recibida
// en una bodega. Invariante por línea: ReceivedQty ≤ OrderedQty, siempre.
type PurchaseOrder struct {
	ID             string
	OrganizationID string
	SupplierID     string
	WarehouseID    string
	Status         string
	Notes          string
	Items          []*PurchaseOrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
}

// PurchaseOrderItem línea de una orden de compra. ReceivedQty acumula lo
// recibido a través de todos los PurchaseReceipt de la orden.
type PurchaseOrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	OrderedQty  decimal.Decimal
	UnitCost    decimal.Decimal
	ReceivedQty decimal.Decimal
}

// Remaining cantidad pendiente por recibir de la línea.
func (it *PurchaseOrderItem) Remaining() decimal.Decimal {
	return it.OrderedQty.Sub(it.ReceivedQty)
}

// FullyReceived indica si todas las líneas están completamente recibidas.
func (o *PurchaseOrder) FullyReceived() bool {
	for _, it := range o.Items {
		if it.ReceivedQty.LessThan(it.OrderedQty) {
			return false
		}
	}
	return true
}
