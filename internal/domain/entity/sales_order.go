package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de venta.
const (
	SalesStatusDraft     = "DRAFT"
	SalesStatusConfirmed = "CONFIRMED"
	SalesStatusFulfilled = "FULFILLED"
	SalesStatusCancelled = "CANCELLED"
)

// SalesOrder cabecera de una orden de venta despachada desde una bodega.
// Los totales son computados desde las líneas, nunca mutables por separado.
// Al confirmar se reserva stock (AllocatedQty del InventoryItem); al despachar
// se consume la reserva y se descuenta el on-hand; al cancelar se libera.
type SalesOrder struct {
	ID             string
	OrganizationID string
	CustomerID     string
	WarehouseID    string
	Status         string
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Items          []*SalesOrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
}

// SalesOrderItem línea de venta. LineTotal = Quantity*UnitPrice − Discount.
type SalesOrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// ComputeTotals recalcula LineTotal por línea y los totales de la cabecera.
// taxRate es la tasa impositiva aplicada sobre el subtotal neto de descuentos.
func (o *SalesOrder) ComputeTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, it := range o.Items {
		gross := it.Quantity.Mul(it.UnitPrice)
		it.LineTotal = gross.Sub(it.Discount)
		subtotal = subtotal.Add(gross)
		discount = discount.Add(it.Discount)
	}
	o.Subtotal = subtotal
	o.DiscountAmount = discount
	net := subtotal.Sub(discount)
	o.TaxAmount = net.Mul(taxRate)
	o.Total = net.Add(o.TaxAmount)
}
