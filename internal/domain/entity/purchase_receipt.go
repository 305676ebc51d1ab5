package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseReceipt es un evento de recepción contra una orden de compra:
// el subconjunto de cantidades efectivamente recibidas en esa entrega.
// Cada línea genera un movimiento IN que referencia este recibo.
type PurchaseReceipt struct {
	ID             string
	OrganizationID string
	OrderID        string
	Items          []*PurchaseReceiptItem
	CreatedAt      time.Time
	CreatedBy      string
}

// PurchaseReceiptItem línea recibida en un recibo.
type PurchaseReceiptItem struct {
	ID        string
	ReceiptID string
	ProductID string
	Quantity  decimal.Decimal
}
