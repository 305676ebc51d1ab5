package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem es la foto actual de existencias de un (producto, bodega):
// una fila por par, creada perezosamente en el primer evento que afecta stock.
// QuantityOnHand es la fuente autoritativa para chequeos de disponibilidad;
// el resumen denormalizado (StockSummary) es solo una caché derivada.
type InventoryItem struct {
	ID             string
	OrganizationID string
	ProductID      string
	WarehouseID    string
	QuantityOnHand decimal.Decimal
	AllocatedQty   decimal.Decimal // reservado por órdenes confirmadas sin despachar
	UpdatedAt      time.Time
}

// Available devuelve la cantidad disponible para comprometer: on-hand − reservado.
func (i *InventoryItem) Available() decimal.Decimal {
	return i.QuantityOnHand.Sub(i.AllocatedQty)
}
