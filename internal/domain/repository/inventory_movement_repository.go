package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// LedgerTotals agregado del libro para un par (producto, bodega).
type LedgerTotals struct {
	TotalIn        decimal.Decimal
	TotalOut       decimal.Decimal
	LastMovementAt *time.Time
}

// InventoryMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo inserta y lee: los movimientos jamás se actualizan o borran.
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	GetByID(organizationID, id string) (*entity.InventoryMovement, error)
	ListByWarehouse(organizationID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByProduct(organizationID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	// ExistsForProduct indica si el producto tiene algún movimiento (bloquea cambios de SKU).
	ExistsForProduct(organizationID, productID string) (bool, error)
	// TotalsForPair re-escanea el libro completo del par y suma entradas/salidas.
	TotalsForPair(organizationID, productID, warehouseID string) (*LedgerTotals, error)
}
