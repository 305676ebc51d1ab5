package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummary resumen denormalizado por (organización, bodega, producto).
// Se reconstruye completo desde el libro de movimientos por el worker asíncrono:
// nunca se incrementa en caliente, así un evento perdido o duplicado se
// autocorrige en la siguiente reconstrucción en vez de derivar permanentemente.
type StockSummary struct {
	OrganizationID string
	WarehouseID    string
	ProductID      string
	TotalIn        decimal.Decimal
	TotalOut       decimal.Decimal
	CurrentStock   decimal.Decimal
	LastMovementAt *time.Time
	UpdatedAt      time.Time
}
