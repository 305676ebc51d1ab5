package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU vendible/almacenable (multi-bodega).
// El SKU es único por organización e inmutable una vez que el producto tiene
// movimientos registrados. Nunca se borra físicamente si tiene historial:
// DeletedAt marca el borrado lógico.
type Product struct {
	ID                string
	OrganizationID    string
	SKU               string // código único por organización
	Name              string
	Description       string
	UnitMeasure       string
	Price             decimal.Decimal // precio de venta
	Cost              decimal.Decimal // costo de compra
	LowStockThreshold decimal.Decimal // umbral para alertas de stock bajo
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}
