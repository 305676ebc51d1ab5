package repository

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// StockOpnameRepository define el puerto de persistencia para conteos físicos.
type StockOpnameRepository interface {
	Create(opname *entity.StockOpname) error
	GetByID(organizationID, id string) (*entity.StockOpname, error)
	GetForUpdate(organizationID, id string) (*entity.StockOpname, error)
	UpdateStatus(organizationID, id, status string) error
	// UpdateCount registra la cantidad contada de una línea durante IN_PROGRESS.
	UpdateCount(itemID string, countedQty decimal.Decimal) error
	ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.StockOpname, error)
}
