package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// StockSummaryRepository define el puerto para el resumen denormalizado.
// El worker lo reconstruye completo; nadie más lo escribe.
type StockSummaryRepository interface {
	Get(organizationID, productID, warehouseID string) (*entity.StockSummary, error)
	Upsert(summary *entity.StockSummary) error
	ListByWarehouse(organizationID, warehouseID string, limit, offset int) ([]*entity.StockSummary, error)
}
