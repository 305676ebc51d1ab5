package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// StockAdjustmentRepository define el puerto de persistencia para ajustes
// manuales. Sin Update ni Delete: la auditoría es inmutable.
type StockAdjustmentRepository interface {
	Create(adjustment *entity.StockAdjustment) error
	GetByID(organizationID, id string) (*entity.StockAdjustment, error)
	ListByOrganization(organizationID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
