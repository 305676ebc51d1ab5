package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(warehouse *entity.Warehouse) error
	GetByID(organizationID, id string) (*entity.Warehouse, error)
	GetByCode(organizationID, code string) (*entity.Warehouse, error)
	Update(warehouse *entity.Warehouse) error
	ListByOrganization(organizationID string, limit, offset int) ([]*entity.Warehouse, error)
	SoftDelete(organizationID, id string) error
}
