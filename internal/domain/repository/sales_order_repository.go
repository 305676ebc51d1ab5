package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// SalesOrderRepository define el puerto de persistencia para órdenes de venta.
type SalesOrderRepository interface {
	Create(order *entity.SalesOrder) error
	GetByID(organizationID, id string) (*entity.SalesOrder, error)
	GetForUpdate(organizationID, id string) (*entity.SalesOrder, error)
	UpdateStatus(organizationID, id, status string) error
	ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.SalesOrder, error)
}
