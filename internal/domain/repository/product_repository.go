package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las consultas filtran por organización: un ID de otra organización
// se comporta como inexistente.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(organizationID, id string) (*entity.Product, error)
	GetBySKU(organizationID, sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	ListByOrganization(organizationID string, limit, offset int) ([]*entity.Product, error)
	// SoftDelete marca DeletedAt; nunca hay borrado físico con historial.
	SoftDelete(organizationID, id string) error
}
