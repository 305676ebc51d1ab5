package repository

import "github.com/invorya/almacen-api/internal/domain/entity"

// StockTransferRepository define el puerto de persistencia para traslados.
type StockTransferRepository interface {
	Create(transfer *entity.StockTransfer) error
	// GetByID carga cabecera + líneas. GetForUpdate bloquea la cabecera para
	// serializar transiciones de estado concurrentes.
	GetByID(organizationID, id string) (*entity.StockTransfer, error)
	GetForUpdate(organizationID, id string) (*entity.StockTransfer, error)
	UpdateStatus(organizationID, id, status string) error
	ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.StockTransfer, error)
}
