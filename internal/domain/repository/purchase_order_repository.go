package repository

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/almacen-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(order *entity.PurchaseOrder) error
	GetByID(organizationID, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(organizationID, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(organizationID, id, status string) error
	// IncrementReceived acumula cantidad recibida sobre una línea.
	IncrementReceived(itemID string, quantity decimal.Decimal) error
	ListByOrganization(organizationID, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}

// PurchaseReceiptRepository define el puerto de persistencia para recibos.
type PurchaseReceiptRepository interface {
	Create(receipt *entity.PurchaseReceipt) error
	ListByOrder(organizationID, orderID string) ([]*entity.PurchaseReceipt, error)
}
